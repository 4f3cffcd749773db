package client_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"todoapp/internal/client"
)

// fakeAPI is an in-memory client.API with error injection and call counting.
type fakeAPI struct {
	mu    sync.Mutex
	todos []client.Todo
	next  int
	calls int

	fetchErr  error
	createErr error
	updateErr error
	deleteErr error

	// blockUpdate, when set, is closed by the test to release in-flight updates.
	blockUpdate chan struct{}
}

func (f *fakeAPI) countCall() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeAPI) FetchTodos(ctx context.Context) ([]client.Todo, error) {
	f.countCall()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]client.Todo, len(f.todos))
	copy(out, f.todos)
	return out, nil
}

func (f *fakeAPI) CreateTodo(ctx context.Context, in client.CreateTodoInput) (client.Todo, error) {
	f.countCall()
	if f.createErr != nil {
		return client.Todo{}, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return client.Todo{ID: fmt.Sprintf("id-%d", f.next), Title: in.Title, Priority: "MEDIUM"}, nil
}

func (f *fakeAPI) UpdateTodo(ctx context.Context, id string, in client.UpdateTodoInput) (client.Todo, error) {
	f.countCall()
	if f.blockUpdate != nil {
		<-f.blockUpdate
	}
	if f.updateErr != nil {
		return client.Todo{}, f.updateErr
	}
	t := client.Todo{ID: id, Title: "updated"}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	return t, nil
}

func (f *fakeAPI) DeleteTodo(ctx context.Context, id string) error {
	f.countCall()
	return f.deleteErr
}

func seeded(todos ...client.Todo) *fakeAPI {
	return &fakeAPI{todos: todos}
}

func loadController(t *testing.T, api *fakeAPI) *client.Controller {
	t.Helper()
	ctl := client.NewController(api, nil)
	if err := ctl.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return ctl
}

func TestLoadReplacesWholesale(t *testing.T) {
	api := seeded(client.Todo{ID: "a"}, client.Todo{ID: "b"})
	ctl := loadController(t, api)

	todos := ctl.Todos()
	if len(todos) != 2 || todos[0].ID != "a" || todos[1].ID != "b" {
		t.Errorf("expected server order preserved, got %v", todos)
	}

	api.mu.Lock()
	api.todos = []client.Todo{{ID: "c"}}
	api.mu.Unlock()
	if err := ctl.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	todos = ctl.Todos()
	if len(todos) != 1 || todos[0].ID != "c" {
		t.Errorf("expected wholesale replacement, got %v", todos)
	}
}

func TestCreatePrependsWithoutRefetch(t *testing.T) {
	api := seeded(client.Todo{ID: "old"})
	ctl := loadController(t, api)
	callsAfterLoad := api.calls

	if err := ctl.Create(context.Background(), client.CreateTodoInput{Title: "new"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	todos := ctl.Todos()
	if len(todos) != 2 || todos[0].Title != "new" || todos[1].ID != "old" {
		t.Errorf("expected new todo prepended, got %v", todos)
	}
	if api.calls != callsAfterLoad+1 {
		t.Errorf("create must not refetch the list: %d extra calls", api.calls-callsAfterLoad)
	}
	if ctl.Creating() {
		t.Error("creating flag not cleared")
	}
}

func TestCreateErrorGoesToCaller(t *testing.T) {
	api := seeded(client.Todo{ID: "old"})
	ctl := loadController(t, api)
	api.createErr = errors.New("Title is required")

	err := ctl.Create(context.Background(), client.CreateTodoInput{})
	if err == nil || err.Error() != "Title is required" {
		t.Fatalf("expected the create error back, got %v", err)
	}
	// The shared slot stays clean so the form can show it locally.
	if ctl.Err() != "" {
		t.Errorf("create failure leaked into shared error slot: %q", ctl.Err())
	}
	if len(ctl.Todos()) != 1 {
		t.Error("failed create changed the list")
	}
	if ctl.Creating() {
		t.Error("creating flag not cleared on failure")
	}
}

func TestUpdateReplacesMatchingOnly(t *testing.T) {
	api := seeded(client.Todo{ID: "a", Title: "one"}, client.Todo{ID: "b", Title: "two"})
	ctl := loadController(t, api)

	done := true
	if err := ctl.Update(context.Background(), "b", client.UpdateTodoInput{Completed: &done}); err != nil {
		t.Fatalf("update: %v", err)
	}

	todos := ctl.Todos()
	if todos[0].Title != "one" {
		t.Errorf("unrelated record touched: %v", todos[0])
	}
	if todos[1].Title != "updated" || !todos[1].Completed {
		t.Errorf("matching record not replaced with server version: %v", todos[1])
	}
	if ctl.Busy("b") {
		t.Error("in-flight marker not cleared")
	}
}

func TestFailedUpdateKeepsListAndSurfacesError(t *testing.T) {
	api := seeded(client.Todo{ID: "a", Title: "one"})
	ctl := loadController(t, api)
	api.updateErr = errors.New("Failed to update todo")

	done := true
	if err := ctl.Update(context.Background(), "a", client.UpdateTodoInput{Completed: &done}); err == nil {
		t.Fatal("expected an error")
	}

	todos := ctl.Todos()
	if todos[0].Title != "one" || todos[0].Completed {
		t.Errorf("failed update mutated the list: %v", todos[0])
	}
	if ctl.Err() != "Failed to update todo" {
		t.Errorf("expected surfaced error, got %q", ctl.Err())
	}
	if ctl.Busy("a") {
		t.Error("in-flight marker not cleared on failure")
	}

	ctl.DismissError()
	if ctl.Err() != "" {
		t.Error("error not dismissible")
	}
}

func TestDeleteRemovesMatching(t *testing.T) {
	api := seeded(client.Todo{ID: "a"}, client.Todo{ID: "b"}, client.Todo{ID: "c"})
	ctl := loadController(t, api)

	if err := ctl.Delete(context.Background(), "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	todos := ctl.Todos()
	if len(todos) != 2 || todos[0].ID != "a" || todos[1].ID != "c" {
		t.Errorf("expected b removed, got %v", todos)
	}
}

func TestFailedDeleteKeepsList(t *testing.T) {
	api := seeded(client.Todo{ID: "a"})
	ctl := loadController(t, api)
	api.deleteErr = errors.New("Failed to delete todo")

	if err := ctl.Delete(context.Background(), "a"); err == nil {
		t.Fatal("expected an error")
	}
	if len(ctl.Todos()) != 1 {
		t.Error("failed delete removed the record")
	}
	if ctl.Err() != "Failed to delete todo" {
		t.Errorf("expected surfaced error, got %q", ctl.Err())
	}
	if ctl.Busy("a") {
		t.Error("in-flight marker not cleared")
	}
}

func TestDuplicateSubmissionRefused(t *testing.T) {
	api := seeded(client.Todo{ID: "a"}, client.Todo{ID: "b"})
	api.blockUpdate = make(chan struct{})
	ctl := loadController(t, api)

	done := true
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- ctl.Update(context.Background(), "a", client.UpdateTodoInput{Completed: &done})
	}()

	waitUntil(t, func() bool { return ctl.Busy("a") })

	// Same id: refused. Different id: allowed.
	if err := ctl.Update(context.Background(), "a", client.UpdateTodoInput{Completed: &done}); !errors.Is(err, client.ErrPending) {
		t.Errorf("expected ErrPending for duplicate, got %v", err)
	}
	if ctl.Busy("b") {
		t.Error("unrelated id marked busy")
	}

	close(api.blockUpdate)
	if err := <-firstDone; err != nil {
		t.Fatalf("first update: %v", err)
	}
	if ctl.Busy("a") {
		t.Error("marker not cleared after completion")
	}
}

func TestFilterIsPureAndLocal(t *testing.T) {
	api := seeded(
		client.Todo{ID: "a", Completed: false},
		client.Todo{ID: "b", Completed: false},
		client.Todo{ID: "c", Completed: true},
	)
	ctl := loadController(t, api)
	callsAfterLoad := api.calls

	ctl.SetFilter(client.FilterCompleted)
	if visible := ctl.Visible(); len(visible) != 1 || visible[0].ID != "c" {
		t.Errorf("completed filter: got %v", visible)
	}

	ctl.SetFilter(client.FilterActive)
	if visible := ctl.Visible(); len(visible) != 2 {
		t.Errorf("active filter: got %v", visible)
	}

	ctl.SetFilter(client.FilterAll)
	if visible := ctl.Visible(); len(visible) != 3 {
		t.Errorf("all filter: got %v", visible)
	}

	if api.calls != callsAfterLoad {
		t.Errorf("filter changes made %d network calls", api.calls-callsAfterLoad)
	}
	if len(ctl.Todos()) != 3 {
		t.Error("filtering mutated the underlying list")
	}

	stats := ctl.Stats()
	if stats.Total != 3 || stats.Active != 2 || stats.Completed != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestOnChangeFires(t *testing.T) {
	api := seeded(client.Todo{ID: "a"})
	var mu sync.Mutex
	fired := 0
	ctl := client.NewController(api, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	if err := ctl.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	ctl.SetFilter(client.FilterActive)

	mu.Lock()
	defer mu.Unlock()
	if fired == 0 {
		t.Error("onChange never fired")
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}
