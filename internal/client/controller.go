package client

import (
	"context"
	"errors"
	"sync"
)

// Filter selects which todos Visible returns. Filtering is a pure
// recomputation over the in-memory list; it never calls the server.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ErrPending is returned when an operation is refused because the same todo
// (or the create form) already has a request in flight.
var ErrPending = errors.New("operation already in flight")

// API is the slice of Client the controller needs; tests swap in a fake.
type API interface {
	FetchTodos(ctx context.Context) ([]Todo, error)
	CreateTodo(ctx context.Context, in CreateTodoInput) (Todo, error)
	UpdateTodo(ctx context.Context, id string, in UpdateTodoInput) (Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

// Stats summarizes the current list.
type Stats struct {
	Total     int
	Active    int
	Completed int
}

// Controller holds the working copy of the user's todo list and reconciles
// server responses into it. Multiple update/delete calls may be in flight
// at once as long as they target different todos; the in-flight set keeps
// their completions from clobbering each other.
type Controller struct {
	mu       sync.Mutex
	api      API
	todos    []Todo
	filter   Filter
	inflight map[string]struct{}
	creating bool
	loading  bool
	errMsg   string
	onChange func()
}

// NewController creates a Controller over api. onChange fires after every
// state transition (nil is allowed); it is the re-render hook.
func NewController(api API, onChange func()) *Controller {
	if onChange == nil {
		onChange = func() {}
	}
	return &Controller{
		api:      api,
		filter:   FilterAll,
		inflight: make(map[string]struct{}),
		onChange: onChange,
	}
}

// Load fetches the full list and replaces the working copy wholesale,
// ordered as returned (newest first).
func (ctl *Controller) Load(ctx context.Context) error {
	ctl.mu.Lock()
	ctl.loading = true
	ctl.errMsg = ""
	ctl.mu.Unlock()
	ctl.onChange()

	list, err := ctl.api.FetchTodos(ctx)

	ctl.mu.Lock()
	ctl.loading = false
	if err != nil {
		ctl.errMsg = err.Error()
	} else {
		ctl.todos = list
	}
	ctl.mu.Unlock()
	ctl.onChange()
	return err
}

// Create submits a new todo and prepends the server's record on success.
// Its error goes back to the caller (the form keeps the unsaved input),
// never into the shared error slot.
func (ctl *Controller) Create(ctx context.Context, in CreateTodoInput) error {
	ctl.mu.Lock()
	if ctl.creating {
		ctl.mu.Unlock()
		return ErrPending
	}
	ctl.creating = true
	ctl.mu.Unlock()
	ctl.onChange()

	t, err := ctl.api.CreateTodo(ctx, in)

	ctl.mu.Lock()
	ctl.creating = false
	if err == nil {
		ctl.todos = append([]Todo{t}, ctl.todos...)
	}
	ctl.mu.Unlock()
	ctl.onChange()
	return err
}

// Update submits a partial update for id and replaces the matching record
// with the server's version. On failure the list is untouched and the error
// lands in the shared slot. The in-flight marker clears on every exit path.
func (ctl *Controller) Update(ctx context.Context, id string, in UpdateTodoInput) error {
	if !ctl.begin(id) {
		return ErrPending
	}

	t, err := ctl.api.UpdateTodo(ctx, id, in)

	ctl.mu.Lock()
	delete(ctl.inflight, id)
	if err != nil {
		ctl.errMsg = err.Error()
	} else {
		for i := range ctl.todos {
			if ctl.todos[i].ID == id {
				ctl.todos[i] = t
				break
			}
		}
	}
	ctl.mu.Unlock()
	ctl.onChange()
	return err
}

// Delete removes id server-side, then from the working copy. Failure keeps
// the list intact and surfaces the error; the marker clears either way.
func (ctl *Controller) Delete(ctx context.Context, id string) error {
	if !ctl.begin(id) {
		return ErrPending
	}

	err := ctl.api.DeleteTodo(ctx, id)

	ctl.mu.Lock()
	delete(ctl.inflight, id)
	if err != nil {
		ctl.errMsg = err.Error()
	} else {
		kept := ctl.todos[:0]
		for _, t := range ctl.todos {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		ctl.todos = kept
	}
	ctl.mu.Unlock()
	ctl.onChange()
	return err
}

// begin marks id in flight, refusing duplicates.
func (ctl *Controller) begin(id string) bool {
	ctl.mu.Lock()
	if _, busy := ctl.inflight[id]; busy {
		ctl.mu.Unlock()
		return false
	}
	ctl.inflight[id] = struct{}{}
	ctl.mu.Unlock()
	ctl.onChange()
	return true
}

// SetFilter switches the active filter. No network call.
func (ctl *Controller) SetFilter(f Filter) {
	ctl.mu.Lock()
	ctl.filter = f
	ctl.mu.Unlock()
	ctl.onChange()
}

// Filter returns the active filter.
func (ctl *Controller) Filter() Filter {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.filter
}

// Visible returns the todos matching the active filter, in list order.
func (ctl *Controller) Visible() []Todo {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	out := make([]Todo, 0, len(ctl.todos))
	for _, t := range ctl.todos {
		switch ctl.filter {
		case FilterActive:
			if !t.Completed {
				out = append(out, t)
			}
		case FilterCompleted:
			if t.Completed {
				out = append(out, t)
			}
		default:
			out = append(out, t)
		}
	}
	return out
}

// Todos returns a copy of the full working list.
func (ctl *Controller) Todos() []Todo {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	out := make([]Todo, len(ctl.todos))
	copy(out, ctl.todos)
	return out
}

// Stats counts the full list regardless of filter.
func (ctl *Controller) Stats() Stats {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	s := Stats{Total: len(ctl.todos)}
	for _, t := range ctl.todos {
		if t.Completed {
			s.Completed++
		}
	}
	s.Active = s.Total - s.Completed
	return s
}

// Busy reports whether id has an update/delete in flight.
func (ctl *Controller) Busy(id string) bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	_, busy := ctl.inflight[id]
	return busy
}

// Creating reports whether a create is in flight.
func (ctl *Controller) Creating() bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.creating
}

// Loading reports whether the initial fetch is in flight.
func (ctl *Controller) Loading() bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.loading
}

// Err returns the dismissible error message, empty if none.
func (ctl *Controller) Err() string {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.errMsg
}

// DismissError clears the error message.
func (ctl *Controller) DismissError() {
	ctl.mu.Lock()
	ctl.errMsg = ""
	ctl.mu.Unlock()
	ctl.onChange()
}
