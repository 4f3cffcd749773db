// Package testutil provides in-memory repository fakes for tests.
package testutil

import (
	"context"
	"sync"
	"time"

	dom "todoapp/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MemTodoRepo is an in-memory repo.TodoRepo. It mirrors the Postgres
// behavior the service relies on: owner-scoped lookups miss with
// pgx.ErrNoRows, and list order is newest created first.
type MemTodoRepo struct {
	mu    sync.Mutex
	todos []dom.Todo
	clock time.Time

	// Error injection for testing
	CreateErr error
	GetErr    error
	ListErr   error
	UpdateErr error
	DeleteErr error
}

// NewMemTodoRepo creates an empty MemTodoRepo.
func NewMemTodoRepo() *MemTodoRepo {
	return &MemTodoRepo{clock: time.Now().UTC()}
}

// tick returns a strictly increasing timestamp so creation order is total.
func (r *MemTodoRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Millisecond)
	return r.clock
}

func (r *MemTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	if r.CreateErr != nil {
		return dom.Todo{}, r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.tick()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.todos = append(r.todos, t)
	return t, nil
}

func (r *MemTodoRepo) GetOwned(ctx context.Context, userID, id string) (dom.Todo, error) {
	if r.GetErr != nil {
		return dom.Todo{}, r.GetErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.todos {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return dom.Todo{}, pgx.ErrNoRows
}

func (r *MemTodoRepo) ListByOwner(ctx context.Context, userID string) ([]dom.Todo, error) {
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []dom.Todo
	for i := len(r.todos) - 1; i >= 0; i-- { // newest first
		if r.todos[i].UserID == userID {
			list = append(list, r.todos[i])
		}
	}
	return list, nil
}

func (r *MemTodoRepo) Update(ctx context.Context, userID, id string, patch dom.Todo) (dom.Todo, error) {
	if r.UpdateErr != nil {
		return dom.Todo{}, r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.todos {
		if t.ID == id && t.UserID == userID {
			patch.ID = t.ID
			patch.UserID = t.UserID
			patch.CreatedAt = t.CreatedAt
			patch.UpdatedAt = r.tick()
			r.todos[i] = patch
			return patch, nil
		}
	}
	return dom.Todo{}, pgx.ErrNoRows
}

func (r *MemTodoRepo) Delete(ctx context.Context, userID, id string) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.todos {
		if t.ID == id && t.UserID == userID {
			r.todos = append(r.todos[:i], r.todos[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}
