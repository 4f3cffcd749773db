package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"todoapp/internal/cache"
	dom "todoapp/internal/domain"
	"todoapp/internal/repo"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound covers both "no such todo" and "todo owned by someone else":
// the two are indistinguishable on purpose, so existence never leaks.
var ErrNotFound = errors.New("not found")

// ValidationError is a rejected input; its message is safe to show the caller.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationError(msg string) error { return &ValidationError{msg: msg} }

// CreateInput carries the fields of a create call. Priority "" means default.
type CreateInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
}

// UpdateInput carries a partial update. Nil pointer fields are left
// untouched. DueDate is applied only when DueDateSet is true; a set nil
// clears the deadline.
type UpdateInput struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *string
	DueDate     *time.Time
	DueDateSet  bool
}

type TodoService struct {
	repo  repo.TodoRepo
	cache *cache.TodoCache
	sf    singleflight.Group
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, c *cache.TodoCache) *TodoService {
	return &TodoService{repo: r, cache: c}
}

// Create validates and persists a new todo owned by userID. The owner always
// comes from the authenticated caller, never from the input.
func (s *TodoService) Create(ctx context.Context, userID string, in CreateInput) (dom.Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return dom.Todo{}, validationError("Title is required")
	}

	priority := dom.PriorityMedium
	if in.Priority != "" {
		priority = dom.Priority(in.Priority)
		if !priority.Valid() {
			return dom.Todo{}, validationError("Invalid priority value")
		}
	}

	t, err := s.repo.Create(ctx, dom.Todo{
		UserID:      userID,
		Title:       title,
		Description: normalizeDescription(in.Description),
		Completed:   false,
		Priority:    priority,
		DueDate:     in.DueDate,
	})
	if err != nil {
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// List returns userID's todos, newest first.
func (s *TodoService) List(ctx context.Context, userID string) ([]dom.Todo, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do("list:"+userID, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, userID); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.ListByOwner(ctx, userID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, userID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Todo), nil
	}
	return s.repo.ListByOwner(ctx, userID)
}

// Update applies the present fields of in to the todo owned by userID.
func (s *TodoService) Update(ctx context.Context, userID, id string, in UpdateInput) (dom.Todo, error) {
	existing, err := s.repo.GetOwned(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}

	patch := existing
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return dom.Todo{}, validationError("Title cannot be empty")
		}
		patch.Title = title
	}
	if in.Description != nil {
		patch.Description = normalizeDescription(*in.Description)
	}
	if in.Completed != nil {
		patch.Completed = *in.Completed
	}
	if in.Priority != nil {
		priority := dom.Priority(*in.Priority)
		if !priority.Valid() {
			return dom.Todo{}, validationError("Invalid priority value")
		}
		patch.Priority = priority
	}
	if in.DueDateSet {
		patch.DueDate = in.DueDate
	}

	t, err := s.repo.Update(ctx, userID, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Delete removes the todo owned by userID.
func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCache(ctx, userID)
	return nil
}

func (s *TodoService) invalidateCache(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
}

func normalizeDescription(desc string) *string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return nil
	}
	return &desc
}
