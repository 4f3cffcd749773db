package repo

import (
	"context"

	dom "todoapp/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TodoRepo is the persistence gateway for todos. Every read and write is
// scoped by (id, user_id) so existence and ownership are checked in one step.
type TodoRepo interface {
	Create(ctx context.Context, t dom.Todo) (dom.Todo, error)
	GetOwned(ctx context.Context, userID, id string) (dom.Todo, error)
	ListByOwner(ctx context.Context, userID string) ([]dom.Todo, error)
	Update(ctx context.Context, userID, id string, patch dom.Todo) (dom.Todo, error)
	Delete(ctx context.Context, userID, id string) error
}

type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		INSERT INTO todos (id, user_id, title, description, completed, priority, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, title, description, completed, priority, due_date, created_at, updated_at`
	var out dom.Todo
	err := r.db.QueryRow(ctx, query,
		uuid.NewString(), t.UserID, t.Title, t.Description, t.Completed, t.Priority, t.DueDate,
	).Scan(
		&out.ID, &out.UserID, &out.Title, &out.Description, &out.Completed,
		&out.Priority, &out.DueDate, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGTodoRepo) GetOwned(ctx context.Context, userID, id string) (dom.Todo, error) {
	query := `
		SELECT id, user_id, title, description, completed, priority, due_date, created_at, updated_at
		FROM todos WHERE id = $1 AND user_id = $2`
	var t dom.Todo
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
		&t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTodoRepo) ListByOwner(ctx context.Context, userID string) ([]dom.Todo, error) {
	query := `
		SELECT id, user_id, title, description, completed, priority, due_date, created_at, updated_at
		FROM todos WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Todo
	for rows.Next() {
		var t dom.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
			&t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTodoRepo) Update(ctx context.Context, userID, id string, patch dom.Todo) (dom.Todo, error) {
	query := `
		UPDATE todos
		SET title = $3, description = $4, completed = $5, priority = $6, due_date = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, description, completed, priority, due_date, created_at, updated_at`
	var t dom.Todo
	err := r.db.QueryRow(ctx, query, id, userID,
		patch.Title, patch.Description, patch.Completed, patch.Priority, patch.DueDate,
	).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
		&t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTodoRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
