package testutil

import (
	"context"
	"sync"
	"time"

	dom "todoapp/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MemUserRepo is an in-memory repo.UserRepo.
type MemUserRepo struct {
	mu    sync.Mutex
	users map[string]dom.User // username -> user

	CreateErr error
	GetErr    error
}

// NewMemUserRepo creates an empty MemUserRepo.
func NewMemUserRepo() *MemUserRepo {
	return &MemUserRepo{users: make(map[string]dom.User)}
}

func (r *MemUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	if r.GetErr != nil {
		return dom.User{}, r.GetErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *MemUserRepo) Create(ctx context.Context, username, passwordHash string) (dom.User, error) {
	if r.CreateErr != nil {
		return dom.User{}, r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[username]; exists {
		// same shape Postgres reports for a unique violation
		return dom.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	}
	u := dom.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.users[username] = u
	return u, nil
}
