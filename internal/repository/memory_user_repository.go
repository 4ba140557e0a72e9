package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/token-auth-service/internal/domain"
)

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserRepository keeps accounts in process memory. Used when no
// database is configured.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]domain.User)}
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	user.Roles = append([]string(nil), user.Roles...)
	return &user, nil
}

func (r *memoryUserRepository) Upsert(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := r.users[user.Username]; ok {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
	} else {
		user.ID = uuid.NewString()
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	stored := *user
	stored.Roles = append([]string(nil), user.Roles...)
	r.users[user.Username] = stored
	return nil
}
