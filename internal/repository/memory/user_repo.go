// Package memory holds map-backed repositories used by tests and by the
// server when no database is configured.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/repository"
	"github.com/google/uuid"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]domain.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if _, ok := r.users[user.ID]; ok {
		return domain.ErrDuplicateKey
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrDuplicateKey
		}
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	c := copyUser(&u)
	return &c, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findFirst(func(u *domain.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

func (r *UserRepository) GetByActivationSecret(ctx context.Context, secret string) (*domain.User, error) {
	return r.findFirst(func(u *domain.User) bool {
		return u.ActivationSecret != nil && *u.ActivationSecret == secret
	})
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrRecordNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *UserRepository) findFirst(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(&u) {
			c := copyUser(&u)
			return &c, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func copyUser(u *domain.User) domain.User {
	c := *u
	if u.ActivationSecret != nil {
		s := *u.ActivationSecret
		c.ActivationSecret = &s
	}
	c.SessionTokens = nil
	return c
}

var _ repository.UserRepository = (*UserRepository)(nil)
