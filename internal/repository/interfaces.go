package repository

import (
	"context"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/google/uuid"
)

// Lookups that match nothing return domain.ErrRecordNotFound.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByActivationSecret(ctx context.Context, secret string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionTokenRepository stores at most one token per (user, device fingerprint).
type SessionTokenRepository interface {
	Find(ctx context.Context, userID uuid.UUID, fp domain.DeviceFingerprint) (*domain.SessionToken, error)
	// Upsert inserts the row or overwrites the token of the existing row for
	// the same user and fingerprint, returning the persisted record.
	Upsert(ctx context.Context, token *domain.SessionToken) (*domain.SessionToken, error)
	// ReplaceToken overwrites the token of an existing row only. It never
	// inserts; zero affected rows means the device has no session.
	ReplaceToken(ctx context.Context, userID uuid.UUID, fp domain.DeviceFingerprint, token, userAgent string, client map[string]any) (int64, error)
	DeleteByUserAndFingerprint(ctx context.Context, userID uuid.UUID, fp domain.DeviceFingerprint) (int64, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// FindAllForUser returns the user's sessions, oldest first.
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]*domain.SessionToken, error)
}

type Repositories struct {
	User         UserRepository
	SessionToken SessionTokenRepository
}
