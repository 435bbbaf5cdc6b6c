package memory

import (
	"context"
	"testing"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	secret := uuid.NewString()

	user := &domain.User{Email: "Ana@Example.com", PasswordHash: "hash", ActivationSecret: &secret}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	bySecret, err := repo.GetByActivationSecret(ctx, secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, bySecret.ID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Email: "dup@example.com", PasswordHash: "h"}))
	err := repo.Create(ctx, &domain.User{Email: "DUP@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	assert.Equal(t, 1, repo.Count())
}

func TestUserRepository_UpdateClearsSecret(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	secret := uuid.NewString()

	user := &domain.User{Email: "act@example.com", PasswordHash: "h", ActivationSecret: &secret}
	require.NoError(t, repo.Create(ctx, user))

	user.ActivationSecret = nil
	require.NoError(t, repo.Update(ctx, user))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActivated())

	_, err = repo.GetByActivationSecret(ctx, secret)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	err := repo.Update(ctx, &domain.User{ID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	user := &domain.User{Email: "gone@example.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.Delete(ctx, user.ID))
	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err = repo.GetByEmail(ctx, "gone@example.com")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}
