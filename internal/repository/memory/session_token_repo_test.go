package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var (
	chrome  = domain.DeviceFingerprint{OS: "Windows", Platform: "Windows", Browser: "Chrome"}
	firefox = domain.DeviceFingerprint{OS: "Linux", Platform: "X11", Browser: "Firefox"}
)

func newToken(userID uuid.UUID, fp domain.DeviceFingerprint, value string) *domain.SessionToken {
	t := &domain.SessionToken{UserID: userID, Token: value, UserAgent: "ua", Client: datatypes.JSONMap{"name": fp.Browser}}
	t.SetFingerprint(fp)
	return t
}

// steppingClock advances one second per call.
func steppingClock() func() time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestSessionTokenRepository_UpsertKeepsOneRowPerDevice(t *testing.T) {
	repo := NewSessionTokenRepository()
	repo.now = steppingClock()
	ctx := context.Background()
	userID := uuid.New()

	first, err := repo.Upsert(ctx, newToken(userID, chrome, "one"))
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, newToken(userID, chrome, "two"))
	require.NoError(t, err)

	assert.Equal(t, 1, repo.Count())
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	found, err := repo.Find(ctx, userID, chrome)
	require.NoError(t, err)
	assert.Equal(t, "two", found.Token)
}

func TestSessionTokenRepository_ReturnsCopies(t *testing.T) {
	repo := NewSessionTokenRepository()
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.Upsert(ctx, newToken(userID, chrome, "one"))
	require.NoError(t, err)

	found, err := repo.Find(ctx, userID, chrome)
	require.NoError(t, err)
	found.Token = "mutated"
	found.Client["name"] = "mutated"

	again, err := repo.Find(ctx, userID, chrome)
	require.NoError(t, err)
	assert.Equal(t, "one", again.Token)
	assert.Equal(t, "Chrome", again.Client["name"])
}

func TestSessionTokenRepository_FindMissing(t *testing.T) {
	repo := NewSessionTokenRepository()

	_, err := repo.Find(context.Background(), uuid.New(), chrome)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestSessionTokenRepository_Deletes(t *testing.T) {
	repo := NewSessionTokenRepository()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	for _, tok := range []*domain.SessionToken{
		newToken(alice, chrome, "a1"),
		newToken(alice, firefox, "a2"),
		newToken(bob, chrome, "b1"),
	} {
		_, err := repo.Upsert(ctx, tok)
		require.NoError(t, err)
	}

	n, err := repo.DeleteByUserAndFingerprint(ctx, alice, chrome)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByUserAndFingerprint(ctx, alice, chrome)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.DeleteAllForUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Find(ctx, bob, chrome)
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.Count())
}

func TestSessionTokenRepository_FindAllForUserOldestFirst(t *testing.T) {
	repo := NewSessionTokenRepository()
	repo.now = steppingClock()
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.Upsert(ctx, newToken(userID, firefox, "f"))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, newToken(userID, chrome, "c"))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, newToken(uuid.New(), chrome, "other"))
	require.NoError(t, err)

	tokens, err := repo.FindAllForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "f", tokens[0].Token)
	assert.Equal(t, "c", tokens[1].Token)
}

func TestSessionTokenRepository_UpsertHonoursCancelledContext(t *testing.T) {
	repo := NewSessionTokenRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Upsert(ctx, newToken(uuid.New(), chrome, "x"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, repo.Count())
}

func TestSessionTokenRepository_ReplaceTokenNeverInserts(t *testing.T) {
	repo := NewSessionTokenRepository()
	repo.now = steppingClock()
	ctx := context.Background()
	userID := uuid.New()

	n, err := repo.ReplaceToken(ctx, userID, chrome, "ghost", "ua", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, 0, repo.Count())

	first, err := repo.Upsert(ctx, newToken(userID, chrome, "one"))
	require.NoError(t, err)

	n, err = repo.ReplaceToken(ctx, userID, chrome, "two", "new-ua", map[string]any{"name": "Chrome"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := repo.Find(ctx, userID, chrome)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "two", found.Token)
	assert.Equal(t, "new-ua", found.UserAgent)
	assert.True(t, found.UpdatedAt.After(first.UpdatedAt))
}
