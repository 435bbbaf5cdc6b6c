package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/repository/postgres"
	"github.com/dragomirurdov/AtrijumApi/internal/testutil"
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
	t := &domain.SessionToken{
		UserID:    userID,
		Token:     value,
		UserAgent: "test-agent",
		Client:    datatypes.JSONMap{"name": fp.Browser},
	}
	t.SetFingerprint(fp)
	return t
}

func TestSessionTokenRepository_Upsert(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	user, _ := testutil.NewUserBuilder().Build(t, postgres.NewUserRepository(testDB.DB))
	repo := postgres.NewSessionTokenRepository(testDB.DB)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, newToken(user.ID, chrome, "first"))
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, newToken(user.ID, chrome, "second"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same device keeps its row")
	assert.Equal(t, "second", second.Token)

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.SessionToken{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	found, err := repo.Find(ctx, user.ID, chrome)
	require.NoError(t, err)
	assert.Equal(t, "second", found.Token)
	assert.Equal(t, "Chrome", found.Client["name"])

	_, err = repo.Find(ctx, user.ID, firefox)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestSessionTokenRepository_Deletes(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	users := postgres.NewUserRepository(testDB.DB)
	alice, _ := testutil.NewUserBuilder().Build(t, users)
	bob, _ := testutil.NewUserBuilder().Build(t, users)
	repo := postgres.NewSessionTokenRepository(testDB.DB)
	ctx := context.Background()

	for _, tok := range []*domain.SessionToken{
		newToken(alice.ID, chrome, "a1"),
		newToken(alice.ID, firefox, "a2"),
		newToken(bob.ID, chrome, "b1"),
	} {
		_, err := repo.Upsert(ctx, tok)
		require.NoError(t, err)
	}

	n, err := repo.DeleteByUserAndFingerprint(ctx, alice.ID, chrome)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByUserAndFingerprint(ctx, alice.ID, chrome)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.DeleteAllForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Find(ctx, bob.ID, chrome)
	assert.NoError(t, err)
}

func TestSessionTokenRepository_FindAllForUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	user, _ := testutil.NewUserBuilder().Build(t, postgres.NewUserRepository(testDB.DB))
	repo := postgres.NewSessionTokenRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, newToken(user.ID, firefox, "older"))
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = repo.Upsert(ctx, newToken(user.ID, chrome, "newer"))
	require.NoError(t, err)

	tokens, err := repo.FindAllForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "older", tokens[0].Token)
	assert.Equal(t, "newer", tokens[1].Token)

	none, err := repo.FindAllForUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSessionTokenRepository_ReplaceToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	user, _ := testutil.NewUserBuilder().Build(t, postgres.NewUserRepository(testDB.DB))
	repo := postgres.NewSessionTokenRepository(testDB.DB)
	ctx := context.Background()

	n, err := repo.ReplaceToken(ctx, user.ID, chrome, "ghost", "ua", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = repo.Find(ctx, user.ID, chrome)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound, "replace must not insert")

	first, err := repo.Upsert(ctx, newToken(user.ID, chrome, "one"))
	require.NoError(t, err)

	n, err = repo.ReplaceToken(ctx, user.ID, chrome, "two", "new-ua", map[string]any{"name": "Chrome"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := repo.Find(ctx, user.ID, chrome)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "two", found.Token)
	assert.Equal(t, "new-ua", found.UserAgent)
	assert.Equal(t, "Chrome", found.Client["name"])
}
