package auth

import (
	"testing"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *domain.User {
	return &domain.User{ID: uuid.New(), Email: "a@x.com"}
}

func TestTokenCodec_SignDecode(t *testing.T) {
	codec := NewTokenCodec("secret", time.Hour)
	user := testUser()

	token, err := codec.Sign(user)
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenCodec_SignIsUniqueWithinSecond(t *testing.T) {
	codec := NewTokenCodec("secret", time.Hour)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return fixed }
	user := testUser()

	a, err := codec.Sign(user)
	require.NoError(t, err)
	b, err := codec.Sign(user)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestTokenCodec_Decode(t *testing.T) {
	codec := NewTokenCodec("secret", time.Hour)
	user := testUser()

	valid, err := codec.Sign(user)
	require.NoError(t, err)

	otherSecret, err := NewTokenCodec("other", time.Hour).Sign(user)
	require.NoError(t, err)

	expiredCodec := NewTokenCodec("secret", time.Hour)
	expiredCodec.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredCodec.Sign(user)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           user.ID.String(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: user.ID.String(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid", token: valid},
		{name: "wrong secret", token: otherSecret, wantErr: domain.ErrInvalidToken},
		{name: "expired", token: expired, wantErr: domain.ErrTokenExpired},
		{name: "alg none", token: none, wantErr: domain.ErrInvalidToken},
		{name: "missing exp", token: noExpiry, wantErr: domain.ErrInvalidToken},
		{name: "malformed", token: "notavalidjwt", wantErr: domain.ErrInvalidToken},
		{name: "empty", token: "", wantErr: domain.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Decode(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, claims)
		})
	}
}

func TestTokenCodec_ExpiresAt(t *testing.T) {
	codec := NewTokenCodec("secret", 6*time.Hour)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return fixed }

	token, err := codec.Sign(testUser())
	require.NoError(t, err)

	exp, err := codec.ExpiresAt(token)
	require.NoError(t, err)
	assert.True(t, exp.Equal(fixed.Add(6*time.Hour)), "got %s", exp)

	_, err = codec.ExpiresAt("garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
