package service

import (
	"context"
	"fmt"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
)

// Credential is what a client authenticates with: a PasswordCredential or a
// BearerCredential.
type Credential interface {
	credential()
}

// PasswordCredential logs in as the device passed to Authenticate. UserAgent
// is stored with the session for display only.
type PasswordCredential struct {
	Email     string
	Password  string
	UserAgent string
}

// BearerCredential is a previously issued session token.
type BearerCredential struct {
	Token string
}

func (PasswordCredential) credential() {}
func (BearerCredential) credential()   {}

// Authenticate dispatches on the credential kind. Both kinds use fp as the
// device: a password logs in and issues a token for fp; a bearer token is decoded and checked against the
// store.
func (s *AuthService) Authenticate(ctx context.Context, cred Credential, fp domain.DeviceFingerprint) (*AuthResult, error) {
	switch c := cred.(type) {
	case PasswordCredential:
		return s.login(ctx, LoginInput{Email: c.Email, Password: c.Password, UserAgent: c.UserAgent}, fp)

	case BearerCredential:
		claims, err := s.Decode(c.Token)
		if err != nil {
			return nil, err
		}
		user, err := s.ValidateToken(ctx, c.Token, claims, fp)
		if err != nil {
			return nil, err
		}
		res := &AuthResult{User: user, Token: c.Token, Claims: claims}
		if claims.ExpiresAt != nil {
			res.ExpiresAt = claims.ExpiresAt.Time
		}
		return res, nil

	default:
		return nil, domain.Internal(fmt.Errorf("unsupported credential %T", cred))
	}
}
