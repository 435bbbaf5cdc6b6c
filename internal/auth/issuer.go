package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/repository"
	"gorm.io/datatypes"
)

// IssueOptions controls whether Issue may register a device it has not seen.
// Login and signup allow it; refresh does not.
type IssueOptions struct {
	AllowCreate bool
	UserAgent   string
	Client      map[string]any
}

// Issuer mints tokens and records them, one per (user, device fingerprint).
type Issuer struct {
	codec *TokenCodec
	store repository.SessionTokenRepository
}

func NewIssuer(codec *TokenCodec, store repository.SessionTokenRepository) *Issuer {
	return &Issuer{codec: codec, store: store}
}

// Issued is a freshly recorded token and whether its device row was new.
type Issued struct {
	Session *domain.SessionToken
	Created bool
}

// Issue signs a token for user and stores it under fp. A token is only
// returned once the store write succeeded. A known device only has its
// token replaced in place, so a row removed by a concurrent logout is never
// recreated unless opts.AllowCreate is set.
func (i *Issuer) Issue(ctx context.Context, user *domain.User, fp domain.DeviceFingerprint, opts IssueOptions) (*Issued, error) {
	signed, err := i.codec.Sign(user)
	if err != nil {
		return nil, domain.Internal(err)
	}

	existing, err := i.store.Find(ctx, user.ID, fp)
	switch {
	case err == nil:
		userAgent, client := existing.UserAgent, map[string]any(existing.Client)
		if opts.UserAgent != "" {
			userAgent, client = opts.UserAgent, opts.Client
		}
		n, err := i.store.ReplaceToken(ctx, user.ID, fp, signed, userAgent, client)
		if err != nil {
			return nil, domain.Internal(err)
		}
		if n > 0 {
			existing.Token = signed
			existing.UserAgent = userAgent
			existing.Client = datatypes.JSONMap(client)
			existing.UpdatedAt = time.Now()
			return &Issued{Session: existing}, nil
		}
		// Deleted between Find and ReplaceToken.

	case errors.Is(err, domain.ErrRecordNotFound):

	default:
		return nil, domain.Internal(err)
	}

	if !opts.AllowCreate {
		return nil, domain.ErrUnknownDevice
	}
	fresh := &domain.SessionToken{
		UserID:    user.ID,
		Token:     signed,
		UserAgent: opts.UserAgent,
		Client:    datatypes.JSONMap(opts.Client),
	}
	fresh.SetFingerprint(fp)
	stored, err := i.store.Upsert(ctx, fresh)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return &Issued{Session: stored, Created: true}, nil
}

// ExpiresAt is the informational expiry of a token minted by this issuer.
func (i *Issuer) ExpiresAt(token string) (time.Time, error) {
	return i.codec.ExpiresAt(token)
}
