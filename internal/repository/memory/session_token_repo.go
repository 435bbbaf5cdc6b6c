package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/repository"
	"github.com/google/uuid"
)

type deviceKey struct {
	userID uuid.UUID
	fp     domain.DeviceFingerprint
}

// SessionTokenRepository keys rows by (user, fingerprint); the map key is
// what enforces one row per device.
type SessionTokenRepository struct {
	mu     sync.RWMutex
	tokens map[deviceKey]domain.SessionToken
	// now is overridable so ordering tests do not depend on clock resolution.
	now func() time.Time
}

func NewSessionTokenRepository() *SessionTokenRepository {
	return &SessionTokenRepository{
		tokens: make(map[deviceKey]domain.SessionToken),
		now:    time.Now,
	}
}

func (r *SessionTokenRepository) Find(ctx context.Context, userID uuid.UUID, fp domain.DeviceFingerprint) (*domain.SessionToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[deviceKey{userID: userID, fp: fp}]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	c := copyToken(&t)
	return &c, nil
}

func (r *SessionTokenRepository) Upsert(ctx context.Context, token *domain.SessionToken) (*domain.SessionToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := deviceKey{userID: token.UserID, fp: token.Fingerprint()}
	now := r.now()

	stored, ok := r.tokens[key]
	if ok {
		stored.Token = token.Token
		stored.UserAgent = token.UserAgent
		stored.Client = token.Client
		stored.UpdatedAt = now
	} else {
		stored = copyToken(token)
		if stored.ID == uuid.Nil {
			stored.ID = uuid.New()
		}
		stored.CreatedAt = now
		stored.UpdatedAt = now
	}
	r.tokens[key] = stored

	c := copyToken(&stored)
	return &c, nil
}

func (r *SessionTokenRepository) ReplaceToken(ctx context.Context, userID uuid.UUID, fp domain.DeviceFingerprint, token, userAgent string, client map[string]any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := deviceKey{userID: userID, fp: fp}
	stored, ok := r.tokens[key]
	if !ok {
		return 0, nil
	}
	stored.Token = token
	stored.UserAgent = userAgent
	stored.Client = maps.Clone(client)
	stored.UpdatedAt = r.now()
	r.tokens[key] = stored
	return 1, nil
}

func (r *SessionTokenRepository) DeleteByUserAndFingerprint(ctx context.Context, userID uuid.UUID, fp domain.DeviceFingerprint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := deviceKey{userID: userID, fp: fp}
	if _, ok := r.tokens[key]; !ok {
		return 0, nil
	}
	delete(r.tokens, key)
	return 1, nil
}

func (r *SessionTokenRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for key := range r.tokens {
		if key.userID == userID {
			delete(r.tokens, key)
			n++
		}
	}
	return n, nil
}

func (r *SessionTokenRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]*domain.SessionToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.SessionToken
	for key, t := range r.tokens {
		if key.userID == userID {
			c := copyToken(&t)
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Count returns the total number of stored session rows.
func (r *SessionTokenRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

func copyToken(t *domain.SessionToken) domain.SessionToken {
	c := *t
	if t.Client != nil {
		c.Client = maps.Clone(t.Client)
	}
	return c
}

var _ repository.SessionTokenRepository = (*SessionTokenRepository)(nil)
