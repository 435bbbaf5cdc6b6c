package postgres

import (
	"context"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionTokenRepository struct {
	db *gorm.DB
}

func NewSessionTokenRepository(db *gorm.DB) *sessionTokenRepository {
	return &sessionTokenRepository{db: db}
}

func (r *sessionTokenRepository) Find(ctx context.Context, userID uuid.UUID, fp domain.DeviceFingerprint) (*domain.SessionToken, error) {
	var token domain.SessionToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND os = ? AND platform = ? AND browser = ?", userID, fp.OS, fp.Platform, fp.Browser).
		First(&token).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &token, nil
}

// Upsert is a single INSERT ... ON CONFLICT statement, so concurrent logins
// from the same device never produce a second row.
func (r *sessionTokenRepository) Upsert(ctx context.Context, token *domain.SessionToken) (*domain.SessionToken, error) {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	now := time.Now()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = now
	}
	token.UpdatedAt = now

	err := r.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "os"},
				{Name: "platform"},
				{Name: "browser"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"token", "user_agent", "client", "updated_at"}),
		},
		clause.Returning{},
	).Create(token).Error
	if err != nil {
		return nil, translateError(err)
	}
	return token, nil
}

// ReplaceToken is a plain UPDATE, so a row deleted by a concurrent logout
// stays deleted.
func (r *sessionTokenRepository) ReplaceToken(ctx context.Context, userID uuid.UUID, fp domain.DeviceFingerprint, token, userAgent string, client map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.SessionToken{}).
		Where("user_id = ? AND os = ? AND platform = ? AND browser = ?", userID, fp.OS, fp.Platform, fp.Browser).
		Updates(map[string]interface{}{
			"token":      token,
			"user_agent": userAgent,
			"client":     datatypes.JSONMap(client),
			"updated_at": time.Now(),
		})
	return res.RowsAffected, translateError(res.Error)
}

func (r *sessionTokenRepository) DeleteByUserAndFingerprint(ctx context.Context, userID uuid.UUID, fp domain.DeviceFingerprint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND os = ? AND platform = ? AND browser = ?", userID, fp.OS, fp.Platform, fp.Browser).
		Delete(&domain.SessionToken{})
	return res.RowsAffected, translateError(res.Error)
}

func (r *sessionTokenRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&domain.SessionToken{}, "user_id = ?", userID)
	return res.RowsAffected, translateError(res.Error)
}

func (r *sessionTokenRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]*domain.SessionToken, error) {
	var tokens []*domain.SessionToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, translateError(err)
	}
	return tokens, nil
}
