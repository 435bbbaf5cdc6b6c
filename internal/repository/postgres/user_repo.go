package postgres

import (
	"context"
	"strings"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "lower(email) = ?", strings.ToLower(email)).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByActivationSecret(ctx context.Context, secret string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "activation_secret = ?", secret).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// Update saves every column, so a nil ActivationSecret is written as NULL.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return translateError(r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id).Error)
}
