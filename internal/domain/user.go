package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email            string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash     string    `json:"-" gorm:"not null"`
	ActivationSecret *string   `json:"-" gorm:"uniqueIndex"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	SessionTokens []SessionToken `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// IsActivated reports whether the account confirmation link has been used.
func (u *User) IsActivated() bool {
	return u.ActivationSecret == nil
}
