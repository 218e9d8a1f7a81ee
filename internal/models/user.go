package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a Cliptide account with unified auth
type User struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	FullName string `gorm:"not null" json:"full_name"`

	// Native auth fields
	PasswordHash  *string `gorm:"type:text" json:"-"`
	EmailVerified bool    `gorm:"default:false" json:"email_verified"`

	// OAuth provider IDs (nullable - users can have native accounts)
	GoogleID *string `gorm:"uniqueIndex" json:"-"`

	// Profile data
	AvatarURL     string `json:"avatar_url"`
	CoverImageURL string `json:"cover_image_url"`

	// Session credential; rotated on login, cleared on logout
	RefreshToken *string `gorm:"type:text" json:"-"`

	// TOTP second factor
	TwoFactorSecret  *string `gorm:"type:text" json:"-"`
	TwoFactorEnabled bool    `gorm:"default:false" json:"two_factor_enabled"`

	// Channel stats (denormalized counters, not source of truth)
	SubscriberCount int `gorm:"default:0" json:"subscriber_count"`
	VideoCount      int `gorm:"default:0" json:"video_count"`

	// Activity tracking
	LastActiveAt *time.Time `json:"last_active_at"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (User) TableName() string {
	return "users"
}

// PublicProfile returns the fields safe to expose to other users
func (u *User) PublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":               u.ID,
		"username":         u.Username,
		"full_name":        u.FullName,
		"avatar_url":       u.AvatarURL,
		"cover_image_url":  u.CoverImageURL,
		"subscriber_count": u.SubscriberCount,
	}
}

// HasPassword reports whether the account can authenticate natively
// (OAuth-only accounts have no password hash)
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil
}
