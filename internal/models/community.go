package models

import (
	"time"

	"gorm.io/gorm"
)

// CommunityVisibility controls who can see a community's content
type CommunityVisibility string

const (
	CommunityPublic     CommunityVisibility = "public"
	CommunityPrivate    CommunityVisibility = "private"
	CommunityRestricted CommunityVisibility = "restricted"
)

// Valid reports whether v is a recognized visibility class
func (v CommunityVisibility) Valid() bool {
	switch v {
	case CommunityPublic, CommunityPrivate, CommunityRestricted:
		return true
	}
	return false
}

// Community represents a named group of users with one distinguished owner
type Community struct {
	ID   string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name string `gorm:"not null" json:"name"`

	// URL-safe identifier derived from Name; globally unique
	NormalizedName string `gorm:"uniqueIndex;not null" json:"normalized_name"`

	Description string              `gorm:"type:text" json:"description"`
	Visibility  CommunityVisibility `gorm:"not null;default:'private'" json:"visibility"`
	OwnerID     string              `gorm:"not null;index" json:"owner_id"`
	Owner       User                `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	AvatarURL   string              `json:"avatar_url"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (Community) TableName() string {
	return "communities"
}
