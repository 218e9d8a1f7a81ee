package models

import (
	"time"

	"gorm.io/gorm"
)

// Video represents a published video with its media URLs and metadata
type Video struct {
	ID      string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	OwnerID string `gorm:"not null;index" json:"owner_id"`
	Owner   User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	// Media host URLs
	VideoURL     string `gorm:"not null" json:"video_url"`
	ThumbnailURL string `gorm:"not null" json:"thumbnail_url"`

	Duration    float64 `json:"duration"` // seconds
	ViewCount   int64   `gorm:"default:0" json:"view_count"`
	LikeCount   int64   `gorm:"default:0" json:"like_count"`
	IsPublished bool    `gorm:"default:true" json:"is_published"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (Video) TableName() string {
	return "videos"
}
