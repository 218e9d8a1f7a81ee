package models

import (
	"time"

	"gorm.io/gorm"
)

// Playlist represents a user-curated ordered collection of videos
type Playlist struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	OwnerID     string `gorm:"not null;index" json:"owner_id"`
	Owner       User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Videos []PlaylistVideo `gorm:"foreignKey:PlaylistID" json:"videos,omitempty"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (Playlist) TableName() string {
	return "playlists"
}

// PlaylistVideo is one entry in a playlist's video set. The autoincrement
// primary key doubles as insertion order; the unique index on
// (playlist_id, video_id) enforces deduplication.
type PlaylistVideo struct {
	ID         uint64   `gorm:"primaryKey;autoIncrement" json:"-"`
	PlaylistID string   `gorm:"not null;uniqueIndex:idx_playlist_videos_entry;index" json:"playlist_id"`
	VideoID    string   `gorm:"not null;uniqueIndex:idx_playlist_videos_entry" json:"video_id"`
	Video      Video    `gorm:"foreignKey:VideoID" json:"video,omitempty"`
	Playlist   Playlist `gorm:"foreignKey:PlaylistID" json:"-"`

	CreatedAt time.Time `json:"added_at"`
}

// TableName overrides the default table name
func (PlaylistVideo) TableName() string {
	return "playlist_videos"
}
