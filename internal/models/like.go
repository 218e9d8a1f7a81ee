package models

import "time"

// Like records one user liking one video. Unique per (user, video) pair;
// unliking hard-deletes the row, so the composite unique index needs no
// partial predicate.
type Like struct {
	ID      string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID  string `gorm:"not null;uniqueIndex:idx_likes_pair;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	VideoID string `gorm:"not null;uniqueIndex:idx_likes_pair" json:"video_id"`
	Video   Video  `gorm:"foreignKey:VideoID" json:"video,omitempty"`

	CreatedAt time.Time `json:"liked_at"`
}

// TableName overrides the default table name
func (Like) TableName() string {
	return "likes"
}
