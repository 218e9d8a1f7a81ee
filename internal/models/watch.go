package models

import "time"

// WatchHistoryLimit caps how many entries a user's watch history keeps
const WatchHistoryLimit = 50

// WatchHistoryEntry is one video in a user's watch history. Re-watching a
// video deletes and reinserts its row, so the autoincrement primary key
// orders entries most-recent-last; readers sort id DESC for head-first
// order. The unique index on (user_id, video_id) enforces deduplication.
type WatchHistoryEntry struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID  string `gorm:"not null;uniqueIndex:idx_watch_history_entry;index" json:"user_id"`
	VideoID string `gorm:"not null;uniqueIndex:idx_watch_history_entry" json:"video_id"`
	Video   Video  `gorm:"foreignKey:VideoID" json:"video,omitempty"`

	CreatedAt time.Time `json:"watched_at"`
}

// TableName overrides the default table name
func (WatchHistoryEntry) TableName() string {
	return "watch_history"
}

// WatchLaterEntry is one video in a user's watch-later list. Uncapped;
// ordered by insertion (id ASC); deduplicated by the unique index.
type WatchLaterEntry struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID  string `gorm:"not null;uniqueIndex:idx_watch_later_entry;index" json:"user_id"`
	VideoID string `gorm:"not null;uniqueIndex:idx_watch_later_entry" json:"video_id"`
	Video   Video  `gorm:"foreignKey:VideoID" json:"video,omitempty"`

	CreatedAt time.Time `json:"added_at"`
}

// TableName overrides the default table name
func (WatchLaterEntry) TableName() string {
	return "watch_later"
}
