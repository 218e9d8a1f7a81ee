package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription records one user following another user's channel. Unique
// per live (subscriber, channel) pair; unsubscribing soft-deletes the row,
// so uniqueness is enforced by the partial index in database.Migrate, not
// a struct tag, to keep re-subscribing possible.
type Subscription struct {
	ID           string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SubscriberID string `gorm:"not null;index" json:"subscriber_id"`
	Subscriber   User   `gorm:"foreignKey:SubscriberID" json:"subscriber,omitempty"`
	ChannelID    string `gorm:"not null;index" json:"channel_id"`
	Channel      User   `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (Subscription) TableName() string {
	return "subscriptions"
}
