package database

import (
	"fmt"
	"time"

	"github.com/cliptide/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds connection settings read by the startup routine
type Config struct {
	URL          string
	MaxIdleConns int
	MaxOpenConns int
	Verbose      bool
}

// Connect opens the database and configures the connection pool. The handle
// is owned by the caller and passed to every component that needs it; no
// package-level connection state exists.
func Connect(cfg Config) (*gorm.DB, error) {
	gormLogger := logger.Default
	if cfg.Verbose {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 10
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 100
	}
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate runs auto-migration for all models and creates the indexes the
// application's invariants depend on
func Migrate(db *gorm.DB) error {
	// gen_random_uuid is built in on Postgres 13+; pgcrypto provides it on
	// older servers. Failure is non-fatal.
	db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto")

	err := db.AutoMigrate(
		&models.User{},
		&models.Video{},
		&models.Community{},
		&models.Membership{},
		&models.Playlist{},
		&models.PlaylistVideo{},
		&models.WatchHistoryEntry{},
		&models.WatchLaterEntry{},
		&models.Subscription{},
		&models.Like{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return createIndexes(db)
}

// createIndexes creates indexes AutoMigrate's struct tags cannot express.
// The membership pair index is what makes concurrent duplicate join
// requests fail atomically at the storage layer.
func createIndexes(db *gorm.DB) error {
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_videos_owner_created ON videos (owner_id, created_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_videos_published_views ON videos (is_published, view_count DESC)")

	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_memberships_pair ON memberships (user_id, community_id) WHERE deleted_at IS NULL")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_memberships_community_status ON memberships (community_id, status)")

	// Partial like the membership index: soft-deleted rows must not block
	// a later re-subscribe
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_pair ON subscriptions (subscriber_id, channel_id) WHERE deleted_at IS NULL")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_watch_history_user_recent ON watch_history (user_id, id DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_playlist_videos_order ON playlist_videos (playlist_id, id)")

	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks database connectivity
func Health(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
