package lists

import (
	stderrors "errors"
	"fmt"

	"github.com/cliptide/backend/internal/errors"
	"github.com/cliptide/backend/internal/metrics"
	"github.com/cliptide/backend/internal/models"
	"gorm.io/gorm"
)

// Service maintains per-user video lists: the bounded watch history,
// the unbounded watch-later queue, and playlist contents. Recency and
// insertion order ride on the autoincrement row ids, so reads never
// need a separate position column.
type Service struct {
	db *gorm.DB
}

// NewService creates a list service bound to a database handle
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RecordWatch puts a video at the head of the user's watch history.
// Rewatching promotes the existing entry to the head instead of
// duplicating it, and the history never holds more than
// models.WatchHistoryLimit entries.
func (s *Service) RecordWatch(userID, videoID string) error {
	if err := s.videoExists(videoID); err != nil {
		return err
	}

	rewatch := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Delete-then-insert gives the rewatched video a fresh id,
		// which is what moves it to the head on id DESC reads
		res := tx.Where("user_id = ? AND video_id = ?", userID, videoID).
			Delete(&models.WatchHistoryEntry{})
		if res.Error != nil {
			return fmt.Errorf("failed to dedup watch history: %w", res.Error)
		}
		rewatch = res.RowsAffected > 0

		entry := &models.WatchHistoryEntry{UserID: userID, VideoID: videoID}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to record watch: %w", err)
		}

		return trimHistory(tx, userID)
	})
	if err != nil {
		return err
	}

	if rewatch {
		metrics.RecordWatchEvent("rewatch")
	} else {
		metrics.RecordWatchEvent("watch")
	}
	return nil
}

// trimHistory drops the oldest entries beyond the history cap
func trimHistory(tx *gorm.DB, userID string) error {
	var keep []uint64
	err := tx.Model(&models.WatchHistoryEntry{}).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(models.WatchHistoryLimit).
		Pluck("id", &keep).Error
	if err != nil {
		return fmt.Errorf("failed to read history window: %w", err)
	}
	if len(keep) < models.WatchHistoryLimit {
		return nil
	}

	res := tx.Where("user_id = ? AND id NOT IN ?", userID, keep).
		Delete(&models.WatchHistoryEntry{})
	if res.Error != nil {
		return fmt.Errorf("failed to trim watch history: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		metrics.Get().HistoryTrimsTotal.Inc()
	}
	return nil
}

// WatchHistory returns the user's history, most recently watched first
func (s *Service) WatchHistory(userID string, limit int) ([]models.WatchHistoryEntry, error) {
	if limit <= 0 || limit > models.WatchHistoryLimit {
		limit = models.WatchHistoryLimit
	}

	var entries []models.WatchHistoryEntry
	err := s.db.Where("user_id = ?", userID).
		Preload("Video").
		Preload("Video.Owner").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watch history: %w", err)
	}
	return entries, nil
}

// ClearWatchHistory deletes the user's entire history
func (s *Service) ClearWatchHistory(userID string) error {
	err := s.db.Where("user_id = ?", userID).Delete(&models.WatchHistoryEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear watch history: %w", err)
	}
	return nil
}

// AddToWatchLater queues a video for later viewing. Adding a video
// that is already queued is a conflict.
func (s *Service) AddToWatchLater(userID, videoID string) error {
	if err := s.videoExists(videoID); err != nil {
		return err
	}

	entry := &models.WatchLaterEntry{UserID: userID, VideoID: videoID}
	if err := s.db.Create(entry).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Conflict("video is already in watch later")
		}
		return fmt.Errorf("failed to add to watch later: %w", err)
	}
	return nil
}

// RemoveFromWatchLater removes a video from the queue. Removing a
// video that is not queued is a no-op.
func (s *Service) RemoveFromWatchLater(userID, videoID string) error {
	err := s.db.Where("user_id = ? AND video_id = ?", userID, videoID).
		Delete(&models.WatchLaterEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove from watch later: %w", err)
	}
	return nil
}

// WatchLater returns the user's queue, most recently added first
func (s *Service) WatchLater(userID string) ([]models.WatchLaterEntry, error) {
	var entries []models.WatchLaterEntry
	err := s.db.Where("user_id = ?", userID).
		Preload("Video").
		Preload("Video.Owner").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watch later: %w", err)
	}
	return entries, nil
}

// AddToPlaylist appends a video to a playlist the user owns. A video
// already in the playlist is a conflict; insertion order is preserved.
func (s *Service) AddToPlaylist(playlistID, userID, videoID string) error {
	if err := s.ownedPlaylist(playlistID, userID); err != nil {
		return err
	}
	if err := s.videoExists(videoID); err != nil {
		return err
	}

	entry := &models.PlaylistVideo{PlaylistID: playlistID, VideoID: videoID}
	if err := s.db.Create(entry).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Conflict("video is already in this playlist")
		}
		return fmt.Errorf("failed to add video to playlist: %w", err)
	}
	return nil
}

// RemoveFromPlaylist removes a video from a playlist the user owns.
// The video must actually be in the playlist.
func (s *Service) RemoveFromPlaylist(playlistID, userID, videoID string) error {
	if err := s.ownedPlaylist(playlistID, userID); err != nil {
		return err
	}

	result := s.db.Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Delete(&models.PlaylistVideo{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove video from playlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("video in playlist")
	}
	return nil
}

// PlaylistVideos returns a playlist's videos in the order they were added
func (s *Service) PlaylistVideos(playlistID string) ([]models.PlaylistVideo, error) {
	var entries []models.PlaylistVideo
	err := s.db.Where("playlist_id = ?", playlistID).
		Preload("Video").
		Preload("Video.Owner").
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist videos: %w", err)
	}
	return entries, nil
}

// ownedPlaylist verifies the playlist exists and belongs to the user
func (s *Service) ownedPlaylist(playlistID, userID string) error {
	var playlist models.Playlist
	err := s.db.Select("id", "owner_id").First(&playlist, "id = ?", playlistID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("playlist")
		}
		return fmt.Errorf("database error: %w", err)
	}
	if playlist.OwnerID != userID {
		return errors.Forbidden("you do not own this playlist")
	}
	return nil
}

// videoExists verifies a video id refers to a stored video
func (s *Service) videoExists(videoID string) error {
	var count int64
	err := s.db.Model(&models.Video{}).Where("id = ?", videoID).Count(&count).Error
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return errors.NotFound("video")
	}
	return nil
}
