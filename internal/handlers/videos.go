package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cliptide/backend/internal/logger"
	"github.com/cliptide/backend/internal/metrics"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 500 MB upload ceiling, matching the frontend uploader
const maxVideoUploadBytes = 500 << 20

// PublishVideo uploads a video file and creates its record
// POST /api/v1/videos
func (h *Handlers) PublishVideo(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	if h.uploader == nil {
		util.RespondInternalError(c, "video storage is not configured")
		return
	}

	title := c.PostForm("title")
	if title == "" {
		util.RespondBadRequest(c, "title is required")
		return
	}
	description := c.PostForm("description")

	fileHeader, err := c.FormFile("video")
	if err != nil {
		util.RespondBadRequest(c, "video file is required")
		return
	}
	if fileHeader.Size > maxVideoUploadBytes {
		util.RespondBadRequest(c, "video file exceeds the 500MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.RespondInternalError(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	videoData, err := io.ReadAll(file)
	if err != nil {
		util.RespondInternalError(c, "failed to read uploaded file")
		return
	}

	uploadStart := time.Now()
	result, err := h.uploader.UploadVideo(c.Request.Context(), videoData, user.ID, fileHeader.Filename)
	if err != nil {
		logger.Error("video upload failed", err)
		util.RespondInternalError(c, "failed to store video")
		return
	}
	metrics.Get().VideoUploadDuration.Observe(time.Since(uploadStart).Seconds())

	var thumbnailURL string
	if thumbHeader, err := c.FormFile("thumbnail"); err == nil {
		if thumbHeader.Size > maxImageUploadBytes {
			util.RespondBadRequest(c, "thumbnail exceeds the 10MB limit")
			return
		}
		thumb, err := thumbHeader.Open()
		if err != nil {
			util.RespondInternalError(c, "failed to read thumbnail")
			return
		}
		thumbData, err := io.ReadAll(thumb)
		thumb.Close()
		if err != nil {
			util.RespondInternalError(c, "failed to read thumbnail")
			return
		}
		thumbResult, err := h.uploader.UploadImage(c.Request.Context(), thumbData, user.ID, "thumbnails", thumbHeader.Filename)
		if err != nil {
			logger.Error("thumbnail upload failed", err)
			util.RespondInternalError(c, "failed to store thumbnail")
			return
		}
		thumbnailURL = thumbResult.URL
	}

	duration, _ := strconv.ParseFloat(c.PostForm("duration"), 64)

	video := models.Video{
		OwnerID:      user.ID,
		Title:        title,
		Description:  description,
		VideoURL:     result.URL,
		ThumbnailURL: thumbnailURL,
		Duration:     duration,
		IsPublished:  true,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&video).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			UpdateColumn("video_count", gorm.Expr("video_count + 1")).Error
	})
	if err != nil {
		logger.Error("failed to create video record", err)
		// Best effort cleanup of the orphaned object
		if delErr := h.uploader.DeleteFile(c.Request.Context(), result.Key); delErr != nil {
			logger.Warn("failed to delete orphaned upload", delErr)
		}
		util.RespondInternalError(c, "failed to publish video")
		return
	}

	metrics.Get().VideosPublishedTotal.Inc()
	util.RespondSuccess(c, http.StatusCreated, video, "video published")
}

// GetVideo returns a video and bumps its view count
// GET /api/v1/videos/:videoID
func (h *Handlers) GetVideo(c *gin.Context) {
	var video models.Video
	err := h.db.Preload("Owner").First(&video, "id = ?", c.Param("videoID")).Error
	if util.HandleDBError(c, err, "video") {
		return
	}

	if err := h.db.Model(&video).UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		logger.Log.Warn("failed to bump view count", zap.String("video_id", video.ID), zap.Error(err))
	}
	video.ViewCount++

	util.RespondSuccess(c, http.StatusOK, video, "")
}

// ListVideos returns published videos, newest or most viewed first
// GET /api/v1/videos?sort=trending
func (h *Handlers) ListVideos(c *gin.Context) {
	limit := util.ClampLimit(util.ParseInt(c.Query("limit"), 20), 100)
	offset := util.ParseInt(c.Query("offset"), 0)

	query := h.db.Where("is_published = ?", true).Preload("Owner")
	if c.Query("sort") == "trending" {
		query = query.Order("view_count DESC")
	} else {
		query = query.Order("created_at DESC")
	}

	var videos []models.Video
	err := query.Limit(limit).Offset(offset).Find(&videos).Error
	if util.HandleDBError(c, err, "videos") {
		return
	}

	util.RespondSuccess(c, http.StatusOK, videos, "")
}

// DeleteVideo removes the caller's own video
// DELETE /api/v1/videos/:videoID
func (h *Handlers) DeleteVideo(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var video models.Video
	err := h.db.First(&video, "id = ?", c.Param("videoID")).Error
	if util.HandleDBError(c, err, "video") {
		return
	}
	if video.OwnerID != user.ID {
		util.RespondForbidden(c, "you do not own this video")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&video).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			UpdateColumn("video_count", gorm.Expr("GREATEST(video_count - 1, 0)")).Error
	})
	if err != nil {
		logger.Error("failed to delete video", err)
		util.RespondInternalError(c, "failed to delete video")
		return
	}

	util.RespondSuccess(c, http.StatusOK, nil, "video deleted")
}

// RecordWatch puts a video at the head of the caller's watch history
// POST /api/v1/videos/:videoID/watch
func (h *Handlers) RecordWatch(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	if err := h.lists.RecordWatch(user.ID, c.Param("videoID")); err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, http.StatusOK, nil, "watch recorded")
}

// GetWatchHistory returns the caller's history, most recent first
// GET /api/v1/users/me/history
func (h *Handlers) GetWatchHistory(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseInt(c.Query("limit"), models.WatchHistoryLimit)
	entries, err := h.lists.WatchHistory(user.ID, limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, http.StatusOK, entries, "")
}

// ClearWatchHistory empties the caller's history
// DELETE /api/v1/users/me/history
func (h *Handlers) ClearWatchHistory(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	if err := h.lists.ClearWatchHistory(user.ID); err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, http.StatusOK, nil, "watch history cleared")
}

// AddWatchLater queues a video for the caller
// POST /api/v1/videos/:videoID/watch-later
func (h *Handlers) AddWatchLater(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	if err := h.lists.AddToWatchLater(user.ID, c.Param("videoID")); err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.Get().WatchLaterOpsTotal.WithLabelValues("add").Inc()
	util.RespondSuccess(c, http.StatusCreated, nil, "added to watch later")
}

// RemoveWatchLater removes a video from the caller's queue
// DELETE /api/v1/videos/:videoID/watch-later
func (h *Handlers) RemoveWatchLater(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	if err := h.lists.RemoveFromWatchLater(user.ID, c.Param("videoID")); err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.Get().WatchLaterOpsTotal.WithLabelValues("remove").Inc()
	util.RespondSuccess(c, http.StatusOK, nil, "removed from watch later")
}

// GetWatchLater returns the caller's queue, most recently added first
// GET /api/v1/users/me/watch-later
func (h *Handlers) GetWatchLater(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	entries, err := h.lists.WatchLater(user.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, http.StatusOK, entries, "")
}
