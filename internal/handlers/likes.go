package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/cliptide/backend/internal/logger"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ToggleLike likes a video, or removes the like if one exists
// POST /api/v1/videos/:videoID/like
func (h *Handlers) ToggleLike(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	videoID := c.Param("videoID")
	var video models.Video
	err := h.db.First(&video, "id = ?", videoID).Error
	if util.HandleDBError(c, err, "video") {
		return
	}

	var existing models.Like
	err = h.db.Where("user_id = ? AND video_id = ?", user.ID, videoID).First(&existing).Error
	if err == nil {
		// Already liked, toggle off
		txErr := h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return tx.Model(&models.Video{}).Where("id = ?", videoID).
				UpdateColumn("like_count", gorm.Expr("GREATEST(like_count - 1, 0)")).Error
		})
		if txErr != nil {
			logger.Error("failed to remove like", txErr)
			util.RespondInternalError(c, "failed to remove like")
			return
		}
		util.RespondSuccess(c, http.StatusOK, gin.H{"liked": false}, "like removed")
		return
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondInternalError(c, "database error")
		return
	}

	like := models.Like{UserID: user.ID, VideoID: videoID}
	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		return tx.Model(&models.Video{}).Where("id = ?", videoID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if txErr != nil {
		if stderrors.Is(txErr, gorm.ErrDuplicatedKey) {
			util.RespondConflict(c, "already liked")
			return
		}
		logger.Error("failed to like video", txErr)
		util.RespondInternalError(c, "failed to like video")
		return
	}

	util.RespondSuccess(c, http.StatusCreated, gin.H{"liked": true}, "video liked")
}

// ListLikedVideos returns the videos the caller has liked, newest like first
// GET /api/v1/users/me/likes
func (h *Handlers) ListLikedVideos(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var likes []models.Like
	err := h.db.Where("user_id = ?", user.ID).
		Preload("Video").
		Preload("Video.Owner").
		Order("created_at DESC").
		Find(&likes).Error
	if util.HandleDBError(c, err, "likes") {
		return
	}

	util.RespondSuccess(c, http.StatusOK, likes, "")
}
