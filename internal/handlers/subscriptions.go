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

// ToggleSubscription subscribes the caller to a channel, or unsubscribes
// if they already follow it
// POST /api/v1/users/:userID/subscribe
func (h *Handlers) ToggleSubscription(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	channelID := c.Param("userID")
	if channelID == user.ID {
		util.RespondBadRequest(c, "you cannot subscribe to yourself")
		return
	}

	var channel models.User
	err := h.db.First(&channel, "id = ?", channelID).Error
	if util.HandleDBError(c, err, "user") {
		return
	}

	var existing models.Subscription
	err = h.db.Where("subscriber_id = ? AND channel_id = ?", user.ID, channelID).First(&existing).Error
	if err == nil {
		// Already subscribed, toggle off
		txErr := h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return tx.Model(&models.User{}).Where("id = ?", channelID).
				UpdateColumn("subscriber_count", gorm.Expr("GREATEST(subscriber_count - 1, 0)")).Error
		})
		if txErr != nil {
			logger.Error("failed to unsubscribe", txErr)
			util.RespondInternalError(c, "failed to unsubscribe")
			return
		}
		util.RespondSuccess(c, http.StatusOK, gin.H{"subscribed": false}, "unsubscribed")
		return
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondInternalError(c, "database error")
		return
	}

	subscription := models.Subscription{SubscriberID: user.ID, ChannelID: channelID}
	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&subscription).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", channelID).
			UpdateColumn("subscriber_count", gorm.Expr("subscriber_count + 1")).Error
	})
	if txErr != nil {
		if stderrors.Is(txErr, gorm.ErrDuplicatedKey) {
			util.RespondConflict(c, "already subscribed")
			return
		}
		logger.Error("failed to subscribe", txErr)
		util.RespondInternalError(c, "failed to subscribe")
		return
	}

	util.RespondSuccess(c, http.StatusCreated, gin.H{"subscribed": true}, "subscribed")
}

// ListSubscriptions returns the channels the caller follows
// GET /api/v1/users/me/subscriptions
func (h *Handlers) ListSubscriptions(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var subscriptions []models.Subscription
	err := h.db.Where("subscriber_id = ?", user.ID).
		Preload("Channel").
		Order("created_at DESC").
		Find(&subscriptions).Error
	if util.HandleDBError(c, err, "subscriptions") {
		return
	}

	util.RespondSuccess(c, http.StatusOK, subscriptions, "")
}
