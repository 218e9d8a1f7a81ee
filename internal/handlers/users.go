package handlers

import (
	"io"
	"net/http"

	"github.com/cliptide/backend/internal/logger"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/util"
	"github.com/gin-gonic/gin"
)

const maxImageUploadBytes = 10 << 20

// GetUserProfile returns a user's public profile with their videos
// GET /api/v1/users/:userID
func (h *Handlers) GetUserProfile(c *gin.Context) {
	var user models.User
	err := h.db.First(&user, "id = ?", c.Param("userID")).Error
	if util.HandleDBError(c, err, "user") {
		return
	}

	var videos []models.Video
	err = h.db.Where("owner_id = ? AND is_published = ?", user.ID, true).
		Order("created_at DESC").
		Limit(20).
		Find(&videos).Error
	if util.HandleDBError(c, err, "videos") {
		return
	}

	util.RespondSuccess(c, http.StatusOK, gin.H{
		"user":   user.PublicProfile(),
		"videos": videos,
	}, "")
}

// UpdateProfileRequest is the request body for profile updates
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"omitempty,min=1,max=80"`
}

// UpdateProfile updates the caller's editable profile fields
// PUT /api/v1/users/me
func (h *Handlers) UpdateProfile(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid profile request: "+err.Error())
		return
	}
	if req.FullName == "" {
		util.RespondBadRequest(c, "nothing to update")
		return
	}

	err := h.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("full_name", req.FullName).Error
	if err != nil {
		util.RespondInternalError(c, "failed to update profile")
		return
	}
	user.FullName = req.FullName

	util.RespondSuccess(c, http.StatusOK, user, "profile updated")
}

// UploadAvatar replaces the caller's avatar image
// POST /api/v1/users/me/avatar
func (h *Handlers) UploadAvatar(c *gin.Context) {
	h.uploadUserImage(c, "avatar", "avatar_url")
}

// UploadCoverImage replaces the caller's channel cover image
// POST /api/v1/users/me/cover
func (h *Handlers) UploadCoverImage(c *gin.Context) {
	h.uploadUserImage(c, "cover", "cover_image_url")
}

func (h *Handlers) uploadUserImage(c *gin.Context, kind, column string) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	if h.uploader == nil {
		util.RespondInternalError(c, "image storage is not configured")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		util.RespondBadRequest(c, "image file is required")
		return
	}
	if fileHeader.Size > maxImageUploadBytes {
		util.RespondBadRequest(c, "image file exceeds the 10MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.RespondInternalError(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		util.RespondInternalError(c, "failed to read uploaded file")
		return
	}

	result, err := h.uploader.UploadImage(c.Request.Context(), imageData, user.ID, kind, fileHeader.Filename)
	if err != nil {
		logger.Error("image upload failed", err)
		util.RespondInternalError(c, "failed to store image")
		return
	}

	err = h.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update(column, result.URL).Error
	if err != nil {
		util.RespondInternalError(c, "failed to update profile image")
		return
	}

	util.RespondSuccess(c, http.StatusOK, gin.H{"url": result.URL}, "image updated")
}
