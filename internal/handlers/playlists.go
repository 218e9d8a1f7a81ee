package handlers

import (
	"net/http"

	"github.com/cliptide/backend/internal/metrics"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// PlaylistRequest is the request body for playlist create and update
type PlaylistRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"max=2000"`
}

// CreatePlaylist creates an empty playlist owned by the caller
// POST /api/v1/playlists
func (h *Handlers) CreatePlaylist(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req PlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid playlist request: "+err.Error())
		return
	}

	playlist := models.Playlist{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     user.ID,
	}
	if err := h.db.Create(&playlist).Error; err != nil {
		util.RespondInternalError(c, "failed to create playlist")
		return
	}

	util.RespondSuccess(c, http.StatusCreated, playlist, "playlist created")
}

// ListPlaylists returns the caller's playlists
// GET /api/v1/playlists
func (h *Handlers) ListPlaylists(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var playlists []models.Playlist
	err := h.db.Where("owner_id = ?", user.ID).
		Order("created_at DESC").
		Find(&playlists).Error
	if util.HandleDBError(c, err, "playlists") {
		return
	}

	util.RespondSuccess(c, http.StatusOK, playlists, "")
}

// GetPlaylist returns one playlist with its videos in insertion order
// GET /api/v1/playlists/:playlistID
func (h *Handlers) GetPlaylist(c *gin.Context) {
	var playlist models.Playlist
	err := h.db.Preload("Owner").First(&playlist, "id = ?", c.Param("playlistID")).Error
	if util.HandleDBError(c, err, "playlist") {
		return
	}

	videos, err := h.lists.PlaylistVideos(playlist.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	playlist.Videos = videos

	util.RespondSuccess(c, http.StatusOK, playlist, "")
}

// UpdatePlaylist renames or redescribes the caller's playlist
// PUT /api/v1/playlists/:playlistID
func (h *Handlers) UpdatePlaylist(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req PlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid playlist request: "+err.Error())
		return
	}

	var playlist models.Playlist
	err := h.db.First(&playlist, "id = ?", c.Param("playlistID")).Error
	if util.HandleDBError(c, err, "playlist") {
		return
	}
	if playlist.OwnerID != user.ID {
		util.RespondForbidden(c, "you do not own this playlist")
		return
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
	}
	if err := h.db.Model(&playlist).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "failed to update playlist")
		return
	}
	playlist.Name = req.Name
	playlist.Description = req.Description

	util.RespondSuccess(c, http.StatusOK, playlist, "playlist updated")
}

// DeletePlaylist deletes the caller's playlist and its contents
// DELETE /api/v1/playlists/:playlistID
func (h *Handlers) DeletePlaylist(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var playlist models.Playlist
	err := h.db.First(&playlist, "id = ?", c.Param("playlistID")).Error
	if util.HandleDBError(c, err, "playlist") {
		return
	}
	if playlist.OwnerID != user.ID {
		util.RespondForbidden(c, "you do not own this playlist")
		return
	}

	if err := h.db.Select("Videos").Delete(&playlist).Error; err != nil {
		util.RespondInternalError(c, "failed to delete playlist")
		return
	}

	util.RespondSuccess(c, http.StatusOK, nil, "playlist deleted")
}

// AddVideoToPlaylist appends a video to the caller's playlist
// POST /api/v1/playlists/:playlistID/videos/:videoID
func (h *Handlers) AddVideoToPlaylist(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	err := h.lists.AddToPlaylist(c.Param("playlistID"), user.ID, c.Param("videoID"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.Get().PlaylistMutationsTotal.WithLabelValues("add").Inc()
	util.RespondSuccess(c, http.StatusCreated, nil, "video added to playlist")
}

// RemoveVideoFromPlaylist removes a video from the caller's playlist
// DELETE /api/v1/playlists/:playlistID/videos/:videoID
func (h *Handlers) RemoveVideoFromPlaylist(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	err := h.lists.RemoveFromPlaylist(c.Param("playlistID"), user.ID, c.Param("videoID"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.Get().PlaylistMutationsTotal.WithLabelValues("remove").Inc()
	util.RespondSuccess(c, http.StatusOK, nil, "video removed from playlist")
}
