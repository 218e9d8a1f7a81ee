package handlers

import (
	"io"
	"net/http"

	"github.com/cliptide/backend/internal/community"
	"github.com/cliptide/backend/internal/logger"
	"github.com/cliptide/backend/internal/metrics"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// CreateCommunityRequest is the request body for community creation
type CreateCommunityRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=80"`
	Description string `json:"description" binding:"max=2000"`
	Visibility  string `json:"visibility"`
	AvatarURL   string `json:"avatar_url" binding:"omitempty,url"`
}

// CreateCommunity creates a community owned by the caller
// POST /api/v1/communities
func (h *Handlers) CreateCommunity(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req CreateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid community request: "+err.Error())
		return
	}

	visibility := models.CommunityVisibility(req.Visibility)
	if req.Visibility == "" {
		visibility = models.CommunityPrivate
	}

	created, err := h.communities.Create(community.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Visibility:  visibility,
		OwnerID:     user.ID,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, http.StatusCreated, created, "community created")
}

// GetCommunity returns a community by id
// GET /api/v1/communities/:communityID
func (h *Handlers) GetCommunity(c *gin.Context) {
	var comm models.Community
	err := h.db.Preload("Owner").First(&comm, "id = ?", c.Param("communityID")).Error
	if util.HandleDBError(c, err, "community") {
		return
	}

	util.RespondSuccess(c, http.StatusOK, comm, "")
}

// ListCommunities returns communities, newest first
// GET /api/v1/communities
func (h *Handlers) ListCommunities(c *gin.Context) {
	limit := util.ClampLimit(util.ParseInt(c.Query("limit"), 20), 100)
	offset := util.ParseInt(c.Query("offset"), 0)

	var communities []models.Community
	err := h.db.Preload("Owner").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&communities).Error
	if util.HandleDBError(c, err, "communities") {
		return
	}

	util.RespondSuccess(c, http.StatusOK, communities, "")
}

// JoinCommunity files a membership request for the caller
// POST /api/v1/communities/:communityID/join
func (h *Handlers) JoinCommunity(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	membership, err := h.communities.RequestJoin(c.Param("communityID"), user.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.RecordMembershipTransition("requested")
	util.RespondSuccess(c, http.StatusCreated, membership, "membership requested")
}

// LeaveCommunity removes the caller's own membership
// POST /api/v1/communities/:communityID/leave
func (h *Handlers) LeaveCommunity(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	membership, err := h.communities.Leave(c.Param("communityID"), user.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.RecordMembershipTransition("left")
	util.RespondSuccess(c, http.StatusOK, membership, "left community")
}

// ListMembers returns a community's approved members.
// Requires an approved membership, enforced by middleware.
// GET /api/v1/communities/:communityID/members
func (h *Handlers) ListMembers(c *gin.Context) {
	comm, ok := util.GetCommunityFromContext(c)
	if !ok {
		return
	}

	members, err := h.communities.Members(comm.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, http.StatusOK, members, "")
}

// ListPendingRequests returns a community's pending membership requests.
// Owner-only, enforced by middleware.
// GET /api/v1/communities/:communityID/requests
func (h *Handlers) ListPendingRequests(c *gin.Context) {
	comm, ok := util.GetCommunityFromContext(c)
	if !ok {
		return
	}

	requests, err := h.communities.PendingRequests(comm.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.RespondSuccess(c, http.StatusOK, requests, "")
}

// ApproveMembership approves a pending request. Owner-only.
// POST /api/v1/communities/:communityID/requests/:membershipID/approve
func (h *Handlers) ApproveMembership(c *gin.Context) {
	acting, ok := util.GetMembershipFromContext(c)
	if !ok {
		return
	}

	membership, err := h.communities.Approve(c.Param("membershipID"), acting)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.RecordMembershipTransition("approved")
	util.RespondSuccess(c, http.StatusOK, membership, "membership approved")
}

// RejectMembership rejects a pending request. Owner-only.
// POST /api/v1/communities/:communityID/requests/:membershipID/reject
func (h *Handlers) RejectMembership(c *gin.Context) {
	acting, ok := util.GetMembershipFromContext(c)
	if !ok {
		return
	}

	membership, err := h.communities.Reject(c.Param("membershipID"), acting)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.RecordMembershipTransition("rejected")
	util.RespondSuccess(c, http.StatusOK, membership, "membership rejected")
}

// RemoveMember removes an approved member. Owner-only.
// POST /api/v1/communities/:communityID/members/:membershipID/remove
func (h *Handlers) RemoveMember(c *gin.Context) {
	acting, ok := util.GetMembershipFromContext(c)
	if !ok {
		return
	}

	membership, err := h.communities.Remove(c.Param("membershipID"), acting)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	metrics.RecordMembershipTransition("removed")
	util.RespondSuccess(c, http.StatusOK, membership, "member removed")
}

// UploadCommunityAvatar replaces the community avatar. Owner-only.
// POST /api/v1/communities/:communityID/avatar
func (h *Handlers) UploadCommunityAvatar(c *gin.Context) {
	comm, ok := util.GetCommunityFromContext(c)
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

	result, err := h.uploader.UploadImage(c.Request.Context(), imageData, comm.ID, "community-avatars", fileHeader.Filename)
	if err != nil {
		logger.Error("community avatar upload failed", err)
		util.RespondInternalError(c, "failed to store image")
		return
	}

	err = h.db.Model(&models.Community{}).Where("id = ?", comm.ID).
		Update("avatar_url", result.URL).Error
	if err != nil {
		util.RespondInternalError(c, "failed to update community avatar")
		return
	}

	util.RespondSuccess(c, http.StatusOK, gin.H{"url": result.URL}, "avatar updated")
}
