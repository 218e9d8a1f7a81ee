package util

import (
	"net/http"

	"github.com/cliptide/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// GetUserFromContext extracts the authenticated user from the Gin context.
// Responds 401 and returns false if the request is not authenticated.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not authenticated"})
		return nil, false
	}
	userPtr, ok := user.(*models.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "invalid user data in context"})
		return nil, false
	}
	return userPtr, true
}

// GetMembershipFromContext extracts the acting membership resolved by the
// community permission middleware. Never populated from caller input.
func GetMembershipFromContext(c *gin.Context) (*models.Membership, bool) {
	membership, exists := c.Get("membership")
	if !exists {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "membership not resolved"})
		return nil, false
	}
	membershipPtr, ok := membership.(*models.Membership)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "invalid membership data in context"})
		return nil, false
	}
	return membershipPtr, true
}

// GetCommunityFromContext extracts the community resolved by the community
// permission middleware
func GetCommunityFromContext(c *gin.Context) (*models.Community, bool) {
	community, exists := c.Get("community")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "community not resolved"})
		return nil, false
	}
	communityPtr, ok := community.(*models.Community)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "invalid community data in context"})
		return nil, false
	}
	return communityPtr, true
}
