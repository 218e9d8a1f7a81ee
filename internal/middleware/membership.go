package middleware

import (
	stderrors "errors"

	"github.com/cliptide/backend/internal/errors"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireMembership resolves the caller's membership in the community named
// by the :communityID path parameter and stores both on the context for
// downstream handlers. The membership must be APPROVED, and when roles are
// given it must also hold one of them. The acting membership always comes
// from the database, never from request input.
func RequireMembership(db *gorm.DB, roles ...models.MembershipRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := util.GetUserFromContext(c)
		if !ok {
			c.Abort()
			return
		}

		communityID := c.Param("communityID")
		if communityID == "" {
			util.RespondBadRequest(c, "community id is required")
			c.Abort()
			return
		}

		var community models.Community
		if err := db.First(&community, "id = ?", communityID).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				util.RespondWithAPIError(c, errors.NotFound("community"))
			} else {
				util.RespondInternalError(c, "database error")
			}
			c.Abort()
			return
		}

		var membership models.Membership
		err := db.Where("user_id = ? AND community_id = ?", user.ID, communityID).First(&membership).Error
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				util.RespondWithAPIError(c, errors.Forbidden("you are not a member of this community"))
			} else {
				util.RespondInternalError(c, "database error")
			}
			c.Abort()
			return
		}

		if membership.Status != models.StatusApproved {
			util.RespondWithAPIError(c, errors.Forbidden("you are not an active member of this community"))
			c.Abort()
			return
		}

		if len(roles) > 0 && !hasRole(membership.Role, roles) {
			util.RespondWithAPIError(c, errors.Forbidden("you do not have permission to manage this community"))
			c.Abort()
			return
		}

		c.Set("community", &community)
		c.Set("membership", &membership)
		c.Next()
	}
}

func hasRole(role models.MembershipRole, allowed []models.MembershipRole) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
