package handlers

import (
	"net/http"

	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

const otpIssuer = "ClipTide"

// Enable2FARequest is the request body for initiating 2FA setup
type Enable2FARequest struct {
	Password string `json:"password" binding:"required"`
}

// Enable2FAResponse contains the TOTP setup data
type Enable2FAResponse struct {
	Secret    string `json:"secret"`      // Base32-encoded secret for manual entry
	QRCodeURL string `json:"qr_code_url"` // otpauth:// URL for QR code
}

// Verify2FARequest is the request body for verifying 2FA setup
type Verify2FARequest struct {
	Code string `json:"code" binding:"required"`
}

// Get2FAStatus returns whether 2FA is enabled for the caller
// GET /api/v1/auth/2fa/status
func (h *Handlers) Get2FAStatus(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"enabled": user.TwoFactorEnabled}, "")
}

// Enable2FA generates a TOTP secret for the caller. The secret stays
// inactive until verified with a valid code.
// POST /api/v1/auth/2fa/enable
func (h *Handlers) Enable2FA(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	if user.TwoFactorEnabled {
		util.RespondBadRequest(c, "2FA is already enabled")
		return
	}

	var req Enable2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "password is required")
		return
	}
	if !h.checkPassword(user, req.Password) {
		util.RespondUnauthorized(c, "invalid password")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      otpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		util.RespondInternalError(c, "failed to generate 2FA secret")
		return
	}

	secret := key.Secret()
	err = h.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("two_factor_secret", secret).Error
	if err != nil {
		util.RespondInternalError(c, "failed to store 2FA secret")
		return
	}

	util.RespondSuccess(c, http.StatusOK, Enable2FAResponse{
		Secret:    secret,
		QRCodeURL: key.URL(),
	}, "scan the QR code and verify with a code to finish setup")
}

// Verify2FA confirms the pending secret and switches 2FA on
// POST /api/v1/auth/2fa/verify
func (h *Handlers) Verify2FA(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	if user.TwoFactorSecret == nil || *user.TwoFactorSecret == "" {
		util.RespondBadRequest(c, "2FA setup has not been started")
		return
	}

	var req Verify2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "code is required")
		return
	}

	if !totp.Validate(req.Code, *user.TwoFactorSecret) {
		util.RespondBadRequest(c, "invalid 2FA code")
		return
	}

	err := h.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("two_factor_enabled", true).Error
	if err != nil {
		util.RespondInternalError(c, "failed to enable 2FA")
		return
	}

	util.RespondSuccess(c, http.StatusOK, gin.H{"enabled": true}, "2FA enabled")
}

// Disable2FA turns 2FA off after checking a valid code
// POST /api/v1/auth/2fa/disable
func (h *Handlers) Disable2FA(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	if !user.TwoFactorEnabled || user.TwoFactorSecret == nil {
		util.RespondBadRequest(c, "2FA is not enabled")
		return
	}

	var req Verify2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "code is required")
		return
	}

	if !totp.Validate(req.Code, *user.TwoFactorSecret) {
		util.RespondBadRequest(c, "invalid 2FA code")
		return
	}

	updates := map[string]interface{}{
		"two_factor_enabled": false,
		"two_factor_secret":  nil,
	}
	if err := h.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "failed to disable 2FA")
		return
	}

	util.RespondSuccess(c, http.StatusOK, gin.H{"enabled": false}, "2FA disabled")
}

func (h *Handlers) checkPassword(user *models.User, password string) bool {
	if user.PasswordHash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) == nil
}
