package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cliptide/backend/internal/auth"
	"github.com/cliptide/backend/internal/logger"
	"github.com/cliptide/backend/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthHandlers contains authentication endpoints
type AuthHandlers struct {
	service *auth.Service
}

// NewAuthHandlers creates auth handlers backed by the given service
func NewAuthHandlers(service *auth.Service) *AuthHandlers {
	return &AuthHandlers{service: service}
}

// Register creates a new account with email and password
// POST /api/v1/auth/register
func (h *AuthHandlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid registration request: "+err.Error())
		return
	}

	resp, err := h.service.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			util.RespondConflict(c, "an account with this email already exists")
		case errors.Is(err, auth.ErrUsernameExists):
			util.RespondConflict(c, "username already taken")
		default:
			logger.Error("registration failed", err)
			util.RespondInternalError(c, "failed to create account")
		}
		return
	}

	util.RespondSuccess(c, http.StatusCreated, resp, "account created")
}

// Login authenticates with email and password
// POST /api/v1/auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid login request: "+err.Error())
		return
	}

	resp, err := h.service.Login(req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidCredentials):
			util.RespondUnauthorized(c, "invalid email or password")
		default:
			logger.Error("login failed", err)
			util.RespondInternalError(c, "failed to sign in")
		}
		return
	}

	util.RespondSuccess(c, http.StatusOK, resp, "signed in")
}

// Refresh rotates the refresh token and issues a new token pair
// POST /api/v1/auth/refresh
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "refresh_token is required")
		return
	}

	resp, err := h.service.Refresh(req.RefreshToken)
	if err != nil {
		util.RespondUnauthorized(c, "invalid or expired refresh token")
		return
	}

	util.RespondSuccess(c, http.StatusOK, resp, "token refreshed")
}

// Logout invalidates the caller's refresh token
// POST /api/v1/auth/logout
func (h *AuthHandlers) Logout(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	if err := h.service.Logout(user.ID); err != nil {
		logger.Error("logout failed", err)
		util.RespondInternalError(c, "failed to sign out")
		return
	}

	util.RespondSuccess(c, http.StatusOK, nil, "signed out")
}

// Me returns the authenticated user's profile
// GET /api/v1/auth/me
func (h *AuthHandlers) Me(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	util.RespondSuccess(c, http.StatusOK, user, "")
}

// SendOTP emails a verification code to the authenticated user
// POST /api/v1/auth/otp/send
func (h *AuthHandlers) SendOTP(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	if user.EmailVerified {
		util.RespondBadRequest(c, "email is already verified")
		return
	}

	if err := h.service.SendOTP(c.Request.Context(), user.Email); err != nil {
		logger.Error("failed to send verification code", err)
		util.RespondInternalError(c, "failed to send verification code")
		return
	}

	util.RespondSuccess(c, http.StatusOK, nil, "verification code sent")
}

// VerifyOTP checks the submitted code and marks the email verified
// POST /api/v1/auth/otp/verify
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "a 6-digit code is required")
		return
	}

	err := h.service.VerifyOTP(c.Request.Context(), user.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrOTPExpired):
			util.RespondBadRequest(c, "verification code expired, request a new one")
		case errors.Is(err, auth.ErrOTPMismatch):
			util.RespondBadRequest(c, "verification code is incorrect")
		case errors.Is(err, auth.ErrOTPExhausted):
			util.RespondBadRequest(c, "too many failed attempts, request a new code")
		default:
			logger.Error("otp verification failed", err)
			util.RespondInternalError(c, "failed to verify code")
		}
		return
	}

	util.RespondSuccess(c, http.StatusOK, nil, "email verified")
}

// GoogleLogin redirects to Google's consent screen
// GET /api/v1/auth/google
func (h *AuthHandlers) GoogleLogin(c *gin.Context) {
	state := uuid.New().String()
	c.SetCookie("oauth_state", state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.service.GetGoogleOAuthURL(state))
}

// GoogleCallback completes the Google OAuth flow
// GET /api/v1/auth/google/callback
func (h *AuthHandlers) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie("oauth_state")
	if err != nil || state == "" || state != c.Query("state") {
		util.RespondBadRequest(c, "invalid oauth state")
		return
	}

	code := c.Query("code")
	if code == "" {
		util.RespondBadRequest(c, "missing authorization code")
		return
	}

	resp, err := h.service.HandleGoogleCallback(c.Request.Context(), code)
	if err != nil {
		logger.Error("google oauth callback failed", err)
		util.RespondInternalError(c, "failed to sign in with Google")
		return
	}

	util.RespondSuccess(c, http.StatusOK, resp, "signed in")
}

// AuthMiddleware validates the Bearer token and loads the current user
// into the request context
func (h *AuthHandlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.RespondUnauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			util.RespondUnauthorized(c, "authorization header must use Bearer scheme")
			c.Abort()
			return
		}

		user, err := h.service.ValidateToken(token)
		if err != nil {
			logger.Log.Debug("token validation failed", zap.Error(err))
			util.RespondUnauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}
