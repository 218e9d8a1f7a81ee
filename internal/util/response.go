package util

import (
	stderrors "errors"
	"net/http"

	"github.com/cliptide/backend/internal/errors"
	"github.com/cliptide/backend/internal/logger"
	"github.com/cliptide/backend/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrorResponse is the stable error envelope returned on every failure
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// SuccessResponse is the envelope returned on every success
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// RespondSuccess sends the success envelope with the given status
func RespondSuccess(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, SuccessResponse{Success: true, Data: data, Message: message})
}

// RespondWithAPIError sends a structured error response
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.Int("status", apiErr.Status),
		)
	} else {
		logger.Log.Warn("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
		)
	}

	endpoint := c.FullPath()
	if endpoint == "" {
		endpoint = "unmatched"
	}
	metrics.Get().ErrorsTotal.WithLabelValues(string(apiErr.Code), endpoint).Inc()

	c.JSON(apiErr.Status, ErrorResponse{
		Success: false,
		Code:    string(apiErr.Code),
		Message: apiErr.Message,
		Field:   apiErr.Field,
	})
}

// RespondError maps any error to the envelope: typed APIErrors keep their
// status and message, everything else becomes an opaque 500
func RespondError(c *gin.Context, err error) {
	if apiErr := errors.As(err); apiErr != nil {
		RespondWithAPIError(c, apiErr)
		return
	}
	logger.Error("unexpected error", err)
	RespondWithAPIError(c, errors.Internal("internal server error"))
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.BadRequest(message))
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.Unauthorized(message))
}

// RespondForbidden sends a 403 Forbidden response
func RespondForbidden(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.Forbidden(message))
}

// RespondNotFound sends a 404 Not Found response for the named resource
func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.NotFound(resource))
}

// RespondConflict sends a 409 Conflict response
func RespondConflict(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.Conflict(message))
}

// RespondInternalError sends a 500 Internal Server Error response
func RespondInternalError(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.Internal(message))
}

// HandleDBError responds to a lookup error and reports whether it handled
// one: NotFound for missing records, 500 otherwise
func HandleDBError(c *gin.Context, err error, resource string) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		RespondNotFound(c, resource)
		return true
	}
	logger.Error("database error", err)
	RespondInternalError(c, "database error")
	return true
}
