package errors

import (
	stderrors "errors"
	"fmt"
)

// APIError is a typed error carried from the point of detection up to the
// HTTP layer, where Code selects the response status. It implements error so
// services can return it through ordinary error values.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Status  int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// As extracts an *APIError from err, or nil if err is not one
func As(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return &APIError{Code: ErrBadRequest, Message: message, Status: ErrBadRequest.StatusCode()}
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *APIError {
	return &APIError{Code: ErrUnauthorized, Message: message, Status: ErrUnauthorized.StatusCode()}
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	return &APIError{Code: ErrForbidden, Message: message, Status: ErrForbidden.StatusCode()}
}

// NotFound creates a NOT_FOUND error for the named resource
func NotFound(resource string) *APIError {
	return &APIError{Code: ErrNotFound, Message: fmt.Sprintf("%s not found", resource), Status: ErrNotFound.StatusCode()}
}

// Conflict creates a CONFLICT error
func Conflict(message string) *APIError {
	return &APIError{Code: ErrConflict, Message: message, Status: ErrConflict.StatusCode()}
}

// ValidationError creates a VALIDATION_ERROR for a specific input field
func ValidationError(field, message string) *APIError {
	return &APIError{Code: ErrValidation, Message: message, Field: field, Status: ErrValidation.StatusCode()}
}

// Internal creates an INTERNAL_ERROR
func Internal(message string) *APIError {
	return &APIError{Code: ErrInternalError, Message: message, Status: ErrInternalError.StatusCode()}
}
