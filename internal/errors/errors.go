package errors

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies a domain error so the handler layer can pick the
// response status without inspecting message strings.
type Kind string

const (
	KindValidation Kind = "VALIDATION_ERROR"
	KindPermission Kind = "PERMISSION_DENIED"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindInternal   Kind = "INTERNAL_ERROR"
)

// AppError is a domain error with a designed, caller-visible message.
type AppError struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return e.Message
}

// Validation creates a 400-mapped error.
func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// Permission creates a 403-mapped error.
func Permission(message string) *AppError {
	return &AppError{Kind: KindPermission, Message: message}
}

// NotFound creates a 404-mapped error.
func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// Conflict creates a 409-mapped error.
func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// Internal creates a 500-mapped error. The message is what callers see;
// the underlying detail belongs in logs only.
func Internal(message string) *AppError {
	return &AppError{Kind: KindInternal, Message: message}
}

// Predefined errors
var (
	ErrTaskNotFound = NotFound("Task not found")
	ErrUserNotFound = NotFound("User not found")
)

// StatusCode maps an error kind to its HTTP status.
func StatusCode(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Respond turns any error into the standard response envelope. Unexpected
// errors are logged and surfaced as a generic internal error with no detail.
func Respond(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  false,
			"message": "Internal server error",
			"data":    nil,
		})
		return
	}

	c.JSON(StatusCode(appErr), gin.H{
		"status":  false,
		"message": appErr.Message,
		"data":    nil,
	})
}

// Unauthorized sends a 401 response.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	c.JSON(http.StatusUnauthorized, gin.H{
		"status":  false,
		"message": message,
		"data":    nil,
	})
}

// BadRequest sends a 400 response.
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request body"
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  false,
		"message": message,
		"data":    nil,
	})
}
