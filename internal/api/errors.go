package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error represents an API error. Fields carries per-field validation
// messages and Form echoes the submitted form back to the client.
type Error struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Form    interface{}       `json:"form,omitempty"`

	cause error
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("API error %d: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// ErrNotFound is returned for records that are missing or hidden from the viewer
func ErrNotFound() *Error {
	return NewError(http.StatusNotFound, "not found")
}

// ValidationError reports invalid form input
func ValidationError(fields map[string]string, form interface{}) *Error {
	return &Error{
		Code:    http.StatusBadRequest,
		Message: "validation failed",
		Fields:  fields,
		Form:    form,
	}
}

// InternalError hides cause from the client; it is only logged
func InternalError(cause error) *Error {
	return &Error{
		Code:    http.StatusInternalServerError,
		Message: "internal server error",
		cause:   cause,
	}
}

// sendError writes err as a JSON error response
func sendError(c *gin.Context, logger *zap.Logger, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = InternalError(err)
	}

	if apiErr.Code >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(apiErr.Code, apiErr)
}
