package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gnana997/displayname/pkg/transformer"
)

// AppError is an error with the HTTP status it maps to.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// MapError maps engine errors to status codes. Input problems are 400,
// canceled requests 499 and everything else 500.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, transformer.ErrUnsupportedLanguage):
		return NewAppError(http.StatusBadRequest, "Unsupported file type", err)
	case errors.Is(err, transformer.ErrParse):
		return NewAppError(http.StatusBadRequest, "Source contains syntax errors", err)
	case errors.Is(err, context.Canceled):
		return NewAppError(499, "Request canceled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewAppError(http.StatusGatewayTimeout, "Request timed out", err)
	}
	return NewAppError(http.StatusInternalServerError, "Internal error", err)
}

func handleError(c *gin.Context, err error) {
	appErr := MapError(err)
	body := gin.H{"error": appErr.Message}
	if appErr.Err != nil && appErr.Code < http.StatusInternalServerError {
		body["detail"] = appErr.Err.Error()
	}
	c.AbortWithStatusJSON(appErr.Code, body)
}
