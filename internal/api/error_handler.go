package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/service"
)

// APIError transport-level error
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// exposeDetails controls whether raw error text reaches clients.
// Disabled in production.
var exposeDetails = true

// SetExposeErrorDetails toggles raw error detail in responses
func SetExposeErrorDetails(expose bool) {
	exposeDetails = expose
}

// ErrorHandlerMiddleware converts accumulated gin errors into responses
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				Error(c, http.StatusInternalServerError, "internal server error", detailOf(err))
			}
		}
	}
}

// WrapError wraps an error as an APIError
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// HandleServiceError maps service-layer sentinel errors to HTTP responses
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		Error(c, http.StatusBadRequest, "invalid request", detailOf(err))
	case errors.Is(err, service.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", detailOf(err))
	case errors.Is(err, service.ErrForbidden):
		Error(c, http.StatusForbidden, "forbidden", detailOf(err))
	case errors.Is(err, service.ErrAlreadyCancelled):
		Error(c, http.StatusBadRequest, "kegiatan already cancelled", detailOf(err))
	case errors.Is(err, service.ErrIllegalTransition):
		Error(c, http.StatusBadRequest, "illegal status transition", detailOf(err))
	default:
		Error(c, http.StatusInternalServerError, "internal server error", detailOf(err))
	}
}

func detailOf(err error) string {
	if !exposeDetails || err == nil {
		return ""
	}
	return err.Error()
}
