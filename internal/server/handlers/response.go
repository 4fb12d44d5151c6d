package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/server/middleware"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, domain.ApiResponse{
		Message:   message,
		Success:   status < http.StatusBadRequest,
		Status:    status,
		RequestID: c.GetString(middleware.RequestIDKey),
		Data:      data,
	})
}

// respondError maps a classified error onto an HTTP status. External and
// unclassified errors hide their cause.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)

	message := domain.UserMessage(err)
	if message == "" {
		message = "upstream failure"
	}

	apiErr := &domain.ApiError{Kind: kind}
	var e *domain.Error
	if errors.As(err, &e) {
		apiErr.Conflict = e.Conflict
	}

	c.JSON(status, domain.ApiResponse{
		Message:   message,
		Success:   false,
		Status:    status,
		RequestID: c.GetString(middleware.RequestIDKey),
		Error:     apiErr,
	})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindRole:
		return http.StatusForbidden
	case domain.KindState, domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
