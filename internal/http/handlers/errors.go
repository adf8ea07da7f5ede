package handlers

import (
	"errors"
	"net/http"

	"carpool/internal/domain"
	"carpool/internal/http/middleware"
	"carpool/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Message:   message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses. Anything
// unrecognised is logged and reported as a bare 500.
func RespondDomainError(c *gin.Context, log *zap.Logger, err error) {
	var verr domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, "validation_error", verr.Msg, verr.Details)
	case domain.IsDuplicate(err):
		respondError(c, http.StatusBadRequest, "duplicate", err.Error(), nil)
	case domain.IsInvalidCredentials(err):
		respondError(c, http.StatusBadRequest, "invalid_credentials", err.Error(), nil)
	case domain.IsNotAvailable(err):
		respondError(c, http.StatusBadRequest, "not_available", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case domain.IsInvalidToken(err):
		respondError(c, http.StatusForbidden, "invalid_token", err.Error(), nil)
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		_ = c.Error(err)
		log.Error("request failed",
			logger.String("request_id", middleware.GetRequestID(c)),
			logger.String("path", c.Request.URL.Path),
			logger.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "internal_error", "Internal Server Error", nil)
	}
}
