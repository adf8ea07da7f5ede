package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"carpool/internal/domain"
	"carpool/internal/http/middleware"
	"carpool/internal/logger"
	"carpool/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers binds HTTP routes to the services. Every dependency is injected.
type Handlers struct {
	Auth   services.AuthService
	Shares services.ShareService
	Admin  services.AdminService
	Docs   services.DocsService
	DB     Pinger
	Log    *zap.Logger
}

func (h Handlers) log() *zap.Logger {
	if h.Log != nil {
		return h.Log
	}
	return logger.Nop()
}

func (h Handlers) fail(c *gin.Context, err error) {
	RespondDomainError(c, h.log(), err)
}

// identity returns the caller's identity. Routes using it sit behind
// middleware.Authenticate, so a miss is treated as unauthenticated.
func (h Handlers) identity(c *gin.Context) (domain.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.fail(c, domain.UnauthorizedError{})
	}
	return id, ok
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "Request body is required", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "Invalid request body", nil)
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError{Field: name, Msg: name + " must be a positive integer", Err: err}
	}
	return id, nil
}

const pingTimeout = 2 * time.Second
