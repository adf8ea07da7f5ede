package handlers

import (
	"context"
	"net/http"

	"carpool/internal/logger"

	"github.com/gin-gonic/gin"
)

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "carpool backend running"})
}

func (h Handlers) DBCheck(c *gin.Context) {
	if h.DB == nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "Database not connected", nil)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		h.log().Warn("db check failed", logger.Error(err))
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "Database ping failed", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Database connection OK"})
}
