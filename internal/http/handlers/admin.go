package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/verify
func (h Handlers) AdminVerify(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	u, err := h.Admin.Verify(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true, "user": u})
}

// GET /api/admin/users
func (h Handlers) AdminUsers(c *gin.Context) {
	users, err := h.Admin.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GET /api/admin/trips
func (h Handlers) AdminTrips(c *gin.Context) {
	trips, err := h.Admin.ListTrips(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}
