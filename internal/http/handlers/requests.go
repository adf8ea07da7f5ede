package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type requestRideRequest struct {
	ShareID any     `json:"shareId"`
	Message *string `json:"message"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// POST /request-ride
func (h Handlers) RequestRide(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req requestRideRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	created, err := h.Shares.RequestRide(c.Request.Context(), id, req.ShareID, req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Request raised successfully", "request": created})
}

// PATCH /requests/:requestId/status
func (h Handlers) UpdateRequestStatus(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	requestID, err := paramID(c, "requestId")
	if err != nil {
		h.fail(c, err)
		return
	}
	updated, err := h.Shares.UpdateRequestStatus(c.Request.Context(), id, requestID, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GET /requests/:requestId/ticket
func (h Handlers) RideTicket(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	requestID, err := paramID(c, "requestId")
	if err != nil {
		h.fail(c, err)
		return
	}
	pdf, filename, err := h.Docs.RideTicket(c.Request.Context(), id, requestID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
