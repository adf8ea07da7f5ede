package handlers

import (
	"net/http"

	"carpool/internal/services"

	"github.com/gin-gonic/gin"
)

type createTripRequest struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	DepartureDate string  `json:"departureDate"`
	DepartureTime string  `json:"departureTime"`
	Spots         any     `json:"spots"`
	Price         any     `json:"price"`
	Message       *string `json:"message"`
}

// POST /create-trip
func (h Handlers) CreateTrip(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req createTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	trip, err := h.Shares.CreateShare(c.Request.Context(), id, services.ShareInput{
		From:          req.From,
		To:            req.To,
		DepartureDate: req.DepartureDate,
		DepartureTime: req.DepartureTime,
		Spots:         req.Spots,
		Price:         req.Price,
		Message:       req.Message,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Trip created successfully", "trip": trip})
}

// GET /search-rides?from=&to=&date=
func (h Handlers) SearchRides(c *gin.Context) {
	if _, ok := h.identity(c); !ok {
		return
	}
	rides, err := h.Shares.SearchShares(c.Request.Context(), c.Query("from"), c.Query("to"), c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rides)
}

// GET /trips/driving
func (h Handlers) DrivingTrips(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	trips, err := h.Shares.ListDrivingTrips(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

// GET /trips/riding
func (h Handlers) RidingTrips(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	trips, err := h.Shares.ListRidingTrips(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}
