package api

import (
	stdhttp "net/http"

	"carpool/internal/domain"
	h "carpool/internal/http/handlers"
	"carpool/internal/http/middleware"
	"carpool/internal/logger"
	"carpool/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps is everything the router wires into middleware and handlers.
type Deps struct {
	Handlers       h.Handlers
	Tokens         middleware.TokenParser
	Metrics        *metrics.Metrics
	Log            *zap.Logger
	AllowedOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), middleware.Recovery(log), middleware.CORS(d.AllowedOrigins))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Warn("failed to set trusted proxies", logger.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"message":    "Route not found",
			"code":       "not_found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	hs := d.Handlers

	// Public
	r.POST("/register", hs.Register)
	r.POST("/login", hs.Login)

	// Rider and driver
	authed := r.Group("", middleware.Authenticate(d.Tokens))
	{
		authed.GET("/protected/share", hs.Protected)
		authed.POST("/create-trip", hs.CreateTrip)
		authed.GET("/search-rides", hs.SearchRides)
		authed.POST("/request-ride", hs.RequestRide)
		authed.GET("/trips/driving", hs.DrivingTrips)
		authed.GET("/trips/riding", hs.RidingTrips)
		authed.PATCH("/requests/:requestId/status", hs.UpdateRequestStatus)
		authed.GET("/requests/:requestId/ticket", hs.RideTicket)
	}

	api := r.Group("/api")
	{
		api.GET("/health", hs.Health)
		api.GET("/db-check", hs.DBCheck)

		admin := api.Group("/admin")
		admin.POST("/login", hs.AdminLogin)

		console := admin.Group("", middleware.Authenticate(d.Tokens), middleware.RequireRole(domain.RoleAdmin))
		console.GET("/verify", hs.AdminVerify)
		console.GET("/users", hs.AdminUsers)
		console.GET("/trips", hs.AdminTrips)
	}

	return r
}
