package handlers

import (
	"net/http"

	"carpool/internal/domain"
	"carpool/internal/services"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Age           any    `json:"age"`
	Password      string `json:"password"`
	DriverLicense string `json:"driverLicense"`
	Gender        string `json:"gender"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /register
func (h Handlers) Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.Auth.Register(c.Request.Context(), services.RegisterInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Password:      req.Password,
		DriverLicense: req.DriverLicense,
		Gender:        req.Gender,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": u})
}

// POST /login
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	token, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token})
}

// GET /protected/share
func (h Handlers) Protected(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "This is a protected route", "user": id})
}

// POST /api/admin/login
func (h Handlers) AdminLogin(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	token, err := h.Auth.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if domain.IsInvalidCredentials(err) {
			respondError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials", nil)
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
