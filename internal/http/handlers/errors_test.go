package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"carpool/internal/domain"
	"carpool/internal/logger"

	"github.com/gin-gonic/gin"
)

func TestRespondDomainErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ValidationError{Msg: "bad"}, http.StatusBadRequest, "validation_error"},
		{domain.DuplicateError{Resource: "User"}, http.StatusBadRequest, "duplicate"},
		{domain.InvalidCredentialsError{}, http.StatusBadRequest, "invalid_credentials"},
		{domain.NotAvailableError{}, http.StatusBadRequest, "not_available"},
		{domain.UnauthorizedError{}, http.StatusUnauthorized, "unauthorized"},
		{domain.InvalidTokenError{}, http.StatusForbidden, "invalid_token"},
		{domain.ForbiddenError{}, http.StatusForbidden, "forbidden"},
		{domain.NotFoundError{Resource: "Request"}, http.StatusNotFound, "not_found"},
		{domain.ConflictError{Msg: "done"}, http.StatusConflict, "conflict"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondDomainError(c, logger.Nop(), tc.err)

		if rec.Code != tc.status {
			t.Fatalf("%T: status %d, want %d", tc.err, rec.Code, tc.status)
		}
		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Code != tc.code {
			t.Fatalf("%T: code %q, want %q", tc.err, body.Code, tc.code)
		}
	}
}

func TestRespondDomainErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondDomainError(c, logger.Nop(), errors.New("dial tcp 10.0.0.5:3306: connection refused"))

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Internal Server Error" {
		t.Fatalf("leaked message %q", body.Message)
	}
}

func TestRespondDomainErrorValidationDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondDomainError(c, logger.Nop(), domain.ValidationError{
		Msg:     "All fields are required",
		Details: map[string]bool{"email": true, "gender": false},
	})

	var body struct {
		Message string          `json:"message"`
		Details map[string]bool `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "All fields are required" || !body.Details["email"] || body.Details["gender"] {
		t.Fatalf("unexpected body %+v", body)
	}
}
