package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"carpool/internal/auth"
	"carpool/internal/domain"
	"carpool/internal/logger"
	"carpool/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(tokens TokenParser, guard ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(logger.Nop()))
	chain := append([]gin.HandlerFunc{Authenticate(tokens)}, guard...)
	chain = append(chain, func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, id)
	})
	r.GET("/me", chain...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthenticateMissingHeader(t *testing.T) {
	r := newEngine(auth.NewTokenManager("s"))

	for _, h := range []string{"", "Bearer", "Bearer   ", "Basic abc", "token-without-scheme"} {
		rec := do(r, h)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", h)
		body := decode(t, rec)
		assert.Equal(t, "Access Denied", body["message"])
		assert.NotEmpty(t, body["request_id"])
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	r := newEngine(auth.NewTokenManager("s"))

	foreign, err := auth.NewTokenManager("other").IssueUserToken(1, "a@b.co")
	require.NoError(t, err)

	for _, tok := range []string{"garbage", foreign} {
		rec := do(r, "Bearer "+tok)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Invalid Token", decode(t, rec)["message"])
	}
}

func TestAuthenticateStoresIdentity(t *testing.T) {
	tm := auth.NewTokenManager("s")
	r := newEngine(tm)
	tok, err := tm.IssueUserToken(42, "a@b.co")
	require.NoError(t, err)

	rec := do(r, "bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var id domain.Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &id))
	assert.Equal(t, domain.Identity{UserID: 42, Email: "a@b.co"}, id)
}

func TestRequireRole(t *testing.T) {
	tm := auth.NewTokenManager("s")
	r := newEngine(tm, RequireRole(domain.RoleAdmin))

	userTok, err := tm.IssueUserToken(1, "a@b.co")
	require.NoError(t, err)
	rec := do(r, "Bearer "+userTok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not authorized as admin", decode(t, rec)["message"])

	adminTok, err := tm.IssueAdminToken(1, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(r, "Bearer "+adminTok).Code)
}

func TestRequireRoleWithoutAuthenticate(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRole(domain.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	generated := rec.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "upstream-1")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-1", rec.Body.String())
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	m := metrics.New("carpool")
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/requests/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/requests/1", "/requests/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/requests/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestRecoveryReturnsStandardBody(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(logger.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decode(t, rec)["message"])
}
