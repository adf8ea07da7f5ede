package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carpool/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstancesDoNotCollide(t *testing.T) {
	a := New("carpool")
	b := New("carpool")

	a.ShareCreated()
	a.ShareCreated()
	b.ShareCreated()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.SharesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.SharesCreated))
}

func TestDomainCounters(t *testing.T) {
	m := New("carpool")
	m.RideRequested()
	m.RequestTransitioned(domain.StatusApproved)
	m.RequestTransitioned(domain.StatusApproved)
	m.RequestTransitioned(domain.StatusDeclined)
	m.SpotsExhausted()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RidesRequested))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestTransitions.WithLabelValues("APPROVED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestTransitions.WithLabelValues("DECLINED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ApprovalsRejectFull))
}

func TestHandlerExposesHTTPMetrics(t *testing.T) {
	m := New("carpool")
	m.ObserveHTTP("GET", "/search-rides", "200", 12*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `carpool_http_requests_total{method="GET",path="/search-rides",status="200"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
