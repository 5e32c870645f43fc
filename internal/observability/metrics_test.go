package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordError("conflict")
	m.RecordError("conflict")
	m.RecordTokenRejection("expired")
	m.RecordUnauthenticated()
	m.RecordRequest("/api/v1/menu", http.MethodGet, http.StatusOK, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.errors.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenRejections.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unauthenticated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/v1/menu", http.MethodGet, "200")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordError("unexpected")
		m.RecordTokenRejection("malformed")
		m.RecordUnauthenticated()
		m.RecordRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)
	})
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(TraceMiddleware(""))
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/hello", func(c *fiber.Ctx) error { return c.SendString("hi") })
	app.Get("/metrics", m.Handler())

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/hello", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `foodorder_http_requests_total{method="GET",route="/hello",status="200"} 1`)
}
