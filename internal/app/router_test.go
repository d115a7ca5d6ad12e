package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/storefront/internal/auth"
	"github.com/odyssey-erp/storefront/internal/observability"
	"github.com/odyssey-erp/storefront/internal/platform/httpx"
	"github.com/odyssey-erp/storefront/internal/products"
	_ "github.com/odyssey-erp/storefront/testing"
)

type rejectAll struct{}

func (rejectAll) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	return nil, httpx.Authentication("Invalid token. Please log in again.")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T, cfg *Config, checks ...ReadinessCheck) http.Handler {
	t.Helper()
	logger := testLogger()
	gate := auth.NewGate(rejectAll{}, logger)
	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		ProductHandler: products.NewHandler(logger, products.NewService(nil, nil, logger), gate),
		Metrics:        observability.NewMetrics(),
		Readiness:      checks,
	})
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func envelope(t *testing.T, rr *httptest.ResponseRecorder) httpx.Envelope {
	t.Helper()
	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func TestUnknownRouteEnvelope(t *testing.T) {
	router := newTestRouter(t, &Config{})
	for _, path := range []string{"/nope", "/api/nope"} {
		rr := serve(router, http.MethodGet, path)
		require.Equal(t, http.StatusNotFound, rr.Code, path)
		env := envelope(t, rr)
		assert.Equal(t, "fail", env.Status)
		assert.Equal(t, "Can't find "+path+" on this server!", env.Message)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rr := serve(newTestRouter(t, &Config{}), http.MethodPost, "/healthz")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "fail", envelope(t, rr).Status)
}

func TestHealthAndSecurityHeaders(t *testing.T) {
	rr := serve(newTestRouter(t, &Config{}), http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestReadiness(t *testing.T) {
	ok := ReadinessCheck{Name: "postgres", Check: func(ctx context.Context) error { return nil }}
	down := ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error { return errors.New("refused") }}

	rr := serve(newTestRouter(t, &Config{}, ok), http.MethodGet, "/readyz")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok"}}`, rr.Body.String())

	rr = serve(newTestRouter(t, &Config{}, ok, down), http.MethodGet, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"postgres":"ok","redis":"unavailable"}}`, rr.Body.String())
}

func TestProductRoutesAreGated(t *testing.T) {
	rr := serve(newTestRouter(t, &Config{}), http.MethodGet, "/api/product/my")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "You are not logged in! Please log in to get access.", envelope(t, rr).Message)
}

func TestAPIRateLimit(t *testing.T) {
	router := newTestRouter(t, &Config{RateLimitRequests: 2, RateLimitWindow: time.Minute})
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/product/my").Code)
	}
	rr := serve(router, http.MethodGet, "/api/product/my")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, msgRateLimited, envelope(t, rr).Message)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/healthz").Code)
}

func TestMetricsAndStatic(t *testing.T) {
	router := newTestRouter(t, &Config{})
	serve(router, http.MethodGet, "/healthz")

	rr := serve(router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `storefront_http_requests_total{code="200",method="GET",route="/healthz"}`)

	rr = serve(router, http.MethodGet, "/static/css/site.css")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
}
