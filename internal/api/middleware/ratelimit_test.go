package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khusa71/agritech-chat-assistant/internal/api/middleware"
)

func TestRateLimitByIP_UnderLimit(t *testing.T) {
	limiter := middleware.RateLimitByIP(middleware.ExpensiveRateLimit)
	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < middleware.ExpensiveRateLimit.RequestLimit; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/snapshots:fetch", http.NoBody)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}
}

func TestRateLimitByIP_OverLimit(t *testing.T) {
	limiter := middleware.RateLimitByIP(middleware.ExpensiveRateLimit)
	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var lastRec *httptest.ResponseRecorder
	for i := 0; i < middleware.ExpensiveRateLimit.RequestLimit+1; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/snapshots:fetch", http.NoBody)
		req.RemoteAddr = "10.0.0.2:1234"
		lastRec = httptest.NewRecorder()
		handler.ServeHTTP(lastRec, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, lastRec.Code)
	assert.Equal(t, "60", lastRec.Header().Get("Retry-After"))
	assert.Equal(t, "application/problem+json", lastRec.Header().Get("Content-Type"))
	assert.Contains(t, lastRec.Body.String(), "Rate limit exceeded")
}

func TestRateLimitByIP_IsolatesClients(t *testing.T) {
	limiter := middleware.RateLimitByIP(middleware.RateLimitConfig{RequestLimit: 1, WindowLength: middleware.StandardRateLimit.WindowLength})
	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Exhaust the first client's budget.
	req := httptest.NewRequest(http.MethodGet, "/v1/crops", http.NoBody)
	req.RemoteAddr = "10.0.0.3:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/crops", http.NoBody)
	req.RemoteAddr = "10.0.0.3:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client is unaffected.
	req = httptest.NewRequest(http.MethodGet, "/v1/crops", http.NoBody)
	req.RemoteAddr = "10.0.0.4:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
