package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"workbridge/api/internal/config"
)

func newLimiterRouter(t *testing.T, cfg config.RateLimitConfig) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(cfg, client, zerolog.Nop()))
	router.GET("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router, mr
}

func limitedRequest(router *gin.Engine, path string, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":52341"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitRejectsAboveLimit(t *testing.T) {
	router, _ := newLimiterRouter(t, config.RateLimitConfig{TTL: time.Minute, Limit: 3})

	for i := 0; i < 3; i++ {
		rec := limitedRequest(router, "/api/v1/auth/login", "10.0.0.1")
		require.Equal(t, http.StatusOK, rec.Code, "request %d within limit", i+1)
	}

	rec := limitedRequest(router, "/api/v1/auth/login", "10.0.0.1")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "rate_limited")
}

func TestRateLimitKeysByClient(t *testing.T) {
	router, _ := newLimiterRouter(t, config.RateLimitConfig{TTL: time.Minute, Limit: 1})

	require.Equal(t, http.StatusOK, limitedRequest(router, "/api/v1/auth/login", "10.0.0.1").Code)
	require.Equal(t, http.StatusForbidden, limitedRequest(router, "/api/v1/auth/login", "10.0.0.1").Code)

	// A different client still has a fresh window.
	require.Equal(t, http.StatusOK, limitedRequest(router, "/api/v1/auth/login", "10.0.0.2").Code)
}

func TestRateLimitWindowResets(t *testing.T) {
	router, mr := newLimiterRouter(t, config.RateLimitConfig{TTL: time.Minute, Limit: 1})

	require.Equal(t, http.StatusOK, limitedRequest(router, "/api/v1/auth/login", "10.0.0.1").Code)
	require.Equal(t, http.StatusForbidden, limitedRequest(router, "/api/v1/auth/login", "10.0.0.1").Code)

	mr.FastForward(time.Minute + time.Second)

	require.Equal(t, http.StatusOK, limitedRequest(router, "/api/v1/auth/login", "10.0.0.1").Code)
}

func TestRateLimitExemptPaths(t *testing.T) {
	router, _ := newLimiterRouter(t, config.RateLimitConfig{
		TTL:         time.Minute,
		Limit:       1,
		ExemptPaths: []string{"/api/healthz"},
	})

	for i := 0; i < 10; i++ {
		rec := limitedRequest(router, "/api/healthz", "10.0.0.1")
		require.Equal(t, http.StatusOK, rec.Code, "health check %d must never be limited", i+1)
	}
}
