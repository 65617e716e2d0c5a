package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"festbook/internal/shared/config"
	"festbook/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, cfg config.RateLimitConfig) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, cfg), mr
}

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:                 true,
		WindowDuration:          time.Minute,
		DefaultRequests:         10,
		PublicRequests:          10,
		BookingRequests:         5,
		BookingCriticalRequests: 2,
		HealthRequests:          10,
		WhitelistedIPs:          []string{"10.0.0.1"},
	}
}

func TestIsAllowed_SlidingWindow(t *testing.T) {
	rl, _ := newLimiter(t, testConfig())
	ctx := context.Background()

	first, err := rl.IsAllowed(ctx, "1.2.3.4", RateLimitTypeBookingCritical)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	second, err := rl.IsAllowed(ctx, "1.2.3.4", RateLimitTypeBookingCritical)
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	third, err := rl.IsAllowed(ctx, "1.2.3.4", RateLimitTypeBookingCritical)
	require.NoError(t, err)
	assert.False(t, third.Allowed)

	// other clients and buckets are independent
	other, err := rl.IsAllowed(ctx, "5.6.7.8", RateLimitTypeBookingCritical)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
	booking, err := rl.IsAllowed(ctx, "1.2.3.4", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.True(t, booking.Allowed)
}

func TestIsAllowed_WhitelistAndDisabled(t *testing.T) {
	rl, mr := newLimiter(t, testConfig())
	for i := 0; i < 5; i++ {
		res, err := rl.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypeBookingCritical)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	assert.Empty(t, mr.Keys())

	cfg := testConfig()
	cfg.Enabled = false
	off, _ := newLimiter(t, cfg)
	res, err := off.IsAllowed(context.Background(), "1.1.1.1", RateLimitTypeHealth)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 10, res.Limit)
}

func TestGetRateLimitType(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   RateLimitType
	}{
		{http.MethodGet, "/health", RateLimitTypeHealth},
		{http.MethodPost, "/api/v1/bookings/sessions", RateLimitTypeBookingCritical},
		{http.MethodPost, "/api/v1/bookings/sessions/:id/initiate", RateLimitTypeBookingCritical},
		{http.MethodPost, "/api/v1/bookings/sessions/:id/payment", RateLimitTypeBookingCritical},
		{http.MethodPatch, "/api/v1/bookings/sessions/:id/members/:index", RateLimitTypeBooking},
		{http.MethodGet, "/api/v1/bookings/sessions/:id", RateLimitTypeBooking},
		{http.MethodGet, "/api/v1/programs/:id", RateLimitTypePublic},
		{http.MethodGet, "/", RateLimitTypeDefault},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, getRateLimitType(tt.method, tt.path))
		})
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newLimiter(t, testConfig())
	r := gin.New()
	r.Use(Middleware(rl, logger.Discard()))
	r.POST("/api/v1/bookings/sessions/:id/initiate", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/sessions/abc/initiate", nil)
		req.Header.Set("X-Forwarded-For", "9.9.9.9")
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestMiddleware_RedisDownFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, mr := newLimiter(t, testConfig())
	mr.Close()
	r := gin.New()
	r.Use(Middleware(rl, logger.Discard()))
	r.GET("/api/v1/programs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/programs/1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
