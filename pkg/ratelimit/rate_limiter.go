package ratelimit

import (
	"context"
	"fmt"
	"time"

	"festbook/internal/shared/config"
	"festbook/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimitType string

const (
	RateLimitTypeDefault         RateLimitType = "default"
	RateLimitTypePublic          RateLimitType = "public"
	RateLimitTypeBooking         RateLimitType = "booking"
	RateLimitTypeBookingCritical RateLimitType = "booking_critical"
	RateLimitTypeHealth          RateLimitType = "health"
)

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// Sliding window over a sorted set scored in milliseconds.
// Returns {count_after, remaining}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current_count = redis.call('ZCARD', key)
	if current_count >= limit then
		redis.call('PEXPIRE', key, window_ms)
		return {current_count + 1, 0}
	end

	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window_ms)
	return {current_count + 1, limit - current_count - 1}
`)

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client    redis.UniversalClient
	config    config.RateLimitConfig
	whitelist map[string]struct{}
}

func NewRateLimiter(client redis.UniversalClient, cfg config.RateLimitConfig) *RateLimiter {
	wl := make(map[string]struct{}, len(cfg.WhitelistedIPs))
	for _, ip := range cfg.WhitelistedIPs {
		wl[ip] = struct{}{}
	}
	return &RateLimiter{client: client, config: cfg, whitelist: wl}
}

// IsAllowed records one request for identifier and reports whether it fits the window
func (r *RateLimiter) IsAllowed(ctx context.Context, identifier string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)
	now := time.Now()

	if !r.config.Enabled || r.isWhitelisted(identifier) {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: now.Add(r.config.WindowDuration).Unix(),
		}, nil
	}

	key := constants.BuildRateLimitKey(string(limitType), identifier)
	windowStart := now.Add(-r.config.WindowDuration)

	values, err := slidingWindow.Run(ctx, r.client, []string{key},
		windowStart.UnixMilli(),
		now.UnixMilli(),
		limit,
		r.config.WindowDuration.Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis eval failed: %w", err)
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	return &Result{
		Allowed:   int(values[0]) <= limit,
		Limit:     limit,
		Remaining: int(values[1]),
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypePublic:
		return r.config.PublicRequests
	case RateLimitTypeBooking:
		return r.config.BookingRequests
	case RateLimitTypeBookingCritical:
		return r.config.BookingCriticalRequests
	case RateLimitTypeHealth:
		return r.config.HealthRequests
	default:
		return r.config.DefaultRequests
	}
}

func (r *RateLimiter) isWhitelisted(ip string) bool {
	_, ok := r.whitelist[ip]
	return ok
}
