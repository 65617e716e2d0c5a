package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"festbook/internal/shared/utils/response"
	"festbook/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware limits by client IP and route class. Redis outages let traffic through.
func Middleware(rateLimiter *RateLimiter, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetDefault()
	}
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getRateLimitType(c.Request.Method, c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			log.WithError(err).WarnContext(c.Request.Context(), "rate limit check failed", "ip", clientIP)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			log.LogRateLimitExceeded(c.Request.Context(), clientIP, c.FullPath())
			response.AbortWithError(c, http.StatusTooManyRequests, "Rate limit exceeded", map[string]interface{}{
				"limit":      result.Limit,
				"reset_time": result.ResetTime,
			})
			return
		}

		c.Next()
	}
}

func getRateLimitType(method, path string) RateLimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"):
		return RateLimitTypeHealth

	// Calls that reach the payment backend
	case strings.HasSuffix(path, "/initiate"),
		strings.Contains(path, "/payment"),
		method == http.MethodPost && strings.HasSuffix(path, "/bookings/sessions"):
		return RateLimitTypeBookingCritical

	case strings.Contains(path, "/bookings"):
		return RateLimitTypeBooking

	case strings.Contains(path, "/programs"),
		strings.HasPrefix(path, "/swagger"):
		return RateLimitTypePublic

	default:
		return RateLimitTypeDefault
	}
}

// extracts real client IP
func getClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := c.GetHeader("X-Real-IP"); net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}
