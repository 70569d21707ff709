package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/placium/places-api/internal/dto"
	"github.com/placium/places-api/internal/service"
)

// RateLimitMiddleware throttles requests per key. A limiter backend failure
// lets the request through; credential checks still run, just unthrottled.
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		allowed, err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		remaining, _ := rateLimiter.Remaining(c.Request.Context(), key, limit, window)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "TOO_MANY_REQUESTS",
				Message: "Rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

// IPBasedKey keys the limiter by client IP. Credential endpoints are keyed
// this way so one address cannot spray passwords across many accounts.
func IPBasedKey(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.ClientIP()
}
