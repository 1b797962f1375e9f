package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkasso/backend/internal/infrastructure/cache"
	"github.com/inkasso/backend/internal/interfaces/http/dto"
)

// RateLimitConfig holds rate limiting configuration for one route group
type RateLimitConfig struct {
	// Store counts requests per key; Redis-backed in multi-instance setups
	Store cache.CounterStore
	// Limit is the maximum number of requests per window
	Limit int
	// Window is the counting window
	Window time.Duration
	// KeyPrefix separates counters of different route groups
	KeyPrefix string
}

// RateLimit limits requests per client IP within a fixed window. Counter
// store failures let the request through, availability wins over strictness.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cfg.KeyPrefix + c.ClientIP()

		count, err := cfg.Store.Increment(c.Request.Context(), key, cfg.Window)
		if err != nil {
			c.Next()
			return
		}

		remaining := int64(cfg.Limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if count > int64(cfg.Limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponseWithRequestID(
					dto.ErrCodeRateLimitExceeded,
					"Too many requests. Please try again later.",
					GetRequestID(c),
				))
			return
		}

		c.Next()
	}
}
