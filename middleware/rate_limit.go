package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/EcoRoute/eco-route-backend/services"
	"github.com/gin-gonic/gin"
)

// RateLimiter limits requests per caller within a window. The identifier is
// the authenticated user when available, the client IP otherwise. A nil
// limiter (no Redis configured) disables limiting entirely.
func RateLimiter(limiter services.RateLimiterInterface, requestsPerWindow int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		identifier := GetUserID(c)
		if identifier == "" {
			identifier = c.ClientIP()
		}

		key := fmt.Sprintf("plan:%s", identifier)
		allowed, retryAfter, err := limiter.CheckLimit(c.Request.Context(), key, requestsPerWindow, window)
		if err != nil {
			// Fail open: a broken limiter should not take the planner down.
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(retryAfter.Seconds()),
			})
			return
		}

		c.Next()
	}
}
