package middleware

import (
	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/gin-gonic/gin"
)

// SSEConfig holds configuration for the server-sent-events middleware.
type SSEConfig struct {
	AllowedOrigins []string
}

// SSEMiddleware sets the headers required for a server-sent-events stream.
func SSEMiddleware(cfg SSEConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		origin := c.GetHeader("Origin")
		if len(cfg.AllowedOrigins) == 0 {
			c.Header("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range cfg.AllowedOrigins {
				if allowed == "*" || origin == allowed {
					c.Header("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		log.Debug("SSE headers set for request")
		c.Next()
	}
}
