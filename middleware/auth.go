package middleware

import (
	"fmt"
	"strings"

	apperrors "github.com/EcoRoute/eco-route-backend/errors"
	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CallerIdentity extracts the caller identity from a Bearer token when a
// JWT secret is configured. Authentication itself is a collaborator
// concern; this middleware only consumes the identity. With no secret
// configured every caller is anonymous and requests pass through.
func CallerIdentity(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSecret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			_ = c.Error(apperrors.AuthenticationFailed("Missing bearer token"))
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			logger.GetLogger().Warnw("Token validation failed", "error", err)
			_ = c.Error(apperrors.AuthenticationFailed("Invalid token"))
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, _ := claims["sub"].(string); sub != "" {
				c.Set(UserIDKey, sub)
			}
		}

		c.Next()
	}
}

// GetUserID returns the caller identity from the context, or "" when
// anonymous.
func GetUserID(c *gin.Context) string {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
