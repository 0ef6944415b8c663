package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sa-birth-backend/internal/services"
)

func AuthMiddleware(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
				c.Abort()
				return
			}
			tokenString = parts[1]
		} else {
			// Browsers cannot set headers on websocket upgrades.
			tokenString = c.Query("token")
			if tokenString == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
				c.Abort()
				return
			}
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("player_id", claims.PlayerID)
		c.Set("session_id", claims.SessionID)
		c.Request = c.Request.WithContext(services.WithPlayer(c.Request.Context(), claims.PlayerID))

		c.Next()
	}
}

type RateLimiter interface {
	CheckRateLimit(ctx context.Context, player string, action string, limit int, window time.Duration) (bool, error)
}

type RateLimits struct {
	Start  int
	Senses int
}

func RateLimitMiddleware(limiter RateLimiter, limits RateLimits) gin.HandlerFunc {
	return func(c *gin.Context) {
		player := c.GetString("player_id")
		if player == "" || limiter == nil {
			c.Next()
			return
		}

		path := c.Request.URL.Path

		var action string
		var limit int
		window := time.Minute

		switch {
		case c.Request.Method == http.MethodPost && strings.HasSuffix(path, "/calibration/start"):
			action, limit = "start", limits.Start
		case c.Request.Method == http.MethodPost && strings.HasSuffix(path, "/calibration/senses"):
			action, limit = "senses", limits.Senses
		default:
			c.Next()
			return
		}

		if limit <= 0 {
			c.Next()
			return
		}

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), player, action, limit, window)
		if err != nil || !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
