package handlers

import (
	"github.com/gin-gonic/gin"

	"sa-birth-backend/internal/middleware"
	"sa-birth-backend/internal/services"
)

type RouterDeps struct {
	JWT         *services.JWTService
	Auth        *AuthHandler
	Calibration *CalibrationHandler
	User        *UserHandler
	WebSocket   *WebSocketHandler
	Limiter     middleware.RateLimiter
	Limits      middleware.RateLimits
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	if deps.Auth != nil {
		router.POST("/auth/challenge", deps.Auth.Challenge)
		router.POST("/auth/login", deps.Auth.Authenticate)
	}

	router.GET("/api/leaderboard", deps.Calibration.GetLeaderboard)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(deps.JWT))
	protected.Use(middleware.RateLimitMiddleware(deps.Limiter, deps.Limits))
	{
		protected.GET("/me", deps.User.GetCurrentUser)
		protected.GET("/wallet", deps.User.GetWallet)

		if deps.WebSocket != nil {
			protected.GET("/ws", deps.WebSocket.HandleWebSocket)
		}

		calibration := protected.Group("/calibration")
		{
			calibration.POST("/start", deps.Calibration.Start)
			calibration.POST("/character", deps.Calibration.SetCharacter)
			calibration.POST("/senses", deps.Calibration.SubmitSense)
			calibration.POST("/exit", deps.Calibration.AttemptExit)

			calibration.GET("/session", deps.Calibration.GetSession)
			calibration.GET("/senses/:sense_id", deps.Calibration.GetSenseResult)
			calibration.GET("/games/:session_id", deps.Calibration.GetGame)
		}
	}

	return router
}
