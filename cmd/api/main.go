package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"sa-birth-backend/internal/config"
	"sa-birth-backend/internal/handlers"
	"sa-birth-backend/internal/middleware"
	"sa-birth-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisService.Close()

	hub := services.NewRedisHub(redisService.Client(), cfg.DefaultBalance)
	created, err := hub.FundWallet(context.Background(), cfg.HouseID, cfg.HouseBalance)
	if err != nil {
		log.Fatalf("Failed to fund house wallet: %v", err)
	}
	if created {
		log.Printf("House wallet %s funded with %d", cfg.HouseID, cfg.HouseBalance)
	}

	jwtService := services.NewJWTService(cfg)

	wsHandler := handlers.NewWebSocketHandler()
	defer wsHandler.Close()

	store := services.NewSessionStore(redisService, cfg.SessionTTL)
	escrow := services.NewEscrowCoordinator(hub, cfg.ContractID)
	engine := services.NewCalibrationEngine(store, escrow, services.ContextAuthorizer{}, wsHandler)

	router := handlers.NewRouter(handlers.RouterDeps{
		JWT:         jwtService,
		Auth:        handlers.NewAuthHandler(services.NewLoginService(redisService, jwtService, cfg.LoginChallengeTTL)),
		Calibration: handlers.NewCalibrationHandler(engine, cfg.HouseID),
		User:        handlers.NewUserHandler(engine, hub),
		WebSocket:   wsHandler,
		Limiter:     redisService,
		Limits: middleware.RateLimits{
			Start:  cfg.RateLimitStart,
			Senses: cfg.RateLimitSenses,
		},
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
