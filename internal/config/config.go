package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"sa-birth-backend/internal/models"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"ENV" envDefault:"development"`

	RedisURL  string `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	LoginChallengeTTL time.Duration `env:"LOGIN_CHALLENGE_TTL" envDefault:"5m"`

	// ContractID identifies this game to the hub when stakes are locked.
	ContractID     string        `env:"CONTRACT_ID" envDefault:"sa-birth"`
	HouseID        string        `env:"HOUSE_ID,required,notEmpty"`
	HouseBalance   int64         `env:"HOUSE_BALANCE" envDefault:"100000000000"`
	DefaultBalance int64         `env:"DEFAULT_BALANCE" envDefault:"10000000000"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"720h"` // 30 days

	RateLimitSenses int `env:"RATE_LIMIT_SENSES" envDefault:"30"` // per minute
	RateLimitStart  int `env:"RATE_LIMIT_START" envDefault:"10"`  // per minute
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.LoginChallengeTTL <= 0 {
		return nil, fmt.Errorf("LOGIN_CHALLENGE_TTL must be positive, got %s", cfg.LoginChallengeTTL)
	}
	if cfg.HouseBalance < 0 || cfg.DefaultBalance < 0 {
		return nil, fmt.Errorf("wallet balances must not be negative")
	}
	if cfg.HouseBalance > models.MaxPoints || cfg.DefaultBalance > models.MaxPoints {
		return nil, fmt.Errorf("wallet balances must not exceed %d", models.MaxPoints)
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
