package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries everything the service needs from the environment. It
// is built once in main and injected; nothing reads env vars ad hoc.
type Config struct {
	Port            string `env:"PORT" envDefault:"4000"`
	Env             string `env:"ENV" envDefault:"development"`
	DatabaseURL     string `env:"DATABASE_URL"`
	JWTSecret       string `env:"JWT_SECRET"`
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	ClipDropAPIKey  string `env:"CLIPDROP_API_KEY"`
	FrontendURL     string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on system env variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return &cfg, nil
}
