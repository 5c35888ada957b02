package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins string
	LogLevel    slog.Level

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartTTL       time.Duration

	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
	ParallelGroups        bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:          getenv("APP_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CORSOrigins:   getenv("CORS_ORIGINS", "*"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	var err error
	if cfg.LogLevel, err = parseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = strconv.Atoi(getenv("REDIS_DB", "0")); err != nil {
		return Config{}, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.CartTTL, err = time.ParseDuration(getenv("CART_TTL", "72h")); err != nil {
		return Config{}, fmt.Errorf("CART_TTL: %w", err)
	}
	if cfg.FreeDeliveryThreshold, err = parseAmount("FREE_DELIVERY_THRESHOLD", "500"); err != nil {
		return Config{}, err
	}
	if cfg.DeliveryFee, err = parseAmount("DELIVERY_FEE", "50"); err != nil {
		return Config{}, err
	}
	if cfg.ParallelGroups, err = strconv.ParseBool(getenv("CHECKOUT_PARALLEL_GROUPS", "false")); err != nil {
		return Config{}, fmt.Errorf("CHECKOUT_PARALLEL_GROUPS: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is not set")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseAmount(key, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getenv(key, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
