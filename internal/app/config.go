package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go-attendance/internal/shared/clock"
)

type Config struct {
	Port             string
	DBHost           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBPort           string
	DBSSLMode        string
	RedisAddr        string
	KafkaBroker      string
	JWTSecret        string
	TZOffset         string
	CheckInRate      float64
	OutboxPoll       time.Duration
	ConnectRetries   int
	ShutdownDeadline time.Duration
}

// LoadConfig reads the process environment. Call godotenv.Load first to
// pick up a .env file.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:             getenv("PORT", "3000"),
		DBHost:           os.Getenv("DB_HOST"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		DBPort:           getenv("DB_PORT", "5432"),
		DBSSLMode:        getenv("DB_SSLMODE", "disable"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		KafkaBroker:      os.Getenv("KAFKA_BROKER"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TZOffset:         getenv("REPORTING_TZ_OFFSET", clock.DefaultOffset),
		CheckInRate:      1,
		OutboxPoll:       3 * time.Second,
		ConnectRetries:   5,
		ShutdownDeadline: 10 * time.Second,
	}

	if v := os.Getenv("CHECKIN_RATE_PER_SEC"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return Config{}, fmt.Errorf("invalid CHECKIN_RATE_PER_SEC %q", v)
		}
		cfg.CheckInRate = f
	}
	if _, err := clock.ParseOffset(cfg.TZOffset); err != nil {
		return Config{}, fmt.Errorf("invalid REPORTING_TZ_OFFSET %q: %w", cfg.TZOffset, err)
	}
	return cfg, nil
}

// RequireAPI checks the settings only the HTTP server needs.
func (c Config) RequireAPI() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
