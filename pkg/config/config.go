package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret         string
	JWTIssuer         string
	JWTExpiryDuration time.Duration

	// LockTimeout bounds the wait for a contended account row lock.
	LockTimeout time.Duration

	// RecentChangeWindow is the default window for the recently-reconciled
	// accounts listing.
	RecentChangeWindow time.Duration

	// RateLimitPerMinute caps requests per client IP. Zero disables limiting.
	RateLimitPerMinute int64
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "grid-billing-app")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("LOCK_TIMEOUT", "3s")
	viper.SetDefault("RECENT_CHANGE_WINDOW", "48h")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 300)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.JWTExpiryDuration = parseDurationOr("JWT_EXPIRY_DURATION", time.Hour)
	cfg.LockTimeout = parseDurationOr("LOCK_TIMEOUT", 3*time.Second)
	cfg.RecentChangeWindow = parseDurationOr("RECENT_CHANGE_WINDOW", 48*time.Hour)
	cfg.RateLimitPerMinute = viper.GetInt64("RATE_LIMIT_PER_MINUTE")

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
