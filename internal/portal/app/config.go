package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/supportportal/portal/pkg/jwtx"
	"github.com/supportportal/portal/pkg/lockout"
)

// ErrMissingTokenSecret aborts startup when no signing secret is configured.
// Generating one silently would invalidate every outstanding token on each
// restart without anyone noticing.
var ErrMissingTokenSecret = errors.New("app: PORTAL_TOKEN_SECRET is required")

type Config struct {
	TokenSecret string        // Required: HMAC secret for token signing
	Issuer      string        // Optional: issuer claim for tokens (default: Get Arrays, LLC)
	Audience    string        // Optional: audience claim for tokens (default: Get Arrays Portal)
	TokenTTL    time.Duration // Optional: access token lifetime (default: 1h)
	TokenHeader string        // Optional: response header carrying issued tokens (default: Jwt-Token)

	MaxLoginAttempts int           // Optional: failed logins before lock (default: 5)
	AttemptTTL       time.Duration // Optional: failed attempt record lifetime (default: 15m)
	AttemptCapacity  int           // Optional: max tracked accounts (default: 100)

	DatabaseFile string // Optional: path to SQLite database file (default: ./portal.db)
	MediaRoot    string // Optional: directory for profile images (default: ./media)

	SMTPHost     string // Optional: SMTP relay host; mail is logged when unset
	SMTPPort     int    // Optional: SMTP relay port (default: 587)
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string // Optional: sender address (default: support@getarrays.com)

	SentryDSN string // Optional: error reporting; disabled when unset

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads configuration from the environment, after folding in a
// local .env file when one exists.
func LoadConfig() (Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := Config{
		TokenSecret: os.Getenv("PORTAL_TOKEN_SECRET"),
		Issuer:      getEnvOrDefault("PORTAL_TOKEN_ISSUER", "Get Arrays, LLC"),
		Audience:    getEnvOrDefault("PORTAL_TOKEN_AUDIENCE", "Get Arrays Portal"),
		TokenTTL:    getEnvDurationOrDefault("PORTAL_TOKEN_TTL", jwtx.DefaultTokenTTL),
		TokenHeader: getEnvOrDefault("PORTAL_TOKEN_HEADER", "Jwt-Token"),

		MaxLoginAttempts: getEnvIntOrDefault("PORTAL_MAX_LOGIN_ATTEMPTS", lockout.DefaultMaxAttempts),
		AttemptTTL:       getEnvDurationOrDefault("PORTAL_ATTEMPT_TTL", lockout.DefaultTTL),
		AttemptCapacity:  getEnvIntOrDefault("PORTAL_ATTEMPT_CAPACITY", lockout.DefaultCapacity),

		DatabaseFile: getEnvOrDefault("PORTAL_DATABASE_FILE", "portal.db"),
		MediaRoot:    getEnvOrDefault("PORTAL_MEDIA_ROOT", "media"),

		SMTPHost:     os.Getenv("PORTAL_SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("PORTAL_SMTP_PORT", 587),
		SMTPUsername: os.Getenv("PORTAL_SMTP_USERNAME"),
		SMTPPassword: os.Getenv("PORTAL_SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("PORTAL_SMTP_FROM", "support@getarrays.com"),

		SentryDSN: os.Getenv("SENTRY_DSN"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.TokenSecret == "" {
		return Config{}, ErrMissingTokenSecret
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
