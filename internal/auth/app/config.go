package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AccessSecret  string        // Required: HMAC secret for access tokens
	RefreshSecret string        // Required: HMAC secret for refresh tokens, must differ
	Issuer        string        // Optional: issuer claim for tokens (default: arolux-auth)
	AccessTTL     time.Duration // Optional: access token lifetime (default: 24h)
	RefreshTTL    time.Duration // Optional: refresh token lifetime (default: 720h)

	DatabaseFile      string // Optional: path to SQLite database file (default: ./auth.db)
	AdminLoginKeyFile string // Optional: PEM RSA private key; enables encrypted admin login bodies

	RootAdminEmail    string // Optional: seeded super-admin email (default: superadmin@arolux.com)
	RootAdminPassword string // Optional: seeded super-admin password; seeding is skipped when empty

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	AuditBuffer          int           // Audit log queue depth (default: 256)
}

func LoadConfig() Config {
	// Local development keeps its settings in a .env file; a missing file
	// is not an error.
	_ = godotenv.Load()

	return Config{
		AccessSecret:  os.Getenv("JWT_SECRET"),
		RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		Issuer:        getEnvOrDefault("AUTH_ISSUER", "arolux-auth"),
		AccessTTL:     getEnvDurationOrDefault("JWT_ACCESS_TTL", 24*time.Hour),
		RefreshTTL:    getEnvDurationOrDefault("JWT_REFRESH_TTL", 30*24*time.Hour),

		DatabaseFile:      getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		AdminLoginKeyFile: os.Getenv("ADMIN_LOGIN_KEY_FILE"),

		RootAdminEmail:    getEnvOrDefault("ROOT_ADMIN_EMAIL", "superadmin@arolux.com"),
		RootAdminPassword: os.Getenv("ROOT_ADMIN_PASSWORD"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		AuditBuffer:          getEnvIntOrDefault("AUDIT_BUFFER", 256),
	}
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

	// "1h", "30m", "90s"
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
