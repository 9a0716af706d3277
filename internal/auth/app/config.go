package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/syedsanaulhaq/scl/pkg/cryptox"
	"github.com/syedsanaulhaq/scl/pkg/httpx"
	"github.com/syedsanaulhaq/scl/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Issuer        string        // issuer claim for tokens (default: scl-auth)
	AccessSecret  string        // HS256 secret for access tokens, from AUTH_ACCESS_SECRET or _FILE
	RefreshSecret string        // HS256 secret for refresh tokens, from AUTH_REFRESH_SECRET or _FILE
	AccessTTL     time.Duration // default: 15m
	RefreshTTL    time.Duration // default: 7d

	HashAlgorithm     string // argon2id or bcrypt (default: argon2id)
	HashMemoryKiB     int
	HashIterations    int
	HashParallelism   int
	BcryptCost        int
	PepperFile        string // empty disables peppering
	PasswordMinLength int    // default: 6

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // sqlite path (default: ./auth.db)
	DatabaseURL    string // postgres connection string

	BootstrapAdminEmail    string // Optional: first admin, created when the directory is empty
	BootstrapAdminPassword string

	Env                 string        // Environment (dev, test, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	RateLimits httpx.RateLimitProfiles
}

// LoadConfig reads the configuration from the environment. Unparseable
// numbers and durations fall back to their defaults; an unreadable *_FILE
// secret is an error.
func LoadConfig() (Config, error) {
	def := cryptox.DefaultHashParams()
	var secrets secretLoader

	cfg := Config{
		Issuer:        getEnvOrDefault("AUTH_ISSUER", "scl-auth"),
		AccessSecret:  secrets.get("AUTH_ACCESS_SECRET"),
		RefreshSecret: secrets.get("AUTH_REFRESH_SECRET"),
		AccessTTL:     getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:    getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),

		HashAlgorithm:     strings.ToLower(getEnvOrDefault("AUTH_HASH_ALGORITHM", string(def.Algorithm))),
		HashMemoryKiB:     getEnvIntOrDefault("AUTH_HASH_MEMORY_KIB", int(def.Memory)),
		HashIterations:    getEnvIntOrDefault("AUTH_HASH_ITERATIONS", int(def.Iterations)),
		HashParallelism:   getEnvIntOrDefault("AUTH_HASH_PARALLELISM", int(def.Parallelism)),
		BcryptCost:        getEnvIntOrDefault("AUTH_BCRYPT_COST", def.BcryptCost),
		PepperFile:        getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		PasswordMinLength: getEnvIntOrDefault("AUTH_PASSWORD_MIN_LENGTH", 6),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:    secrets.get("AUTH_DATABASE_URL"),

		BootstrapAdminEmail:    os.Getenv("AUTH_BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: secrets.get("AUTH_BOOTSTRAP_ADMIN_PASSWORD"),

		Env:                 strings.ToLower(getEnvOrDefault("ENV", "dev")),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		RateLimits: httpx.DefaultRateLimitProfiles().ProfilesFromEnv(os.Getenv),
	}

	return cfg, errors.Join(secrets.errs...)
}

// IsProduction reports whether insecure fallbacks must be refused.
func (c Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production" || c.Env == "staging"
}

func (c Config) HashParams() cryptox.HashParams {
	return cryptox.HashParams{
		Algorithm:   cryptox.Algorithm(c.HashAlgorithm),
		Memory:      uint32(max(c.HashMemoryKiB, 0)),
		Iterations:  uint32(max(c.HashIterations, 0)),
		Parallelism: uint8(min(max(c.HashParallelism, 0), 255)),
		BcryptCost:  c.BcryptCost,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// secretLoader prefers the file named by KEY_FILE, for container secrets,
// over KEY itself, and records files it could not read.
type secretLoader struct {
	errs []error
}

func (s *secretLoader) get(key string) string {
	if file := os.Getenv(key + "_FILE"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			s.errs = append(s.errs, fmt.Errorf("read %s_FILE: %w", key, err))
			return ""
		}
		return strings.TrimSpace(string(data))
	}
	return strings.TrimSpace(os.Getenv(key))
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
