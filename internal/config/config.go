package config

import (
	"os"
	"strconv"
)

// Auth modes
const (
	AuthModeNone    = "none"    // no auth (self-hosted, local dev)
	AuthModeGateway = "gateway" // trust X-User-* headers from the gateway
	AuthModeJWT     = "jwt"     // HS256 bearer tokens signed with JWTSecret
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Persistence: a postgres DSN, or sqlite://path for local runs
	DatabaseURL string

	// Observability
	SentryDSN         string
	CloudWatchEnabled bool

	// Auth
	AuthMode  string
	JWTSecret string

	// Rate limiting per client
	RateLimitRPS   float64
	RateLimitBurst int

	// Analysis
	DefaultJazzLevel int
	AnalysisWorkers  int
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", "sqlite://harmonia.db"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		CloudWatchEnabled: getEnv("CLOUDWATCH_ENABLED", "false") == "true",
		AuthMode:          getEnv("AUTH_MODE", AuthModeNone), // Default to no auth for self-hosted
		JWTSecret:         getEnv("JWT_SECRET", ""),
		RateLimitRPS:      getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 20),
		DefaultJazzLevel:  getEnvInt("DEFAULT_JAZZ_LEVEL", 3),
		AnalysisWorkers:   getEnvInt("ANALYSIS_WORKERS", 4),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// IsGatewayMode returns true if running behind the gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == AuthModeGateway
}

// IsJWTMode returns true if requests carry their own bearer token
func (c *Config) IsJWTMode() bool {
	return c.AuthMode == AuthModeJWT
}

// IsProduction gates release-mode gin and Sentry sampling
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
