package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// CORS (the SPA dashboard origin)
	AllowedOrigins []string

	// External services
	ChatGatewayURL  string // AI gateway for chat coaching (POST /v1/chat/completions)
	ChatGatewayKey  string // bearer token for the AI gateway
	ReportAPIURL    string // report generator endpoint
	MarketAPIURL    string // stock/news proxy endpoint
	MarketAPIKey    string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience (store + market paths; the chat path is single-attempt)
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL       time.Duration
	MarketCacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Supabase (remote store)
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string
	UseSupabase        bool

	// SQLite (local store, used when Supabase is not configured)
	SQLitePath string

	// JWT verification (tokens are issued by Supabase Auth; we only verify)
	JWTSecret string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "http://localhost:5173")},

		ChatGatewayURL: getEnv("CHAT_GATEWAY_URL", "https://ai-gateway.finpulse.app"),
		ChatGatewayKey: getEnv("CHAT_GATEWAY_KEY", ""),
		ReportAPIURL:   getEnv("REPORT_API_URL", "https://ai-gateway.finpulse.app"),
		MarketAPIURL:   getEnv("MARKET_API_URL", "https://market.finpulse.app"),
		MarketAPIKey:   getEnv("MARKET_API_KEY", ""),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL:       getEnvDuration("CACHE_TTL", 5*time.Minute),
		MarketCacheTTL: getEnvDuration("MARKET_CACHE_TTL", 1*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		UseSupabase:        getEnv("USE_SUPABASE", "true") == "true",

		SQLitePath: getEnv("SQLITE_PATH", "data/finpulse.db"),

		JWTSecret: getEnv("JWT_SECRET", "finpulse-default-dev-secret-change-me"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
