package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreRedis  = "redis"
	StoreBolt   = "bolt"
	StoreMemory = "memory"
)

// Config is built once at startup and handed to each component by value.
// Nothing mutates it after LoadConfig returns.
type Config struct {
	Port           string
	AllowedOrigins []string
	CookieSecure   bool
	LogLevel       slog.Level
	LogFormat      string
	Security       Security
	Storage        Storage
}

// Security holds the thresholds and lifetimes of the auth core.
type Security struct {
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	EnableSSO        bool
	EvictionGraceTTL time.Duration
	AuditRetention   time.Duration
	TokenSecret      string
	AdminUsername    string
	AdminPassword    string
}

type Storage struct {
	Backend       string
	RedisURL      string
	RedisPassword string
	RedisDB       int
	BoltPath      string
	DatabaseURL   string
}

// DefaultSecurity returns the stock security settings.
func DefaultSecurity() Security {
	return Security{
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		MaxLoginAttempts: 5,
		LockoutDuration:  15 * time.Minute,
		EnableSSO:        true,
		EvictionGraceTTL: 60 * time.Second,
		AuditRetention:   30 * 24 * time.Hour,
		AdminUsername:    "admin",
		AdminPassword:    "admin123",
	}
}

func LoadConfig() Config {
	defaults := DefaultSecurity()

	// CORS: comma separated list of extra origins; same-origin always passes
	var allowedOrigins []string
	for _, origin := range strings.Split(GetEnv("ALLOWED_ORIGINS", ""), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			allowedOrigins = append(allowedOrigins, trimmed)
		}
	}

	security := Security{
		AccessTokenTTL:   GetEnvAsDuration("ACCESS_TOKEN_TTL", defaults.AccessTokenTTL),
		RefreshTokenTTL:  GetEnvAsDuration("REFRESH_TOKEN_TTL", defaults.RefreshTokenTTL),
		MaxLoginAttempts: GetEnvAsInt("MAX_LOGIN_ATTEMPTS", defaults.MaxLoginAttempts),
		LockoutDuration:  GetEnvAsDuration("LOCKOUT_DURATION", defaults.LockoutDuration),
		EnableSSO:        GetEnvAsBool("ENABLE_SSO", defaults.EnableSSO),
		EvictionGraceTTL: GetEnvAsDuration("EVICTION_GRACE_TTL", defaults.EvictionGraceTTL),
		AuditRetention:   GetEnvAsDuration("AUDIT_RETENTION", defaults.AuditRetention),
		TokenSecret:      GetEnv("TOKEN_SECRET", ""),
		AdminUsername:    GetEnv("ADMIN_USERNAME", defaults.AdminUsername),
		AdminPassword:    GetEnv("ADMIN_PASSWORD", defaults.AdminPassword),
	}

	storage := Storage{
		Backend:       strings.ToLower(GetEnv("STORE_BACKEND", StoreRedis)),
		RedisURL:      GetEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetEnvAsInt("REDIS_DB", 0),
		BoltPath:      GetEnv("BOLT_PATH", "simpage.db"),
		DatabaseURL:   GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", "")),
	}

	return Config{
		Port:           GetEnv("PORT", "8080"),
		AllowedOrigins: allowedOrigins,
		CookieSecure:   GetEnvAsBool("COOKIE_SECURE", true),
		LogLevel:       parseLevel(GetEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(GetEnv("LOG_FORMAT", "text")),
		Security:       security,
		Storage:        storage,
	}
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", valueStr, "default", defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "value", valueStr, "default", defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsDuration accepts Go duration strings ("15m") or a bare number of seconds.
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", valueStr, "default", defaultValue)
		return defaultValue
	}
	return value
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
