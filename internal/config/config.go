package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinSecretBytes is the smallest accepted HMAC key (256 bits).
const MinSecretBytes = 32

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	HTTP         HTTPConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Cache        CacheConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// HTTPConfig holds edge concerns: CORS, trace header and the access policy file.
type HTTPConfig struct {
	CORSAllowedOrigins []string
	CORSMaxAgeSeconds  int
	AccessPolicyFile   string
	TraceHeader        string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	// JWTSecret is the decoded signing key. It is never logged.
	JWTSecret                   []byte
	AccessTokenTTLMinutes       int
	RefreshTokenTTLMinutes      int
	BcryptCost                  int
	IdentityLookupTimeoutMillis int
	SensitiveFields             []string
}

// CacheConfig controls the menu catalogue cache.
type CacheConfig struct {
	MenuTTLSeconds int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	secret, err := decodeSecret(os.Getenv("AUTH_JWT_SECRET"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "foodorder-backend"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			CORSMaxAgeSeconds:  getEnvAsInt("CORS_MAX_AGE_SECONDS", 3600),
			AccessPolicyFile:   os.Getenv("ACCESS_POLICY_FILE"),
			TraceHeader:        getEnv("TRACE_HEADER", "X-Trace-Id"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:                   secret,
			AccessTokenTTLMinutes:       getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			RefreshTokenTTLMinutes:      getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_MINUTES", 1440),
			BcryptCost:                  getEnvAsInt("AUTH_BCRYPT_COST", 12),
			IdentityLookupTimeoutMillis: getEnvAsInt("AUTH_IDENTITY_LOOKUP_TIMEOUT_MS", 2000),
			SensitiveFields:             getEnvAsList("SENSITIVE_FIELDS", nil),
		},
		Cache: CacheConfig{
			MenuTTLSeconds: getEnvAsInt("CACHE_MENU_TTL_SECONDS", 60),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < MinSecretBytes {
		return fmt.Errorf("AUTH_JWT_SECRET must decode to at least %d bytes", MinSecretBytes)
	}
	if c.Auth.AccessTokenTTLMinutes <= 0 {
		return errors.New("AUTH_ACCESS_TOKEN_TTL_MINUTES must be positive")
	}
	if c.Auth.RefreshTokenTTLMinutes <= 0 {
		return errors.New("AUTH_REFRESH_TOKEN_TTL_MINUTES must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("AUTH_BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if len(c.HTTP.CORSAllowedOrigins) == 0 {
		return errors.New("CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	for _, origin := range c.HTTP.CORSAllowedOrigins {
		if origin == "*" {
			return errors.New("CORS_ALLOWED_ORIGINS must not contain a wildcard when credentials are allowed")
		}
	}
	return nil
}

// decodeSecret reads the base64 signing key, generated with `openssl rand -base64 32`.
func decodeSecret(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("AUTH_JWT_SECRET is not configured")
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, errors.New("AUTH_JWT_SECRET must be base64 encoded")
	}
	return key, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the lifetime of access tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the lifetime of refresh tokens.
func (a AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLMinutes) * time.Minute
}

// IdentityLookupTimeout bounds a single identity store lookup.
func (a AuthConfig) IdentityLookupTimeout() time.Duration {
	if a.IdentityLookupTimeoutMillis <= 0 {
		return 2 * time.Second
	}
	return time.Duration(a.IdentityLookupTimeoutMillis) * time.Millisecond
}

// MenuTTL returns how long the menu listing stays cached.
func (c CacheConfig) MenuTTL() time.Duration {
	return time.Duration(c.MenuTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
