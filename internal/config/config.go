package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/ollan-health/checkout-api/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	SessionTTL     time.Duration
	IdempotencyTTL time.Duration
	RulesCacheTTL  time.Duration

	ExpressFee             int64
	TimeframeFee           int64
	TimeframeFreeThreshold int64
	DiscountBps            int32
	SlotLeadTime           time.Duration

	RateLimitMax    int
	RateLimitWindow time.Duration
	MaxBodyBytes    int64

	MigrateOnStart bool
}

// Load reads configuration from environment variables and optional .env files.
// DATABASE_URL is optional: without it the service prices against the built-in
// rule set and skips the admin endpoints.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	defaults := pricing.DefaultRules()
	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		SessionTTL:     parseDuration(k.String("CHECKOUT_SESSION_TTL"), "2h"),
		IdempotencyTTL: parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		RulesCacheTTL:  parseDuration(k.String("RULES_CACHE_TTL"), "5m"),

		ExpressFee:             parseInt64(k.String("PRICING_EXPRESS_FEE"), int64(defaults.ExpressFee)),
		TimeframeFee:           parseInt64(k.String("PRICING_TIMEFRAME_FEE"), int64(defaults.TimeframeFee)),
		TimeframeFreeThreshold: parseInt64(k.String("PRICING_TIMEFRAME_FREE_THRESHOLD"), int64(defaults.TimeframeFreeThreshold)),
		DiscountBps:            int32(parseInt64(k.String("PRICING_DISCOUNT_BPS"), int64(defaults.DiscountBps))),
		SlotLeadTime:           parseDuration(k.String("PRICING_SLOT_LEAD_TIME"), "30m"),

		RateLimitMax:    int(parseInt64(k.String("RATE_LIMIT_MAX"), 120)),
		RateLimitWindow: parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		MaxBodyBytes:    parseInt64(k.String("MAX_BODY_BYTES"), 1<<20),

		MigrateOnStart: parseBool(valueOrDefault(k.String("MIGRATE_ON_START"), "true")),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.ExpressFee < 0 || cfg.TimeframeFee < 0 || cfg.TimeframeFreeThreshold < 0 {
		return nil, errors.New("pricing fees must not be negative")
	}

	return cfg, nil
}

// Rules builds the tariff portion of the pricing rules from configuration.
// Allow-lists keep their built-in defaults until the store overrides them.
func (c *Config) Rules() pricing.Rules {
	rules := pricing.DefaultRules()
	rules.ExpressFee = pricing.Money(c.ExpressFee)
	rules.TimeframeFee = pricing.Money(c.TimeframeFee)
	rules.TimeframeFreeThreshold = pricing.Money(c.TimeframeFreeThreshold)
	if c.DiscountBps > 0 {
		rules.DiscountBps = c.DiscountBps
	}
	if c.SlotLeadTime > 0 {
		rules.SlotLeadTime = c.SlotLeadTime
	}
	return rules
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt64(value string, fallback int64) int64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
