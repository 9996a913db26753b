package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized by the loader. Env values override
// the config file.
const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvStripeAPIKey = "STRIPE_API_KEY"
)

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 2 * time.Hour

// Config validation errors.
var (
	// ErrMissingDatabaseDSN indicates no database DSN is configured.
	ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database.dsn` or env DB_CONNECTION)")
	// ErrMissingJWTSecret indicates no JWT signing secret is configured.
	ErrMissingJWTSecret = errors.New("missing jwt secret (set `jwt.secret` or env JWT_SECRET)")
	// ErrMissingStripeAPIKey indicates no Stripe API key is configured.
	ErrMissingStripeAPIKey = errors.New("missing stripe api key (set `stripe.api-key` or env STRIPE_API_KEY)")
)

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// StripeConfig holds the payment provider settings.
type StripeConfig struct {
	APIKey      string `yaml:"api-key"`
	FrontendURL string `yaml:"frontend-url"`
	Currency    string `yaml:"currency"`
}

// RateLimitConfig holds the fixed-window request limiter settings.
type RateLimitConfig struct {
	Limit         int    `yaml:"limit"`
	WindowSeconds int    `yaml:"window-seconds"`
	RedisAddr     string `yaml:"redis-addr"`
	RedisPassword string `yaml:"redis-password"`
	RedisDB       int    `yaml:"redis-db"`
	RedisPrefix   string `yaml:"redis-prefix"`
}

// PDFConfig holds the PDF renderer settings.
type PDFConfig struct {
	ChromeURL string `yaml:"chrome-url"`
	NoSandbox bool   `yaml:"no-sandbox"`
}

// Config holds the resolved application configuration.
type Config struct {
	DatabaseDSN    string          `yaml:"database-dsn"`
	Database       struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	JWT            JWTConfig       `yaml:"jwt"`
	Stripe         StripeConfig    `yaml:"stripe"`
	RateLimit      RateLimitConfig `yaml:"rate-limit"`
	PDF            PDFConfig       `yaml:"pdf"`
	AllowedOrigins []string        `yaml:"allowed-origins"`
	LogLevel       string          `yaml:"log-level"`
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file, applies env overrides and defaults.
// A missing file is not an error; env variables may carry everything.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
			return nil, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return nil, fmt.Errorf("read config file: %w", errRead)
	}

	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.JWT.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			cfg.JWT.Expiry = expiry
		}
	}
	if key := strings.TrimSpace(os.Getenv(EnvStripeAPIKey)); key != "" {
		cfg.Stripe.APIKey = key
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills unset fields with their defaults.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		c.DatabaseDSN = strings.TrimSpace(c.Database.DSN)
	}
	if c.JWT.Expiry <= 0 {
		c.JWT.Expiry = defaultJWTExpiry
	}
	if strings.TrimSpace(c.Stripe.Currency) == "" {
		c.Stripe.Currency = "eur"
	}
	if strings.TrimSpace(c.Stripe.FrontendURL) == "" {
		c.Stripe.FrontendURL = "http://localhost:5173"
	}
	if c.RateLimit.Limit <= 0 {
		c.RateLimit.Limit = 50
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = 10
	}
	if strings.TrimSpace(c.RateLimit.RedisPrefix) == "" {
		c.RateLimit.RedisPrefix = "estimo:rl"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = "info"
	}
}

// Validate reports fatal misconfiguration. Called once at startup; request
// handling never reaches these states.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		return ErrMissingDatabaseDSN
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	if strings.TrimSpace(c.Stripe.APIKey) == "" {
		return ErrMissingStripeAPIKey
	}
	return nil
}
