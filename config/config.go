// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kenyaconnect/storefront/storage"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Port      int
	LogLevel  string
	LogFormat string

	StoreBackend  string
	RedisURL      string
	PostgresDSN   string
	MongoURL      string
	MongoDatabase string

	// CatalogFile overrides the embedded catalog when set.
	CatalogFile string

	PaymentPushDelay    time.Duration
	PaymentConfirmDelay time.Duration
	PaymentTimeout      time.Duration

	ShippingFee           int64
	FreeShippingThreshold int64

	SessionTTL time.Duration
}

func Default() Config {
	return Config{
		Port:                  8080,
		LogLevel:              "info",
		LogFormat:             "json",
		StoreBackend:          storage.BackendMemory,
		MongoDatabase:         "storefront",
		PaymentPushDelay:      2 * time.Second,
		PaymentConfirmDelay:   3 * time.Second,
		PaymentTimeout:        30 * time.Second,
		ShippingFee:           300,
		FreeShippingThreshold: 5000,
		SessionTTL:            24 * time.Hour,
	}
}

// Load reads envFiles (default ".env") if present, then the environment,
// and validates the result. Missing env files are ignored.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromEnv overrides fields from set environment variables.
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PORT: %w", err))
		}
		c.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = strings.ToLower(v)
	}

	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.StoreBackend = strings.ToLower(v)
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.PostgresDSN = v
	}
	if v := os.Getenv("MONGO_URL"); v != "" {
		c.MongoURL = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		c.MongoDatabase = v
	}
	if v := os.Getenv("CATALOG_FILE"); v != "" {
		c.CatalogFile = v
	}

	durations := map[string]*time.Duration{
		"PAYMENT_PUSH_DELAY":    &c.PaymentPushDelay,
		"PAYMENT_CONFIRM_DELAY": &c.PaymentConfirmDelay,
		"PAYMENT_TIMEOUT":       &c.PaymentTimeout,
		"SESSION_TTL":           &c.SessionTTL,
	}
	for name, dst := range durations {
		if v := os.Getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			*dst = d
		}
	}

	amounts := map[string]*int64{
		"SHIPPING_FEE":            &c.ShippingFee,
		"FREE_SHIPPING_THRESHOLD": &c.FreeShippingThreshold,
	}
	for name, dst := range amounts {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			*dst = n
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.Port < 1 || c.Port > 65535 {
		return invalid("invalid port: %d", c.Port)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return invalid("unknown log format %q", c.LogFormat)
	}

	switch c.StoreBackend {
	case storage.BackendMemory:
	case storage.BackendRedis:
		if c.RedisURL == "" {
			return invalid("REDIS_URL is required for the redis backend")
		}
	case storage.BackendPostgres:
		if c.PostgresDSN == "" {
			return invalid("POSTGRES_DSN is required for the postgres backend")
		}
	case storage.BackendMongo:
		if c.MongoURL == "" {
			return invalid("MONGO_URL is required for the mongo backend")
		}
	default:
		return invalid("unknown store backend %q", c.StoreBackend)
	}

	if c.PaymentPushDelay < 0 || c.PaymentConfirmDelay < 0 || c.PaymentTimeout < 0 || c.SessionTTL < 0 {
		return invalid("durations must not be negative")
	}
	if c.ShippingFee < 0 || c.FreeShippingThreshold < 0 {
		return invalid("amounts must not be negative")
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// StorageOptions maps the backend settings onto storage.Open.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:        c.StoreBackend,
		RedisURL:       c.RedisURL,
		RedisNamespace: "storefront",
		PostgresDSN:    c.PostgresDSN,
		MongoURL:       c.MongoURL,
		MongoDatabase:  c.MongoDatabase,
	}
}
