// Package config handles application configuration loading from environment
// variables and an optional config file. It provides a centralized Config
// struct used across the application.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Development defaults that must not reach production.
const (
	defaultDBPassword = "changeme"
	defaultJWTSecret  = "inkwell-dev-secret"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// StoreDriver selects the repository backend.
	StoreDriver string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// MongoDB connection
	MongoURI string
	MongoDB  string

	// Valkey (Redis-compatible), used by the write rate limiter
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int

	// Bearer token verification
	JWTSecret string
	JWTIssuer string

	// Mutations allowed per client IP per window; zero disables the limiter.
	RateLimitWrites int
	RateLimitWindow time.Duration

	// TrustProxy keys the rate limiter by X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that sets those headers.
	TrustProxy bool

	// SearchMaxResults caps unpaginated search responses.
	SearchMaxResults int
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. If INKWELL_CONFIG names a file it is
// read first and environment variables override it. Returns an error if
// critical values are missing in production mode.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("INKWELL_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Host: v.GetString("app_host"),
		Port: v.GetString("app_port"),
		Env:  v.GetString("app_env"),

		StoreDriver: v.GetString("store_driver"),

		DBHost:     v.GetString("postgres_host"),
		DBPort:     v.GetString("postgres_port"),
		DBUser:     v.GetString("postgres_user"),
		DBPassword: v.GetString("postgres_password"),
		DBName:     v.GetString("postgres_db"),

		MongoURI: v.GetString("mongo_uri"),
		MongoDB:  v.GetString("mongo_db"),

		ValkeyHost:     v.GetString("valkey_host"),
		ValkeyPort:     v.GetString("valkey_port"),
		ValkeyPassword: v.GetString("valkey_password"),
		ValkeyDB:       v.GetInt("valkey_db"),

		JWTSecret: v.GetString("jwt_secret"),
		JWTIssuer: v.GetString("jwt_issuer"),

		RateLimitWrites:  v.GetInt("rate_limit_writes"),
		RateLimitWindow:  v.GetDuration("rate_limit_window"),
		TrustProxy:       v.GetBool("trust_proxy"),
		SearchMaxResults: v.GetInt("search_max_results"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8080")
	v.SetDefault("app_env", "development")

	v.SetDefault("store_driver", DriverPostgres)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("postgres_user", "inkwell")
	v.SetDefault("postgres_password", defaultDBPassword)
	v.SetDefault("postgres_db", "inkwell")

	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db", "inkwell")

	v.SetDefault("valkey_host", "localhost")
	v.SetDefault("valkey_port", "6379")
	v.SetDefault("valkey_password", "")
	v.SetDefault("valkey_db", 0)

	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("jwt_issuer", "inkwell")

	v.SetDefault("rate_limit_writes", 30)
	v.SetDefault("rate_limit_window", time.Minute)
	v.SetDefault("trust_proxy", false)
	v.SetDefault("search_max_results", 200)
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of %s, %s, %s; got %q",
			DriverPostgres, DriverMongo, DriverMemory, c.StoreDriver)
	}
	if c.RateLimitWrites < 0 {
		return errors.New("RATE_LIMIT_WRITES must not be negative")
	}
	if c.RateLimitWrites > 0 && c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be positive")
	}
	if c.SearchMaxResults <= 0 {
		return errors.New("SEARCH_MAX_RESULTS must be positive")
	}

	if c.Env == "production" {
		if c.StoreDriver == DriverPostgres && c.DBPassword == defaultDBPassword {
			return errors.New("POSTGRES_PASSWORD must be set in production")
		}
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be set to at least 32 characters in production")
		}
		if c.StoreDriver == DriverMemory {
			return errors.New("STORE_DRIVER=memory is not allowed in production")
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
