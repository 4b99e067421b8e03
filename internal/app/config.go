package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (ORDERKARO_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:5000" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL; in-memory storage is used when empty" flag:"database-url"`
	RedisURL    string `usage:"Redis connection URL for cart caching; caching is disabled when empty" flag:"redis-url"`
	Version     string `default:"1.0.0" usage:"Version reported by the health endpoint"`

	JWTSecret string        `usage:"HMAC secret for signing auth tokens (ORDERKARO_JWT_SECRET)" flag:"jwt-secret"`
	TokenTTL  time.Duration `default:"168h" usage:"Auth token lifetime" flag:"token-ttl"`

	PaymentSecret  string        `usage:"Shared secret for payment signature verification" flag:"payment-secret"`
	PaymentTimeout time.Duration `default:"5s" usage:"Upper bound on payment provider verification" flag:"payment-timeout"`

	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ORDERKARO",
		Files:     []string{"config.yaml", "/etc/orderkaro/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret is required: set ORDERKARO_JWT_SECRET or JWT_SECRET")
	}
	if cfg.PaymentSecret == "" {
		cfg.PaymentSecret = cfg.JWTSecret
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's ORDERKARO_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if c.RedisURL == "" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.RedisURL = v
		}
	}
	if c.JWTSecret == "" {
		if v := os.Getenv("JWT_SECRET"); v != "" {
			c.JWTSecret = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:5000" {
		c.Addr = "0.0.0.0:" + port
	}
}
