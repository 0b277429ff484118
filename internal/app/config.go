package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (ORDERS_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (ORDERS_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	RedisAddr     string        `default:"" usage:"Redis address for the movie cache; empty disables caching" flag:"redis-addr"`
	MovieCacheTTL time.Duration `default:"6h" usage:"TTL for cached movie catalog entries" flag:"movie-cache-ttl"`

	Omdb    OmdbConfig
	Zipwise ZipwiseConfig

	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// OmdbConfig points at the OMDB movie catalog API.
type OmdbConfig struct {
	BaseURL string `default:"https://www.omdbapi.com" env:"BASE_URL" usage:"OMDB API base URL" flag:"omdb-url"`
	APIKey  string `env:"APIKEY" usage:"OMDB API key (ORDERS_OMDB_APIKEY)" flag:"omdb-apikey"`
}

// ZipwiseConfig points at the Zipwise ZIP code API. When no API key is set,
// address validation falls back to the local zip_codes table.
type ZipwiseConfig struct {
	BaseURL string `default:"https://www.zipwise.com/webservices/zipinfo.php" env:"BASE_URL" usage:"Zipwise API base URL" flag:"zipwise-url"`
	APIKey  string `default:"" env:"APIKEY" usage:"Zipwise API key; empty uses the local ZIP directory" flag:"zipwise-apikey"`
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

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ORDERS",
		Files:     []string{"config.yaml", "/etc/movie-orders/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set ORDERS_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Omdb.APIKey == "" {
		return nil, errors.New("OMDB API key is required: set ORDERS_OMDB_APIKEY")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// to the application's ORDERS_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
