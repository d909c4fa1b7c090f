package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverHosted = "hosted"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  BackendConfig  `yaml:"backend"`
	Store    StoreConfig    `yaml:"store"`
	Features FeatureConfig  `yaml:"features"`
	Site     SiteConfig     `yaml:"site"`
	Download DownloadConfig `yaml:"download"`
	Worker   WorkerConfig   `yaml:"worker"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"3000"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"15m"`
	// AllowedOrigins is sent back in Access-Control-Allow-Origin for /api routes.
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"SERVER_ALLOWED_ORIGINS" default:"*"`
}

// BackendConfig points at the external download backend.
type BackendConfig struct {
	BaseURL string `yaml:"base_url" envconfig:"BACKEND_URL" default:"http://localhost:8000"`
	// Timeout bounds the short calls (stats, counters, rating).
	Timeout time.Duration `yaml:"timeout" envconfig:"BACKEND_TIMEOUT" default:"10s"`
	// HeaderTimeout bounds how long /download may take before response headers arrive.
	HeaderTimeout time.Duration `yaml:"header_timeout" envconfig:"BACKEND_HEADER_TIMEOUT" default:"10m"`
	UserAgent     string        `yaml:"user_agent" envconfig:"BACKEND_USER_AGENT" default:"tubegrab/1.0"`
}

// StoreConfig selects the testimonial store.
type StoreConfig struct {
	Driver     string        `yaml:"driver" envconfig:"STORE_DRIVER" default:"sqlite"`
	SQLitePath string        `yaml:"sqlite_path" envconfig:"STORE_SQLITE_PATH" default:"data/testimonials.db"`
	HostedURL  string        `yaml:"hosted_url" envconfig:"STORE_HOSTED_URL"`
	HostedKey  string        `yaml:"hosted_key" envconfig:"STORE_HOSTED_KEY"`
	Table      string        `yaml:"table" envconfig:"STORE_TABLE" default:"testimonials"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"STORE_TIMEOUT" default:"10s"`
	// ReadAttempts and RetryDelay apply to hosted list reads; writes are sent once.
	ReadAttempts int           `yaml:"read_attempts" envconfig:"STORE_READ_ATTEMPTS" default:"3"`
	RetryDelay   time.Duration `yaml:"retry_delay" envconfig:"STORE_RETRY_DELAY" default:"500ms"`
}

// FeatureConfig toggles optional page sections.
type FeatureConfig struct {
	Stats        bool `yaml:"stats" envconfig:"FEATURE_STATS" default:"true"`
	Testimonials bool `yaml:"testimonials" envconfig:"FEATURE_TESTIMONIALS" default:"true"`
}

// SiteConfig holds presentation settings.
type SiteConfig struct {
	AppName        string        `yaml:"app_name" envconfig:"SITE_APP_NAME" default:"YouTube Video Downloader"`
	AppDescription string        `yaml:"app_description" envconfig:"SITE_APP_DESCRIPTION" default:"Download YouTube videos easily and quickly"`
	ResetDelay     time.Duration `yaml:"reset_delay" envconfig:"SITE_RESET_DELAY" default:"3s"`
	GithubURL      string        `yaml:"github_url" envconfig:"SITE_GITHUB_URL"`
}

// DownloadConfig holds download form behavior.
type DownloadConfig struct {
	RequireYouTube bool `yaml:"require_youtube" envconfig:"DOWNLOAD_REQUIRE_YOUTUBE" default:"false"`
}

// WorkerConfig sizes the pool that runs best-effort side calls.
type WorkerConfig struct {
	Count       int           `yaml:"count" envconfig:"WORKER_COUNT" default:"2"`
	QueueSize   int           `yaml:"queue_size" envconfig:"WORKER_QUEUE_SIZE" default:"64"`
	TaskTimeout time.Duration `yaml:"task_timeout" envconfig:"WORKER_TASK_TIMEOUT" default:"15s"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("BACKEND_URL must be an absolute http(s) URL, got %q", c.Backend.BaseURL)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case StoreDriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("STORE_SQLITE_PATH is required for the sqlite store")
		}
	case StoreDriverHosted:
		if c.Store.HostedURL == "" {
			return fmt.Errorf("STORE_HOSTED_URL is required for the hosted store")
		}
		if c.Store.HostedKey == "" {
			return fmt.Errorf("STORE_HOSTED_KEY is required for the hosted store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Store.Table == "" {
		return fmt.Errorf("STORE_TABLE is required")
	}

	if c.Site.ResetDelay < 0 {
		return fmt.Errorf("SITE_RESET_DELAY must not be negative")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Endpoint joins the backend base URL with path.
func (c *BackendConfig) Endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
