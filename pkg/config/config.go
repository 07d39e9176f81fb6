package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/whalebot/gowhale/internal/domain"
)

// LogConfig controls logging output and rotation.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // empty means console only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Config is the process-wide application configuration. It is loaded once at
// startup and passed to component constructors; nothing reads it lazily.
type Config struct {
	AppName string `yaml:"app_name"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Debug   bool   `yaml:"debug"`

	GammaAPIURL string `yaml:"gamma_api_url"`
	DataAPIURL  string `yaml:"data_api_url"`
	ClobAPIURL  string `yaml:"clob_api_url"`

	// Wallet private key for the optional authenticated CLOB path.
	PrivateKey string `yaml:"private_key"`

	// Pre-derived L2 credential triple; when all three are set the
	// authentication handshake is skipped.
	ClobAPIKey        string `yaml:"clob_api_key"`
	ClobAPISecret     string `yaml:"clob_api_secret"`
	ClobAPIPassphrase string `yaml:"clob_api_passphrase"`

	WhaleThreshold float64       `yaml:"whale_threshold"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// RequestsPerSecond throttles calls per upstream host. Zero disables.
	RequestsPerSecond int `yaml:"requests_per_second"`
	// MarketCacheTTL keeps single-market lookups in memory. Zero disables.
	MarketCacheTTL time.Duration `yaml:"market_cache_ttl"`

	Log LogConfig `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AppName:           "gowhale",
		Host:              "127.0.0.1",
		Port:              8000,
		GammaAPIURL:       "https://gamma-api.polymarket.com",
		DataAPIURL:        "https://data-api.polymarket.com",
		ClobAPIURL:        "https://clob.polymarket.com",
		WhaleThreshold:    domain.DefaultWhaleThreshold,
		RequestTimeout:    30 * time.Second,
		RequestsPerSecond: 10,
		MarketCacheTTL:    30 * time.Second,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
	}
}

// Load builds the configuration from defaults plus environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads an optional YAML file first, then lets environment
// variables override it. A missing file is not an error when path is empty.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.AppName, "APP_NAME")
	setString(&c.Host, "API_HOST")
	if err := setInt(&c.Port, "API_PORT"); err != nil {
		return err
	}
	setBool(&c.Debug, "DEBUG")

	setString(&c.GammaAPIURL, "GAMMA_API_URL")
	setString(&c.DataAPIURL, "DATA_API_URL")
	setString(&c.ClobAPIURL, "CLOB_API_URL")

	setString(&c.PrivateKey, "POLYGON_WALLET_PRIVATE_KEY")
	setString(&c.ClobAPIKey, "CLOB_API_KEY")
	setString(&c.ClobAPISecret, "CLOB_API_SECRET")
	setString(&c.ClobAPIPassphrase, "CLOB_API_PASSPHRASE")

	if err := setFloat(&c.WhaleThreshold, "WHALE_THRESHOLD"); err != nil {
		return err
	}
	if err := setDuration(&c.RequestTimeout, "REQUEST_TIMEOUT"); err != nil {
		return err
	}
	if err := setInt(&c.RequestsPerSecond, "REQUESTS_PER_SECOND"); err != nil {
		return err
	}
	if err := setDuration(&c.MarketCacheTTL, "MARKET_CACHE_TTL"); err != nil {
		return err
	}

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.File, "LOG_FILE")
	return nil
}

// HasPreDerivedCreds reports whether a complete L2 triple was supplied,
// making the handshake unnecessary.
func (c *Config) HasPreDerivedCreds() bool {
	return c.ClobAPIKey != "" && c.ClobAPISecret != "" && c.ClobAPIPassphrase != ""
}

// ListenAddr is the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err == nil {
		*dst = b
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
