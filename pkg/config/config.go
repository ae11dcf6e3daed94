// Package config loads the admin console configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level console configuration.
type Config struct {
	API      APIConfig     `yaml:"api"`
	Server   ServerConfig  `yaml:"server"`
	Screens  ScreensConfig `yaml:"screens"`
	Session  SessionConfig `yaml:"session"`
	LogLevel string        `yaml:"log_level"`
	Charts   ChartsConfig  `yaml:"charts"`
}

// APIConfig points at the TuVibe REST backend.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	UploadRoot string        `yaml:"upload_root"`
	Timeout    time.Duration `yaml:"timeout"`
	RateLimit  float64       `yaml:"rate_limit"`
	Burst      int           `yaml:"burst"`
}

// ServerConfig controls the console HTTP listener.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"`
}

// ScreensConfig tunes screen behavior.
type ScreensConfig struct {
	PageSize       int           `yaml:"page_size"`
	CarouselPeriod time.Duration `yaml:"carousel_period"`
}

// SessionConfig locates the persisted credential.
type SessionConfig struct {
	Path  string `yaml:"path"`
	Token string `yaml:"token"`
}

// ChartsConfig configures analytics chart rendering.
type ChartsConfig struct {
	Theme    string        `yaml:"theme"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Defaults.
const (
	DefaultBaseURL        = "http://localhost:5000"
	DefaultUploadRoot     = "/uploads/"
	DefaultAddr           = ":8080"
	DefaultBasePath       = "/admin"
	DefaultPageSize       = 10
	DefaultCarouselPeriod = 3 * time.Second
	DefaultTimeout        = 10 * time.Second
	DefaultRateLimit      = 20
	DefaultBurst          = 5
	DefaultCacheTTL       = 5 * time.Minute
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path (optional), loads .env files and applies TUVIBE_* overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	var data []byte
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		data = raw
	}
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse unmarshals YAML bytes into a validated Config without consulting the environment.
func Parse(data []byte) (*Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}
	return &cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []string
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s must be an integer", key))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s must be a duration", key))
				return
			}
			*dst = d
		}
	}

	str("TUVIBE_API_URL", &c.API.BaseURL)
	str("TUVIBE_UPLOAD_ROOT", &c.API.UploadRoot)
	dur("TUVIBE_API_TIMEOUT", &c.API.Timeout)
	if v, ok := lookup("TUVIBE_RATE_LIMIT"); ok && strings.TrimSpace(v) != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, "TUVIBE_RATE_LIMIT must be a number")
		} else {
			c.API.RateLimit = f
		}
	}
	num("TUVIBE_RATE_BURST", &c.API.Burst)
	str("TUVIBE_ADDR", &c.Server.Addr)
	str("TUVIBE_BASE_PATH", &c.Server.BasePath)
	num("TUVIBE_PAGE_SIZE", &c.Screens.PageSize)
	dur("TUVIBE_CAROUSEL_PERIOD", &c.Screens.CarouselPeriod)
	str("TUVIBE_SESSION_PATH", &c.Session.Path)
	str("TUVIBE_TOKEN", &c.Session.Token)
	str("TUVIBE_LOG_LEVEL", &c.LogLevel)

	if len(errs) > 0 {
		return fmt.Errorf("config: environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.UploadRoot == "" {
		c.API.UploadRoot = DefaultUploadRoot
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.API.RateLimit == 0 {
		c.API.RateLimit = DefaultRateLimit
	}
	if c.API.Burst == 0 {
		c.API.Burst = DefaultBurst
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = DefaultBasePath
	}
	if c.Screens.PageSize == 0 {
		c.Screens.PageSize = DefaultPageSize
	}
	if c.Screens.CarouselPeriod == 0 {
		c.Screens.CarouselPeriod = DefaultCarouselPeriod
	}
	if c.Charts.CacheTTL == 0 {
		c.Charts.CacheTTL = DefaultCacheTTL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
}

func (c *Config) validate() error {
	var errs []string
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "api.base_url must be an absolute URL")
	}
	if c.API.Timeout < 0 {
		errs = append(errs, "api.timeout must not be negative")
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, "api.rate_limit must not be negative")
	}
	if c.API.Burst < 0 {
		errs = append(errs, "api.burst must not be negative")
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		errs = append(errs, "server.base_path must start with /")
	}
	if c.Screens.PageSize < 1 {
		errs = append(errs, "screens.page_size must be positive")
	}
	if c.Screens.CarouselPeriod < 0 {
		errs = append(errs, "screens.carousel_period must not be negative")
	}
	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
