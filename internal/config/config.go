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

// Environment overrides applied after the file is read.
const (
	EnvAPIURL = "FLEET_API_URL"
	EnvWSURL  = "FLEET_WS_URL"
)

// Config represents the fleetctl configuration.
type Config struct {
	APIURL          string        `yaml:"api_url"`
	WSURL           string        `yaml:"ws_url,omitempty"` // derived from api_url when empty
	ActorID         string        `yaml:"actor_id,omitempty"`
	StaleAfter      time.Duration `yaml:"stale_after"`
	RefetchInterval time.Duration `yaml:"refetch_interval,omitempty"` // 0 disables polling
	CacheCapacity   int           `yaml:"cache_capacity"`
	CookieMaxAge    time.Duration `yaml:"cookie_max_age"`
	SessionDB       string        `yaml:"session_db,omitempty"` // defaults to ~/.fleet/session.db
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		APIURL:          "http://localhost:8080",
		StaleAfter:      30 * time.Second,
		RefetchInterval: 0,
		CacheCapacity:   256,
		CookieMaxAge:    7 * 24 * time.Hour,
	}
}

// Path returns the config file location under dir.
func Path(dir string) string {
	return filepath.Join(dir, ".fleet", "config.yaml")
}

// LoadConfig reads .fleet/config.yaml from dir over the defaults, then
// applies environment overrides. A missing file is not an error.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(dir))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvWSURL); v != "" {
		cfg.WSURL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes config.yaml under dir.
func SaveConfig(dir string, cfg *Config) error {
	fleetDir := filepath.Join(dir, ".fleet")
	if err := os.MkdirAll(fleetDir, 0755); err != nil {
		return fmt.Errorf("failed to create .fleet dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks for values the sync layer cannot run with.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("config: api_url is required")
	}
	if c.StaleAfter < 0 || c.RefetchInterval < 0 {
		return errors.New("config: durations must not be negative")
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("config: cache_capacity must be positive, got %d", c.CacheCapacity)
	}
	if c.CookieMaxAge <= 0 {
		return errors.New("config: cookie_max_age must be positive")
	}
	return nil
}

// RealtimeURL returns ws_url, or api_url with its scheme swapped and /ws appended.
func (c *Config) RealtimeURL() string {
	if c.WSURL != "" {
		return c.WSURL
	}
	base := strings.TrimRight(c.APIURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws"
}
