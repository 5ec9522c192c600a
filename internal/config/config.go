package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Search modes understood by the recommendation service's text search.
const (
	SearchRecommended = "recommended"
	SearchHybrid      = "hybrid"
)

// Config is the persistent application configuration
type Config struct {
	// Recommendation service connection
	Service ServiceConfig `json:"service"`

	// Candidate pool behaviour
	Pool PoolConfig `json:"pool"`

	// User identity override
	User UserConfig `json:"user"`

	// Local development recommendation service
	DevServer DevServerConfig `json:"dev_server"`
}

// ServiceConfig holds recommendation service settings
type ServiceConfig struct {
	Hosts      []string `json:"hosts"`       // probed in order via GET <host>/health
	TimeoutMs  int      `json:"timeout_ms"`  // per-request timeout
	RatePerSec float64  `json:"rate_per_sec"` // client-side request rate
	Burst      int      `json:"burst"`
	SearchMode string   `json:"search_mode"` // "recommended" or "hybrid"
}

// PoolConfig holds pool settings
type PoolConfig struct {
	Capacity int `json:"capacity"`
}

// UserConfig holds an optional fixed user id. Empty means derive one.
type UserConfig struct {
	ID string `json:"id,omitempty"`
}

// DevServerConfig holds settings for `cardpool serve`
type DevServerConfig struct {
	Addr   string `json:"addr"`
	DBPath string `json:"db_path"` // empty means <data dir>/catalog.db
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Hosts:      []string{"http://localhost:8000", "http://127.0.0.1:8000"},
			TimeoutMs:  15000,
			RatePerSec: 10,
			Burst:      4,
			SearchMode: SearchRecommended,
		},
		Pool: PoolConfig{
			Capacity: 6,
		},
		DevServer: DevServerConfig{
			Addr: "127.0.0.1:8000",
		},
	}
}

// DataDir returns ~/.cardpool, where config, logs, events and the dev
// catalog live.
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cardpool")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// Load reads config from path (ConfigPath when empty), or returns defaults
// when the file does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.AutoPopulateFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to path (ConfigPath when empty)
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// AutoPopulateFromEnv applies CARDPOOL_* environment overrides
func (c *Config) AutoPopulateFromEnv() {
	if v := strings.TrimSpace(os.Getenv("CARDPOOL_HOSTS")); v != "" {
		var hosts []string
		for _, h := range strings.Split(v, ",") {
			if h = strings.TrimSpace(h); h != "" {
				hosts = append(hosts, strings.TrimRight(h, "/"))
			}
		}
		if len(hosts) > 0 {
			c.Service.Hosts = hosts
		}
	}
	if v := strings.TrimSpace(os.Getenv("CARDPOOL_USER_ID")); v != "" {
		c.User.ID = v
	}
	if v := strings.TrimSpace(os.Getenv("CARDPOOL_CAPACITY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Pool.Capacity = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CARDPOOL_SEARCH_MODE")); v != "" {
		c.Service.SearchMode = strings.ToLower(v)
	}
}

// Validate rejects settings the rest of the program cannot work with
func (c *Config) Validate() error {
	if c.Pool.Capacity < 1 {
		return fmt.Errorf("pool capacity must be at least 1, got %d", c.Pool.Capacity)
	}
	if len(c.Service.Hosts) == 0 {
		return errors.New("at least one service host is required")
	}
	switch c.Service.SearchMode {
	case SearchRecommended, SearchHybrid:
	default:
		return fmt.Errorf("unknown search mode %q", c.Service.SearchMode)
	}
	if c.Service.RatePerSec <= 0 {
		return fmt.Errorf("rate_per_sec must be positive, got %v", c.Service.RatePerSec)
	}
	return nil
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.Service.TimeoutMs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Service.TimeoutMs) * time.Millisecond
}

// CatalogPath returns the dev server database path.
func (c *Config) CatalogPath() string {
	if c.DevServer.DBPath != "" {
		return c.DevServer.DBPath
	}
	return filepath.Join(DataDir(), "catalog.db")
}
