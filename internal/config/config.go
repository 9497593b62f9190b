// Package config loads the service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ByeongIn-K/goat-server/internal/store"
)

// Store modes.
const (
	StoreRemote = "remote"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	Store struct {
		Mode            string `yaml:"mode"`
		BaseURL         string `yaml:"base_url"`
		APIKey          string `yaml:"api_key"`
		SQLitePath      string `yaml:"sqlite_path"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"store"`

	Backup store.BackupConfig `yaml:"backup"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	API struct {
		Addr           string  `yaml:"addr"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps"`
		RateLimitBurst int     `yaml:"rate_limit_burst"`
	} `yaml:"api"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Timezone string `yaml:"timezone"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Store.Mode == "" {
		cfg.Store.Mode = StoreMemory
	}
	switch cfg.Store.Mode {
	case StoreRemote:
		if cfg.Store.BaseURL == "" {
			return nil, fmt.Errorf("store.base_url required for remote mode")
		}
	case StoreSQLite:
		if cfg.Store.SQLitePath == "" {
			cfg.Store.SQLitePath = "data/goat.db"
		}
		if err = os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
			return nil, err
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unknown store.mode %q", cfg.Store.Mode)
	}

	if cfg.API.Addr == "" {
		cfg.API.Addr = ":8080"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	return &cfg, nil
}

func (c *Config) CacheTTL() time.Duration {
	if c.Store.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Store.CacheTTLSeconds) * time.Second
}
