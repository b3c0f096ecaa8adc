// Package config loads the feedstream CLI configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the full CLI configuration.
type Config struct {
	LogLevel     string        `mapstructure:"log_level"`
	FetchLatency time.Duration `mapstructure:"fetch_latency"`
	Policy       domain.Policy `mapstructure:"policy"`
	HTTP         HTTP          `mapstructure:"http"`
	Store        Store         `mapstructure:"store"`
}

// HTTP configures the inspection server.
type HTTP struct {
	Addr    string `mapstructure:"addr"`
	Metrics bool   `mapstructure:"metrics"`
}

// Store selects where session snapshots live.
type Store struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	Redis  Redis  `mapstructure:"redis"`
}

// Redis configures the redis snapshot store.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Policy:   domain.DefaultPolicy(),
		HTTP: HTTP{Addr: ":8080", Metrics: true},
		Store: Store{
			Driver: StoreMemory,
			Path:   ".feedstream/snapshots",
			Redis:  Redis{Addr: "localhost:6379"},
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if raw == nil {
		return cfg, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be expressed by types alone.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("invalid config: unknown store driver %q", c.Store.Driver)
	}
	if c.FetchLatency < 0 {
		return fmt.Errorf("invalid config: negative fetch_latency")
	}
	if c.Store.Redis.TTL < 0 {
		return fmt.Errorf("invalid config: negative store.redis.ttl")
	}
	return nil
}
