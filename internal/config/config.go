// Package config loads the application settings from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/naka-gawa/servicedesk-stats/internal/gateway"
)

const (
	defaultAddr           = ":8080"
	defaultTimeoutSeconds = int(gateway.DefaultTimeout / time.Second)
)

type Config struct {
	SourceURL      string `yaml:"source_url"`
	Datapoints     int    `yaml:"datapoints"`
	Token          string `yaml:"token"`
	Addr           string `yaml:"addr"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Load reads path when it exists, then applies environment overrides and
// defaults. An empty path skips the file.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("error parsing %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("error reading %s: %w", path, err)
		}
	}

	envOverride(&cfg.SourceURL, "SERVICEDESK_SOURCE_URL")
	envOverride(&cfg.Token, "SERVICEDESK_TOKEN")
	envOverride(&cfg.Addr, "SERVICEDESK_ADDR")
	if err := envOverrideInt(&cfg.Datapoints, "SERVICEDESK_DATAPOINTS"); err != nil {
		return Config{}, err
	}
	if err := envOverrideInt(&cfg.TimeoutSeconds, "SERVICEDESK_TIMEOUT_SECONDS"); err != nil {
		return Config{}, err
	}

	if cfg.SourceURL == "" {
		cfg.SourceURL = gateway.DefaultSourceURL
	}
	if cfg.Datapoints <= 0 {
		cfg.Datapoints = gateway.DefaultDatapoints
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaultTimeoutSeconds
	}
	return cfg, nil
}

// GatewayOptions converts the config into gateway settings.
func (c Config) GatewayOptions() gateway.Options {
	return gateway.Options{
		SourceURL:  c.SourceURL,
		Datapoints: c.Datapoints,
		Token:      c.Token,
		Timeout:    time.Duration(c.TimeoutSeconds) * time.Second,
	}
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*target = n
	return nil
}
