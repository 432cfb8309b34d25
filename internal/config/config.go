// Package config loads the thinkex.yml client configuration: where the
// remote data store lives and how to reach the real-time channel. Both are
// opaque inputs to the core - nothing downstream interprets them beyond
// dialing.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DefaultPollSeconds is the polling-fallback interval applied when the
// config does not set one.
const DefaultPollSeconds = 10

// Config is the top-level thinkex.yml configuration.
type Config struct {
	// APIBaseURL is the base URL of the remote data store.
	APIBaseURL string `yaml:"api_base_url"`

	// Realtime configures the pub/sub channel.
	Realtime RealtimeConfig `yaml:"realtime"`

	// PollSeconds is the refetch interval used while the real-time
	// channel is disconnected. 0 means DefaultPollSeconds.
	PollSeconds int `yaml:"poll_seconds,omitempty"`
}

// RealtimeConfig holds the channel connection parameters.
type RealtimeConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password,omitempty"`
	DB        int    `yaml:"db,omitempty"`
	Namespace string `yaml:"namespace"`

	// ClientName identifies this client in published messages. Generated
	// when omitted.
	ClientName string `yaml:"client_name,omitempty"`
}

// Load reads the config file at path, applies environment overrides
// (THINKEX_API_URL, THINKEX_REDIS_ADDR, THINKEX_REDIS_PASSWORD), fills
// defaults, and validates. A missing file is not an error - env and
// defaults alone can form a complete config.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env/defaults
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("THINKEX_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("THINKEX_REDIS_ADDR"); v != "" {
		cfg.Realtime.Addr = v
	}
	if v := os.Getenv("THINKEX_REDIS_PASSWORD"); v != "" {
		cfg.Realtime.Password = v
	}
	if v := os.Getenv("THINKEX_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PollSeconds = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Realtime.Addr == "" {
		cfg.Realtime.Addr = "localhost:6379"
	}
	if cfg.Realtime.Namespace == "" {
		cfg.Realtime.Namespace = "default"
	}
	if cfg.Realtime.ClientName == "" {
		cfg.Realtime.ClientName = "thinkex-client-" + uuid.New().String()[:8]
	}
	if cfg.PollSeconds == 0 {
		cfg.PollSeconds = DefaultPollSeconds
	}
}

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api_base_url is required (or set THINKEX_API_URL)")
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("api_base_url must start with http:// or https://, got %q", c.APIBaseURL)
	}
	if c.Realtime.Namespace == "" {
		return fmt.Errorf("realtime.namespace cannot be empty")
	}
	if strings.ContainsAny(c.Realtime.Namespace, ": ") {
		return fmt.Errorf("realtime.namespace must not contain ':' or spaces, got %q", c.Realtime.Namespace)
	}
	if c.PollSeconds < 0 {
		return fmt.Errorf("poll_seconds must be >= 0, got %d", c.PollSeconds)
	}
	return nil
}

// PollInterval returns the polling-fallback interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}
