package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thinkex.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
api_base_url: https://api.thinkex.example
realtime:
  addr: redis.internal:6380
  password: hunter2
  db: 2
  namespace: prod
  client_name: desk-1
poll_seconds: 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.thinkex.example", cfg.APIBaseURL)
	assert.Equal(t, "redis.internal:6380", cfg.Realtime.Addr)
	assert.Equal(t, "hunter2", cfg.Realtime.Password)
	assert.Equal(t, 2, cfg.Realtime.DB)
	assert.Equal(t, "prod", cfg.Realtime.Namespace)
	assert.Equal(t, "desk-1", cfg.Realtime.ClientName)
	assert.Equal(t, 30*time.Second, cfg.PollInterval())
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "api_base_url: http://localhost:8000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.Realtime.Addr)
	assert.Equal(t, "default", cfg.Realtime.Namespace)
	assert.Equal(t, DefaultPollSeconds, cfg.PollSeconds)
	assert.True(t, strings.HasPrefix(cfg.Realtime.ClientName, "thinkex-client-"))
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("THINKEX_API_URL", "http://localhost:8000")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
}

func TestLoadMissingFileNoEnv(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_base_url is required")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
api_base_url: http://file.example
realtime:
  addr: file.example:6379
`)
	t.Setenv("THINKEX_API_URL", "http://env.example")
	t.Setenv("THINKEX_REDIS_ADDR", "env.example:6379")
	t.Setenv("THINKEX_REDIS_PASSWORD", "secret")
	t.Setenv("THINKEX_POLL_SECONDS", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", cfg.APIBaseURL)
	assert.Equal(t, "env.example:6379", cfg.Realtime.Addr)
	assert.Equal(t, "secret", cfg.Realtime.Password)
	assert.Equal(t, 5, cfg.PollSeconds)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "api_base_url: [not: valid\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIBaseURL: "http://localhost:8000",
			Realtime:   RealtimeConfig{Namespace: "default"},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing api url", func(t *testing.T) {
		cfg := valid()
		cfg.APIBaseURL = "  "
		assert.Error(t, cfg.Validate())
	})

	t.Run("api url without scheme", func(t *testing.T) {
		cfg := valid()
		cfg.APIBaseURL = "localhost:8000"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http://")
	})

	t.Run("namespace with colon", func(t *testing.T) {
		cfg := valid()
		cfg.Realtime.Namespace = "a:b"
		assert.Error(t, cfg.Validate())
	})

	t.Run("namespace with space", func(t *testing.T) {
		cfg := valid()
		cfg.Realtime.Namespace = "a b"
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative poll interval", func(t *testing.T) {
		cfg := valid()
		cfg.PollSeconds = -1
		assert.Error(t, cfg.Validate())
	})
}
