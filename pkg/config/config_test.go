package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configContent := `
server:
  listen: ":9090"
  timeout: 45s

registry:
  path: /data/feeds.yml

schedule:
  interval: 24h
  auto_add: true

maintenance:
  keywords: [AI, LLM, machine learning]
  max_failures: 4
  max_workers: 2

probe:
  timeout: 5s

discovery:
  target_size: 12
  max_per_cycle: 2
  max_per_language: 5
  languages: [en, ja]

search:
  endpoint: https://llm.example.com/v1
  model: test-model
  api_key: secret
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.True(t, cfg.Server.Enabled)
		assert.Equal(t, "/data/feeds.yml", cfg.Registry.Path)
		assert.Equal(t, "/data/feeds.yml.lock", cfg.Registry.LockPath)
		assert.Equal(t, 24*time.Hour, cfg.Schedule.Interval)
		assert.True(t, cfg.Schedule.AutoAdd)
		assert.Equal(t, []string{"AI", "LLM", "machine learning"}, cfg.Maintenance.Keywords)
		assert.Equal(t, 4, cfg.Maintenance.MaxFailures)
		assert.Equal(t, 2, cfg.Maintenance.MaxWorkers)
		assert.Equal(t, 5*time.Second, cfg.Probe.Timeout)
		assert.Equal(t, 12, cfg.Discovery.TargetSize)
		assert.Equal(t, 2, cfg.Discovery.MaxPerCycle)
		assert.Equal(t, 5, cfg.Discovery.MaxPerLanguage)
		assert.Equal(t, []string{"en", "ja"}, cfg.Discovery.Languages)
		assert.True(t, cfg.Search.Enabled())
		assert.Equal(t, "secret", cfg.Search.APIKey)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "maintenance:\n  keywords: [go]\n"))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Listen)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "feeds.yml", cfg.Registry.Path)
		assert.Equal(t, "feeds.yml.lock", cfg.Registry.LockPath)
		assert.Empty(t, cfg.Database.DSN)
		assert.Equal(t, 168*time.Hour, cfg.Schedule.Interval)
		assert.Equal(t, 3, cfg.Maintenance.MaxFailures)
		assert.Equal(t, 8, cfg.Maintenance.MaxWorkers)
		assert.Equal(t, 15*time.Second, cfg.Probe.Timeout)
		assert.Equal(t, int64(10*1024*1024), cfg.Probe.MaxBodySize)
		assert.Equal(t, 20, cfg.Discovery.TargetSize)
		assert.Equal(t, 3, cfg.Discovery.MaxPerCycle)
		assert.Equal(t, 8, cfg.Discovery.MaxPerLanguage)
		assert.InDelta(t, 0.2, cfg.Search.Temperature, 0.001)
		assert.Equal(t, 5, cfg.Search.MaxCandidates)
		assert.False(t, cfg.Search.Enabled())
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("FEEDKEEPER_TEST_KEY", "from-env")
		cfg, err := Load(writeConfig(t, "search:\n  endpoint: http://localhost/v1\n  model: m\n  api_key: ${FEEDKEEPER_TEST_KEY}\n"))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Search.APIKey)
	})

	t.Run("model without endpoint uses default api", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "search:\n  model: gpt-4o-mini\n  api_key: k\n"))
		require.NoError(t, err)
		assert.Empty(t, cfg.Search.Endpoint)
		assert.True(t, cfg.Search.Enabled())
	})

	t.Run("file not found", func(t *testing.T) {
		cfg, err := Load("/non/existent/file.yml")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "invalid yaml content\n  with bad indentation\n    and no structure\n"))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "search:\n  endpoint: http://localhost/v1\n"))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "search.model is required")
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		setDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{name: "defaults are valid", modify: func(c *Config) {}},
		{name: "negative max failures", modify: func(c *Config) { c.Maintenance.MaxFailures = -1 }, errMsg: "max_failures"},
		{name: "negative workers", modify: func(c *Config) { c.Maintenance.MaxWorkers = -2 }, errMsg: "max_workers"},
		{name: "short probe timeout", modify: func(c *Config) { c.Probe.Timeout = time.Millisecond }, errMsg: "probe.timeout"},
		{name: "negative target", modify: func(c *Config) { c.Discovery.TargetSize = -1 }, errMsg: "discovery"},
		{name: "negative language cap", modify: func(c *Config) { c.Discovery.MaxPerLanguage = -1 }, errMsg: "max_per_language"},
		{name: "bad temperature", modify: func(c *Config) { c.Search.Temperature = 3 }, errMsg: "temperature"},
		{name: "short interval", modify: func(c *Config) { c.Schedule.Interval = time.Second }, errMsg: "schedule.interval"},
		{name: "short server timeout", modify: func(c *Config) { c.Server.Timeout = time.Millisecond }, errMsg: "server timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.modify(cfg)
			err := validate(cfg)
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_Getters(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Listen = ":9090"
	cfg.Server.Timeout = 45 * time.Second
	cfg.Search.Model = "m"

	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":9090", listen)
	assert.Equal(t, 45*time.Second, timeout)
	assert.Equal(t, "m", cfg.GetSearchConfig().Model)
}
