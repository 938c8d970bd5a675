package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDIS_PASS", "hunter2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "render-1", cfg.WorkerID)
	assert.Equal(t, "render.work", cfg.StreamKey)
	assert.Equal(t, "render-workers", cfg.ConsumerGroup)
	assert.Equal(t, "render.done", cfg.ResultStream)
	assert.Equal(t, "render.done.errors", cfg.ErrorStream())
	assert.Equal(t, "render.events", cfg.EventStream)
	assert.Equal(t, time.Second, cfg.BlockTime)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5*time.Minute, cfg.DataCacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)

	assert.NotContains(t, cfg.String(), "hunter2")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("WORKER_ID", "render-7")
	t.Setenv("STREAM_KEY", "pages.work")
	t.Setenv("DATA_CACHE_TTL", "0s")
	t.Setenv("TEMPLATE_DIR", "/srv/templates")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "render-7", cfg.WorkerID)
	assert.Equal(t, "pages.work", cfg.StreamKey)
	assert.Zero(t, cfg.DataCacheTTL)
	assert.Equal(t, "/srv/templates", cfg.TemplateDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("BLOCK_TIME", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		return &Config{
			WorkerID:      "w",
			RedisAddr:     "localhost:6379",
			StreamKey:     "render.work",
			ConsumerGroup: "g",
			ResultStream:  "render.done",
			EventStream:   "render.events",
			BlockTime:     time.Second,
			HTTPTimeout:   time.Second,
			HealthPort:    8083,
			LogLevel:      "info",
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"worker id", func(c *Config) { c.WorkerID = "" }, "WORKER_ID"},
		{"redis addr", func(c *Config) { c.RedisAddr = "" }, "REDIS_ADDR"},
		{"event stream", func(c *Config) { c.EventStream = "" }, "EVENT_STREAM"},
		{"result loops back", func(c *Config) { c.ResultStream = c.StreamKey }, "must differ"},
		{"block time", func(c *Config) { c.BlockTime = 0 }, "BLOCK_TIME"},
		{"retries", func(c *Config) { c.MaxRetries = -1 }, "MAX_RETRIES"},
		{"http timeout", func(c *Config) { c.HTTPTimeout = 0 }, "HTTP_TIMEOUT"},
		{"cache ttl", func(c *Config) { c.DataCacheTTL = -time.Second }, "DATA_CACHE_TTL"},
		{"relative template dir", func(c *Config) { c.TemplateDir = "templates" }, "TEMPLATE_DIR"},
		{"health port", func(c *Config) { c.HealthPort = 70000 }, "HEALTH_PORT"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
