// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty listen", func(c *Config) { c.Listen = "" }, "listen address"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log level"},
		{"negative rate limit", func(c *Config) { c.RateLimit = -1 }, "rate limit"},
		{"unknown cache backend", func(c *Config) { c.Board.CacheBackend = "memcached" }, "cache backend"},
		{"redis without addr", func(c *Config) { c.Board.CacheBackend = "redis" }, "redis.addr"},
		{"otel without endpoint", func(c *Config) { c.OTel.Enabled = true; c.OTel.Endpoint = "" }, "endpoint"},
		{"sampling out of range", func(c *Config) { c.OTel.SamplingRate = 1.5 }, "sampling rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plantline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"listen: \":9000\"\nlogLevel: debug\nboard:\n  cacheTTL: 10s\n",
	), 0o600))

	t.Setenv("PLANTLINE_LISTEN", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Listen, "environment wins over file")
	assert.Equal(t, "debug", cfg.LogLevel, "file wins over default")
	assert.Equal(t, 10*time.Second, cfg.Board.CacheTTL)
	assert.Equal(t, 120, cfg.RateLimit, "untouched keys keep defaults")
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plantline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listne: \":9000\"\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_InvalidResultRejected(t *testing.T) {
	t.Setenv("PLANTLINE_LOG_LEVEL", "shouty")
	_, err := Load("")
	require.Error(t, err)
}

func TestDBPath(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/var/lib/plantline"
	assert.Equal(t, "/var/lib/plantline/plantline.db", cfg.DBPath())

	cfg.DataDir = ""
	assert.Empty(t, cfg.DBPath())
}
