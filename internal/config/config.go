// SPDX-License-Identifier: MIT

// Package config loads daemon configuration from defaults, an optional YAML
// file, and PLANTLINE_* environment overrides, in that order. A config that
// fails validation is never applied.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the full daemon configuration.
type Config struct {
	Listen   string `yaml:"listen"`
	DataDir  string `yaml:"dataDir"`
	LogLevel string `yaml:"logLevel"`

	// APIToken guards mutating endpoints. Empty disables token auth; the
	// daemon logs a prominent warning in that case.
	APIToken string `yaml:"apiToken"`

	// RateLimit is requests per minute per client IP on the API.
	RateLimit int `yaml:"rateLimit"`

	Board BoardConfig `yaml:"board"`
	Redis RedisConfig `yaml:"redis"`
	OTel  OTelConfig  `yaml:"otel"`
}

// BoardConfig tunes the queue board projection.
type BoardConfig struct {
	// CacheBackend is "memory", "redis" or "none".
	CacheBackend string        `yaml:"cacheBackend"`
	CacheTTL     time.Duration `yaml:"cacheTTL"`
}

// RedisConfig is used when the board cache backend is "redis".
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// OTelConfig controls trace export.
type OTelConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:    ":8080",
		DataDir:   "./data",
		LogLevel:  "info",
		RateLimit: 120,
		Board: BoardConfig{
			CacheBackend: "memory",
			CacheTTL:     5 * time.Second,
		},
		OTel: OTelConfig{
			Endpoint:     "localhost:4318",
			SamplingRate: 1.0,
		},
	}
}

// DBPath returns the SQLite file path, or "" when DataDir is empty and the
// in-memory store should be used.
func (c Config) DBPath() string {
	if c.DataDir == "" {
		return ""
	}
	return c.DataDir + "/plantline.db"
}

// Validate rejects configurations the daemon cannot run with.
func Validate(c Config) error {
	if c.Listen == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config: rate limit must not be negative")
	}
	switch c.Board.CacheBackend {
	case "memory", "none":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis cache backend requires redis.addr")
		}
	default:
		return fmt.Errorf("config: unknown board cache backend %q", c.Board.CacheBackend)
	}
	if c.Board.CacheTTL < 0 {
		return fmt.Errorf("config: board cache ttl must not be negative")
	}
	if c.OTel.Enabled && c.OTel.Endpoint == "" {
		return fmt.Errorf("config: otel requires an endpoint when enabled")
	}
	if c.OTel.SamplingRate < 0 || c.OTel.SamplingRate > 1 {
		return fmt.Errorf("config: otel sampling rate must be within [0,1]")
	}
	return nil
}
