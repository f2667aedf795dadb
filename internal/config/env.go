// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/plantline/plantline/internal/log"
	"github.com/rs/zerolog"
)

func envLogger() *zerolog.Logger {
	l := log.WithComponent("config")
	return &l
}

// ParseString reads key from the environment, falling back to defaultValue
// when unset or empty. Values of sensitive keys are never logged.
func ParseString(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	lower := strings.ToLower(key)
	if strings.Contains(lower, "token") || strings.Contains(lower, "password") {
		envLogger().Debug().Str("key", key).Bool("sensitive", true).Msg("using environment variable")
	} else {
		envLogger().Debug().Str("key", key).Str("value", value).Msg("using environment variable")
	}
	return value
}

// ParseInt reads an integer, falling back to defaultValue on absence or a
// parse failure. Parse failures are warned, not fatal.
func ParseInt(key string, defaultValue int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		envLogger().Warn().Str("key", key).Str("value", v).Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	return i
}

// ParseBool reads a boolean in strconv.ParseBool syntax.
func ParseBool(key string, defaultValue bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		envLogger().Warn().Str("key", key).Str("value", v).Bool("default", defaultValue).
			Msg("invalid boolean in environment variable, using default")
		return defaultValue
	}
	return b
}

// ParseFloat reads a float64.
func ParseFloat(key string, defaultValue float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		envLogger().Warn().Str("key", key).Str("value", v).Float64("default", defaultValue).
			Msg("invalid float in environment variable, using default")
		return defaultValue
	}
	return f
}

// ParseDuration reads a Go duration string such as "5s".
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		envLogger().Warn().Str("key", key).Str("value", v).Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	return d
}

// applyEnv overlays PLANTLINE_* variables onto cfg.
func applyEnv(cfg Config) Config {
	cfg.Listen = ParseString("PLANTLINE_LISTEN", cfg.Listen)
	cfg.DataDir = ParseString("PLANTLINE_DATA_DIR", cfg.DataDir)
	cfg.LogLevel = ParseString("PLANTLINE_LOG_LEVEL", cfg.LogLevel)
	cfg.APIToken = ParseString("PLANTLINE_API_TOKEN", cfg.APIToken)
	cfg.RateLimit = ParseInt("PLANTLINE_RATE_LIMIT", cfg.RateLimit)

	cfg.Board.CacheBackend = ParseString("PLANTLINE_BOARD_CACHE", cfg.Board.CacheBackend)
	cfg.Board.CacheTTL = ParseDuration("PLANTLINE_BOARD_CACHE_TTL", cfg.Board.CacheTTL)

	cfg.Redis.Addr = ParseString("PLANTLINE_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = ParseString("PLANTLINE_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = ParseInt("PLANTLINE_REDIS_DB", cfg.Redis.DB)

	cfg.OTel.Enabled = ParseBool("PLANTLINE_OTEL_ENABLED", cfg.OTel.Enabled)
	cfg.OTel.Endpoint = ParseString("PLANTLINE_OTEL_ENDPOINT", cfg.OTel.Endpoint)
	cfg.OTel.SamplingRate = ParseFloat("PLANTLINE_OTEL_SAMPLING_RATE", cfg.OTel.SamplingRate)
	return cfg
}
