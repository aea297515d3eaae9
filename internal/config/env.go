// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the FIBAPI_ prefix) to the CLI flag
// name it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flag   string
	apply  func(*AppConfig, string)
}

// envOverrides is the declarative table of all environment variable overrides.
// Unparseable values are ignored and the flag default stays in effect.
var envOverrides = []envOverride{
	// Numeric overrides
	{"PORT", "port", func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Port = parsed
		}
	}},
	{"CACHE_LIMIT", "cache-limit", func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.CacheLimit = parsed
		}
	}},

	// Duration overrides
	{"READ_TIMEOUT", "read-timeout", durationOverride(func(c *AppConfig) *time.Duration { return &c.ReadTimeout })},
	{"WRITE_TIMEOUT", "write-timeout", durationOverride(func(c *AppConfig) *time.Duration { return &c.WriteTimeout })},
	{"IDLE_TIMEOUT", "idle-timeout", durationOverride(func(c *AppConfig) *time.Duration { return &c.IdleTimeout })},
	{"SHUTDOWN_TIMEOUT", "shutdown-timeout", durationOverride(func(c *AppConfig) *time.Duration { return &c.ShutdownTimeout })},

	// String overrides
	{"HOST", "host", func(c *AppConfig, v string) {
		c.Host = v
	}},
	{"LOG_LEVEL", "log-level", func(c *AppConfig, v string) {
		c.LogLevel = v
	}},
	{"LOG_FORMAT", "log-format", func(c *AppConfig, v string) {
		c.LogFormat = v
	}},
	{"ALLOWED_ORIGINS", "allowed-origins", func(c *AppConfig, v string) {
		c.AllowedOrigins = splitList(v)
	}},

	// Boolean overrides
	{"CORS", "cors", func(c *AppConfig, v string) {
		c.EnableCORS = parseBoolEnv(v, c.EnableCORS)
	}},
}

func durationOverride(field func(*AppConfig) *time.Duration) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			*field(c) = parsed
		}
	}
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
//
// Supported environment variables (all prefixed with FIBAPI_):
//   - HOST, PORT, CACHE_LIMIT, READ_TIMEOUT, WRITE_TIMEOUT, IDLE_TIMEOUT,
//     SHUTDOWN_TIMEOUT, LOG_LEVEL, LOG_FORMAT, CORS, ALLOWED_ORIGINS
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSet(fs, o.flag) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}
