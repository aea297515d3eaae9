// Package config defines the server configuration and parses it from
// command-line flags with environment variable fallbacks.
package config

import (
	"flag"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/fibapi/internal/errors"
	"github.com/agbru/fibapi/internal/fibonacci"
)

// EnvPrefix is prepended to every environment variable the application reads.
const EnvPrefix = "FIBAPI_"

// Defaults applied when neither a flag nor an environment variable is set.
const (
	DefaultPort            = 8080
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Host is the interface to bind; empty means all interfaces.
	Host string
	// Port is the TCP port to listen on.
	Port int
	// CacheLimit is the highest Fibonacci index the engine memoizes.
	CacheLimit int
	// ReadTimeout bounds reading a request, headers included.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration
	// IdleTimeout bounds keep-alive idle connections.
	IdleTimeout time.Duration
	// ShutdownTimeout bounds the graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is json or console.
	LogFormat string
	// EnableCORS turns on CORS response headers.
	EnableCORS bool
	// AllowedOrigins is the CORS origin allow-list; "*" allows any origin.
	AllowedOrigins []string
}

// Addr returns the listen address in host:port form.
func (c AppConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks the configuration for semantic errors.
//
// Returns:
//   - error: An apperrors.ConfigError describing the first problem, or nil.
func (c AppConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return apperrors.NewConfigError("port %d is out of range [0, 65535]", c.Port)
	}
	timeouts := []struct {
		flag  string
		value time.Duration
	}{
		{"read-timeout", c.ReadTimeout},
		{"write-timeout", c.WriteTimeout},
		{"idle-timeout", c.IdleTimeout},
		{"shutdown-timeout", c.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if t.value < 0 {
			return apperrors.NewConfigError("--%s must not be negative (got %s)", t.flag, t.value)
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return apperrors.NewConfigError("unknown log level %q (want debug, info, warn or error)", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return apperrors.NewConfigError("unknown log format %q (want json or console)", c.LogFormat)
	}
	if c.EnableCORS && len(c.AllowedOrigins) == 0 {
		return apperrors.NewConfigError("--allowed-origins must not be empty when CORS is enabled")
	}
	return nil
}

// ParseConfig parses command-line arguments into an AppConfig, applies
// environment overrides for flags that were not set explicitly, and validates
// the result.
//
// Parameters:
//   - programName: The program name used in usage output.
//   - args: The command-line arguments, without the program name.
//   - errorWriter: The writer for usage and parse errors.
//
// Returns:
//   - AppConfig: The parsed configuration.
//   - error: flag.ErrHelp when help was requested, a parse error, or an
//     apperrors.ConfigError.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [flags]\n\nServes Fibonacci numbers over a JSON REST API.\n\nFlags:\n", programName)
		fs.PrintDefaults()
		fmt.Fprintf(errorWriter, "\nEvery flag can also be set through an environment variable named %s<FLAG>,\nfor example %sPORT=9090.\n", EnvPrefix, EnvPrefix)
	}

	config := AppConfig{}
	var origins string
	fs.StringVar(&config.Host, "host", "", "Interface to bind (empty for all interfaces).")
	fs.IntVar(&config.Port, "port", DefaultPort, "TCP port to listen on.")
	fs.IntVar(&config.CacheLimit, "cache-limit", fibonacci.DefaultCacheLimit, "Highest Fibonacci index kept in the memoization cache.")
	fs.DurationVar(&config.ReadTimeout, "read-timeout", DefaultReadTimeout, "Maximum duration for reading a request.")
	fs.DurationVar(&config.WriteTimeout, "write-timeout", DefaultWriteTimeout, "Maximum duration for writing a response.")
	fs.DurationVar(&config.IdleTimeout, "idle-timeout", DefaultIdleTimeout, "Maximum keep-alive idle time.")
	fs.DurationVar(&config.ShutdownTimeout, "shutdown-timeout", DefaultShutdownTimeout, "Grace period for in-flight requests on shutdown.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn or error.")
	fs.StringVar(&config.LogFormat, "log-format", DefaultLogFormat, "Log format: json or console.")
	fs.BoolVar(&config.EnableCORS, "cors", true, "Emit CORS headers.")
	fs.StringVar(&origins, "allowed-origins", "*", "Comma-separated CORS origin allow-list.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	config.AllowedOrigins = splitList(origins)

	applyEnvOverrides(&config, fs)

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}
	return config, nil
}

// splitList splits a comma-separated list, trimming blanks and dropping
// empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
