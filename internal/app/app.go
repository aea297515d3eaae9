// Package app wires configuration, logging, the Fibonacci engine, the service
// and the HTTP server into a runnable application.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/agbru/fibapi/internal/config"
	apperrors "github.com/agbru/fibapi/internal/errors"
	"github.com/agbru/fibapi/internal/fibonacci"
	"github.com/agbru/fibapi/internal/logging"
	"github.com/agbru/fibapi/internal/server"
	"github.com/agbru/fibapi/internal/service"
)

// Application represents the fibapi application instance.
type Application struct {
	Config    config.AppConfig
	Cache     fibonacci.Cache
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithCache sets the engine's backing cache. The default is an in-memory map.
func WithCache(c fibonacci.Cache) AppOption {
	return func(a *Application) { a.Cache = c }
}

// New creates a new Application instance by parsing command-line arguments.
// args includes the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "fibapi"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run serves the API until ctx is cancelled or SIGINT/SIGTERM arrives, and
// returns the process exit code. Logs go to out.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	logger, err := logging.NewConfiguredLogger(out, "fibapi", logging.Options{
		Level:  a.Config.LogLevel,
		Format: a.Config.LogFormat,
	})
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	engine := fibonacci.NewEngine(fibonacci.Options{
		CacheLimit: a.Config.CacheLimit,
		Cache:      a.Cache,
	})
	svc := service.New(engine, logger.With(logging.String("layer", "service")))
	srv := server.New(server.Config{
		Addr:            a.Config.Addr(),
		ReadTimeout:     a.Config.ReadTimeout,
		WriteTimeout:    a.Config.WriteTimeout,
		IdleTimeout:     a.Config.IdleTimeout,
		ShutdownTimeout: a.Config.ShutdownTimeout,
		Security: server.SecurityConfig{
			EnableCORS:     a.Config.EnableCORS,
			AllowedOrigins: a.Config.AllowedOrigins,
			AllowedMethods: server.DefaultSecurityConfig().AllowedMethods,
		},
		Version: Version,
	}, svc, engine, logger)

	logger.Info("starting fibapi",
		logging.String("version", Version),
		logging.String("addr", a.Config.Addr()),
		logging.Int("cache_limit", engine.CacheLimit()),
		logging.String("log_level", a.Config.LogLevel))

	if err := srv.Start(ctx); err != nil {
		logger.Error("server failed", err)
		return exitCodeFor(err)
	}
	return apperrors.ExitSuccess
}

// exitCodeFor maps a server error to a process exit code.
func exitCodeFor(err error) int {
	var timeoutErr apperrors.TimeoutError
	switch {
	case err == nil:
		return apperrors.ExitSuccess
	case errors.As(err, &timeoutErr):
		return apperrors.ExitErrorTimeout
	case apperrors.IsContextError(err):
		return apperrors.ExitErrorCanceled
	}
	return apperrors.ExitErrorGeneric
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
