package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fibapi/internal/errors"
	"github.com/agbru/fibapi/internal/logging"
	appmetrics "github.com/agbru/fibapi/internal/metrics"
)

// healthSnapshotMaxAge bounds how often /health reads runtime statistics.
const healthSnapshotMaxAge = time.Second

// Config holds the HTTP server settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Security        SecurityConfig
	// Version is reported by /health and the startup log.
	Version string
}

// Server serves the Fibonacci API.
type Server struct {
	cfg       Config
	api       FibonacciAPI
	engine    EngineStats
	logger    logging.Logger
	metrics   *Metrics
	runtime   *appmetrics.RuntimeCollector
	handler   http.Handler
	startTime time.Time
}

// New creates a server for api. engine may be nil, in which case cache
// statistics are omitted from /health and /metrics. A nil logger discards
// output.
func New(cfg Config, api FibonacciAPI, engine EngineStats, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop{}
	}
	s := &Server{
		cfg:       cfg,
		api:       api,
		engine:    engine,
		logger:    logger,
		metrics:   NewMetrics(),
		runtime:   appmetrics.NewRuntimeCollector(healthSnapshotMaxAge),
		startTime: time.Now(),
	}
	if engine != nil {
		s.metrics.RegisterEngine(engine)
	}
	s.handler = s.routes()
	return s
}

// routes builds the mux and the middleware chain.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.metricsMiddleware(s.loggingMiddleware(h)))
	}
	handle("GET /api/fibonacci/sequence", s.handleSequence)
	handle("GET /api/fibonacci/next/{index}", s.handleNext)
	handle("GET /api/fibonacci/{index}", s.handleValue)
	handle("GET /health", s.handleHealth)
	handle("GET /openapi.yaml", s.handleOpenAPI)
	handle("/metrics", s.handleMetrics)

	return s.recoverMiddleware(requestIDMiddleware(SecurityMiddleware(s.cfg.Security, mux.ServeHTTP)))
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return apperrors.WrapError(err, "failed to listen on %s", s.cfg.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within ShutdownTimeout. It returns nil after a clean shutdown,
// a TimeoutError when in-flight requests outlive the grace period, or the
// listener's error.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fields := []logging.Field{
			logging.String("addr", ln.Addr().String()),
			logging.String("version", s.cfg.Version),
		}
		if s.engine != nil {
			fields = append(fields, logging.Int("cache_limit", s.engine.CacheLimit()))
		}
		s.logger.Info("server listening", fields...)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return apperrors.WrapError(err, "serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down", logging.Duration("grace_period", s.cfg.ShutdownTimeout))

		shutdownCtx := context.WithoutCancel(ctx)
		if s.cfg.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.cfg.ShutdownTimeout)
			defer cancel()
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return apperrors.TimeoutError{Operation: "shutdown", Limit: s.cfg.ShutdownTimeout}
			}
			return apperrors.WrapError(err, "shutdown")
		}
		s.logger.Info("server stopped", logging.Duration("uptime", time.Since(s.startTime)))
		return nil
	})
	return g.Wait()
}
