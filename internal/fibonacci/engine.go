package fibonacci

import (
	"context"
	"math"
	"strconv"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/agbru/fibapi/internal/errors"
)

const tracerName = "github.com/agbru/fibapi/internal/fibonacci"

// Options configures an Engine.
type Options struct {
	// CacheLimit is the highest index that gets memoized. Zero selects
	// DefaultCacheLimit; a negative value caches only the seeds F(0) and F(1).
	CacheLimit int
	// Cache overrides the backing store. Nil selects a new MemoryCache.
	Cache Cache
	// Tracer overrides the OpenTelemetry tracer. Nil selects the global
	// provider's tracer.
	Tracer trace.Tracer
}

// Stats is a snapshot of engine activity.
type Stats struct {
	// Hits counts Calculate calls answered without iterating (n <= 1 excluded).
	Hits uint64
	// Misses counts Calculate calls that had to iterate.
	Misses uint64
	// Steps counts additions performed across all computations.
	Steps uint64
	// Cached is the current number of cache entries.
	Cached int
}

// Engine computes F(n) with memoization and int64 overflow detection. It is
// safe for concurrent use; a single Engine is meant to be shared by all
// requests for the lifetime of the process.
type Engine struct {
	cache  Cache
	limit  int
	tracer trace.Tracer
	flight singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
	steps  atomic.Uint64
}

// NewEngine creates an Engine and seeds its cache with F(0) and F(1).
func NewEngine(opts Options) *Engine {
	limit := opts.CacheLimit
	switch {
	case limit == 0:
		limit = DefaultCacheLimit
	case limit < 1:
		limit = 1
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewMemoryCache()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	cache.Set(0, 0)
	cache.Set(1, 1)

	return &Engine{cache: cache, limit: limit, tracer: tracer}
}

// CacheLimit returns the highest index the engine memoizes.
func (e *Engine) CacheLimit() int { return e.limit }

// Calculate returns F(n).
//
// It fails with apperrors.InvalidArgumentError when n is negative and with
// apperrors.OverflowError when F(n) does not fit in an int64. Nothing is
// cached for the step that overflowed or any step after it. A cache miss on a
// cancelled ctx fails with an apperrors.CalculationError wrapping ctx.Err().
func (e *Engine) Calculate(ctx context.Context, n int) (int64, error) {
	if n < 0 {
		return 0, apperrors.NewInvalidArgument("index", "Index cannot be negative")
	}
	if n <= 1 {
		return int64(n), nil
	}
	if v, ok := e.cache.Get(n); ok {
		e.hits.Add(1)
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, apperrors.CalculationError{Cause: err}
	}
	e.misses.Add(1)

	// Concurrent requests for the same index share one computation.
	v, err, _ := e.flight.Do(strconv.Itoa(n), func() (any, error) {
		return e.compute(ctx, n)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// Next returns F(index+1), the number following F(index).
func (e *Engine) Next(ctx context.Context, index int) (int64, error) {
	if index < 0 {
		return 0, apperrors.NewInvalidArgument("index", "Index cannot be negative")
	}
	if index == math.MaxInt {
		return 0, apperrors.OverflowError{Index: index}
	}
	return e.Calculate(ctx, index+1)
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Hits:   e.hits.Load(),
		Misses: e.misses.Load(),
		Steps:  e.steps.Load(),
		Cached: e.cache.Len(),
	}
}

// compute iterates from the nearest cached pair up to n.
func (e *Engine) compute(ctx context.Context, n int) (int64, error) {
	_, span := e.tracer.Start(ctx, "fibonacci.calculate",
		trace.WithAttributes(attribute.Int("fibonacci.index", n)))
	defer span.End()

	k, current, prev, ok := e.cache.Floor(n)
	if !ok {
		k, current, prev = 1, 1, 0
	}
	span.SetAttributes(attribute.Int("fibonacci.resume_from", k))

	var steps uint64
	defer func() {
		e.steps.Add(steps)
		span.SetAttributes(attribute.Int64("fibonacci.steps", int64(steps)))
	}()

	for i := k + 1; i <= n; i++ {
		next := prev + current
		steps++
		if next < current {
			err := apperrors.OverflowError{Index: i}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, err
		}
		prev, current = current, next
		if i <= e.limit {
			e.cache.Set(i, current)
		}
	}
	return current, nil
}
