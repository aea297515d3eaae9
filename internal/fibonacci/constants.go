package fibonacci

// ─────────────────────────────────────────────────────────────────────────────
// Engine Limits
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultCacheLimit is the highest index whose value is memoized when the
	// caller does not choose a limit. Values above it are still computed, only
	// not stored.
	DefaultCacheLimit = 1000

	// MaxIndex is the largest index whose Fibonacci number fits in an int64.
	// F(93) = 12200160415121876738 exceeds math.MaxInt64.
	MaxIndex = 92

	// MaxValue is F(MaxIndex), the largest representable Fibonacci number.
	MaxValue int64 = 7540113804746346429
)
