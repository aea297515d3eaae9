package service

import (
	"context"
	"fmt"
	"math"
	"net/http"

	apperrors "github.com/agbru/fibapi/internal/errors"
	"github.com/agbru/fibapi/internal/logging"
)

// Sequence query bounds and defaults.
const (
	DefaultSequenceStart = 0
	DefaultSequenceCount = 10
	MaxSequenceCount     = 100
)

// Client-facing validation messages.
const (
	MsgNegativeIndex  = "Index cannot be negative"
	MsgNegativeStart  = "Start index cannot be negative"
	MsgCountTooSmall  = "Count must be at least 1"
	MsgCountTooLarge  = "Count cannot exceed 100"
	overflowPrefix    = "Overflow: "
	unexpectedPrefix  = "Error: "
	nextMessageFormat = "Next after F(%d)"
)

// Calculator is the engine contract the service depends on.
type Calculator interface {
	Calculate(ctx context.Context, n int) (int64, error)
	Next(ctx context.Context, index int) (int64, error)
}

// FibonacciService serves the three read-only Fibonacci operations.
type FibonacciService struct {
	calc   Calculator
	logger logging.Logger
}

// New creates a FibonacciService over calc. A nil logger discards output.
func New(calc Calculator, logger logging.Logger) *FibonacciService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &FibonacciService{calc: calc, logger: logger}
}

// GetValue returns F(index).
func (s *FibonacciService) GetValue(ctx context.Context, index int) (FibonacciResponse, int) {
	if index < 0 {
		s.logger.Debug("rejected index", logging.Int("index", index))
		return ValueError(index, MsgNegativeIndex), http.StatusBadRequest
	}
	v, err := s.calc.Calculate(ctx, index)
	if err != nil {
		return ValueError(index, s.describe(err, logging.Int("index", index))), http.StatusBadRequest
	}
	return valueResponse(index, v), http.StatusOK
}

// GetNext returns F(index+1). Responses report index+1, including the
// negative-index rejection, except for math.MaxInt which has no successor and
// is reported as is.
func (s *FibonacciService) GetNext(ctx context.Context, index int) (FibonacciResponse, int) {
	reported := index + 1
	if index == math.MaxInt {
		reported = index
	}
	if index < 0 {
		s.logger.Debug("rejected index", logging.Int("index", index))
		return ValueError(reported, MsgNegativeIndex), http.StatusBadRequest
	}
	v, err := s.calc.Next(ctx, index)
	if err != nil {
		return ValueError(reported, s.describe(err, logging.Int("index", index))), http.StatusBadRequest
	}
	return FibonacciResponse{Index: reported, Value: v, Message: fmt.Sprintf(nextMessageFormat, index)}, http.StatusOK
}

// GetSequence returns count consecutive values starting at F(start).
func (s *FibonacciService) GetSequence(ctx context.Context, start, count int) (FibonacciSequenceResponse, int) {
	if msg, ok := validateSequence(start, count); !ok {
		s.logger.Debug("rejected sequence", logging.Int("start", start), logging.Int("count", count))
		return SequenceError(msg), http.StatusBadRequest
	}

	sequence := make([]int64, count)
	for i := range sequence {
		v, err := s.calc.Calculate(ctx, start+i)
		if err != nil {
			msg := s.describe(err, logging.Int("start", start), logging.Int("count", count), logging.Int("failed_at", start+i))
			return SequenceError(msg), http.StatusBadRequest
		}
		sequence[i] = v
	}
	return sequenceResponse(start, count, sequence), http.StatusOK
}

func validateSequence(start, count int) (string, bool) {
	switch {
	case start < 0:
		return MsgNegativeStart, false
	case count < 1:
		return MsgCountTooSmall, false
	case count > MaxSequenceCount:
		return MsgCountTooLarge, false
	}
	return "", true
}

// describe maps an engine error onto the client message. Only failures that
// are neither overflow, a rejected argument nor an abandoned request are
// logged at error level.
func (s *FibonacciService) describe(err error, fields ...logging.Field) string {
	switch {
	case apperrors.IsOverflow(err):
		s.logger.Debug("overflow", append(fields, logging.Err(err))...)
		return overflowPrefix + err.Error()
	case apperrors.IsInvalidArgument(err):
		s.logger.Debug("rejected argument", append(fields, logging.Err(err))...)
	case apperrors.IsContextError(err):
		s.logger.Debug("calculation abandoned", append(fields, logging.Err(err))...)
	default:
		s.logger.Error("calculation failed", err, fields...)
	}
	return unexpectedPrefix + err.Error()
}
