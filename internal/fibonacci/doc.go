// Package fibonacci computes Fibonacci numbers in signed 64-bit arithmetic.
//
// The Engine memoizes every value it computes (up to a configurable index
// limit) in an injectable Cache and resumes iteration from the largest cached
// index not exceeding the request, so repeated and overlapping queries cost
// at most the distance to the nearest cached value. Results that would not fit
// in an int64 are reported as apperrors.OverflowError instead of wrapping.
package fibonacci
