package service

import "fmt"

// FibonacciResponse is the body returned for single-value queries.
type FibonacciResponse struct {
	Index   int    `json:"index"`
	Value   int64  `json:"value"`
	Message string `json:"message"`
}

// FibonacciSequenceResponse is the body returned for sequence queries. On
// failure Start and Count are -1, Sequence is empty and Error is set; on
// success Error is nil and encodes as JSON null.
type FibonacciSequenceResponse struct {
	Start    int     `json:"start"`
	Count    int     `json:"count"`
	Sequence []int64 `json:"sequence"`
	Error    *string `json:"error"`
}

func valueResponse(index int, value int64) FibonacciResponse {
	return FibonacciResponse{Index: index, Value: value, Message: fmt.Sprintf("F(%d)", index)}
}

func sequenceResponse(start, count int, sequence []int64) FibonacciSequenceResponse {
	return FibonacciSequenceResponse{Start: start, Count: count, Sequence: sequence}
}

// SequenceError builds the failure shape of a sequence response.
func SequenceError(message string) FibonacciSequenceResponse {
	return FibonacciSequenceResponse{Start: -1, Count: -1, Sequence: []int64{}, Error: &message}
}

// ValueError builds the failure shape of a single-value response.
func ValueError(index int, message string) FibonacciResponse {
	return FibonacciResponse{Index: index, Value: -1, Message: message}
}
