// Package dto holds the JSON envelopes of the ops HTTP surface.
package dto

// CodeNotReady marks a readiness probe that found a dependency down
const CodeNotReady = "NOT_READY"

// Response wraps every ops endpoint body. On failure Data may still carry
// the probe detail so operators can see which dependency failed.
type Response[T any] struct {
	Success bool       `json:"success"`
	Data    T          `json:"data"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failure
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OK wraps data in a successful response
func OK[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

// Fail builds a failed response that still reports data
func Fail[T any](code, message string, data T) Response[T] {
	return Response[T]{
		Data:  data,
		Error: &ErrorInfo{Code: code, Message: message},
	}
}
