// Package errorspkg provides common app errors.
package errorspkg

import "errors"

var (
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
	// ErrUnknownOperation indicates a request for an operation the server does not provide.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrMethodNotAllowed indicates a known operation called with the wrong method.
	ErrMethodNotAllowed = errors.New("method not allowed")
)
