// Package fyers defines errors shared across the Fyers API clients.
package fyers

import "errors"

// Common errors
var (
	// ErrNotConnected is returned when attempting an operation on a disconnected client
	ErrNotConnected = errors.New("client not connected")

	// ErrAlreadyConnected is returned when attempting to connect an already connected client
	ErrAlreadyConnected = errors.New("client already connected")

	// ErrInvalidAccessToken is returned when the composite client_id:access_token is empty or malformed
	ErrInvalidAccessToken = errors.New("invalid access token")

	// ErrStaleCredentials is returned when the API rejects a request because the
	// access token has expired. Regenerating the token is the caller's concern;
	// this SDK only consumes the credential, it never manages its lifecycle.
	ErrStaleCredentials = errors.New("access token expired")

	// ErrConnectionClosed is returned when trying to use a closed connection
	ErrConnectionClosed = errors.New("connection closed")

	// ErrNotFound is returned when a symbol, expiry or instrument lookup matches nothing
	ErrNotFound = errors.New("not found")

	// ErrTimeout is returned when an operation times out
	ErrTimeout = errors.New("operation timeout")
)
