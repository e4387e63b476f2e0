package source

import "errors"

// Fault classes for data source operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrConnectionRefused indicates the server actively refused the connection.
	ErrConnectionRefused = errors.New("source: connection refused")

	// ErrTimeout indicates a connect or read attempt timed out.
	ErrTimeout = errors.New("source: operation timed out")

	// ErrProtocol indicates a protocol-level fault on an established connection.
	ErrProtocol = errors.New("source: protocol error")

	// ErrNotFound indicates a node id could not be resolved on this server.
	ErrNotFound = errors.New("source: node not found")

	// ErrRead indicates a resolved handle failed to produce a value.
	ErrRead = errors.New("source: read failed")
)
