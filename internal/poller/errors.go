package poller

import "errors"

// Domain-specific errors for lifecycle operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrEmptyEndpoint is returned by Start when the endpoint is blank.
	ErrEmptyEndpoint = errors.New("poller: endpoint cannot be empty")

	// ErrInvalidInterval is returned by Start when the interval is not positive.
	ErrInvalidInterval = errors.New("poller: interval must be positive")

	// ErrAlreadyRunning is returned by Start while a previous run is active.
	ErrAlreadyRunning = errors.New("poller: a run is already active")
)
