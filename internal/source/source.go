package source

import "context"

// Client establishes connections to a data source server.
//
// Connect is fallible and may block up to the deadline carried by ctx;
// implementations classify failures as ErrConnectionRefused, ErrTimeout,
// or ErrProtocol.
type Client interface {
	Connect(ctx context.Context, endpoint string) (Connection, error)
}

// Connection is an established session with a data source server.
//
// Close must be safe to call on every exit path, including after a
// protocol fault; callers defer it immediately after a successful Connect.
type Connection interface {
	// Resolve maps a node identifier to a readable handle.
	// Fails with ErrNotFound or ErrProtocol.
	Resolve(nodeID string) (Handle, error)

	// Close terminates the session. Idempotent.
	Close() error
}

// Handle is a resolved, directly readable reference to a single tag
// within a specific connection. Handles do not outlive their connection.
type Handle interface {
	// Read returns the tag's current value.
	// Fails with ErrRead (per-tag, non-fatal) or ErrProtocol (connection-tier).
	Read(ctx context.Context) (any, error)

	// NodeID returns the node identifier this handle was resolved from,
	// for log messages.
	NodeID() string
}
