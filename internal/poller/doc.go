// Package poller contains the sampling worker and its lifecycle controller.
//
// The Controller owns exactly one background worker at a time. Start
// validates its arguments synchronously, launches the worker, and returns;
// RequestStop closes the run's stop channel; Join waits for the worker
// with a bounded timeout. The stop channel is the only state shared
// between controller and worker — the worker observes it at every wait
// point and exits promptly.
//
// The worker runs an outer connect/sample/backoff state machine: connect
// to the endpoint (bounded by a timeout), resolve every catalog entry to
// a read handle once per connection, then sample on the configured
// interval until stop or a connection-tier fault. Faults never escape the
// worker; they are classified, reported, and answered with a fixed
// reconnect delay. Per-tag read failures degrade that tag to an absent
// value for the row and the batch continues.
package poller
