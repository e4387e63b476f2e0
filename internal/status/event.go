package status

import "time"

// Severity classifies an event for the presentation layer.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event is one status report from the poller: when it happened, how bad
// it is, and a human-readable message.
type Event struct {
	Time     time.Time `json:"time"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// Reporter is the interface the poll loop reports through.
//
// Implementations must be safe to call from the worker goroutine and must
// never block it.
type Reporter interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// Sink consumes dispatched events. Sinks are invoked sequentially from
// the bus's dispatch goroutine, never from the worker.
type Sink interface {
	Emit(ev Event)
}

// NopReporter discards all events. Useful in tests and as a default.
type NopReporter struct{}

func (NopReporter) Info(string)  {}
func (NopReporter) Warn(string)  {}
func (NopReporter) Error(string) {}
