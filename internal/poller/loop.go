package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/catalog"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/infrastructure/logging"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/samplelog"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/source"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/status"
)

// Appender receives completed sample rows. samplelog.Writer satisfies it.
type Appender interface {
	Append(row samplelog.Row) error
}

// Mirror optionally receives successful readings alongside the CSV path.
// The InfluxDB client satisfies it. Mirror writes must never block.
type Mirror interface {
	WriteSample(tag string, nodeID string, value any, timestamp time.Time)
}

// loop is the worker's state for one run. It is created by the controller
// per Start and touched only by the worker goroutine.
type loop struct {
	client   source.Client
	catalog  catalog.Catalog
	writer   Appender
	loc      *time.Location
	mirror   Mirror
	reporter status.Reporter
	logger   *logging.Logger

	endpoint       string
	interval       time.Duration
	reconnectDelay time.Duration
	connectTimeout time.Duration

	// rowsWritten and lastFault are read by the controller only after the
	// worker has exited.
	rowsWritten int64
	lastFault   string
}

// run is the outer state machine: stop check, connect, sample until fault
// or stop, backoff, retry. It returns only on a voluntary stop; faults
// are absorbed here.
func (l *loop) run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		conn, err := l.connect(stop)
		if err != nil {
			if stopRequested(stop) {
				return
			}
			l.reportFault("connect", err)
			if !l.wait(stop, l.reconnectDelay) {
				return
			}
			continue
		}

		l.reporter.Info(fmt.Sprintf("connected to %s", l.endpoint))

		err = l.sample(conn, stop)
		if closeErr := conn.Close(); closeErr != nil {
			l.logger.Warn("closing connection", "error", closeErr)
		}
		if err == nil {
			// Voluntary stop: no backoff.
			return
		}

		l.reportFault("sampling", err)
		if !l.wait(stop, l.reconnectDelay) {
			return
		}
	}
}

// connect attempts one connection, bounded by the connect timeout and
// interruptible by stop.
func (l *loop) connect(stop <-chan struct{}) (source.Connection, error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.connectTimeout)
	defer cancel()

	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	conn, err := l.client.Connect(ctx, l.endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", l.endpoint, err)
	}
	return conn, nil
}

// sample resolves handles once for this connection, then appends one row
// per interval until stop or a connection-tier fault.
//
// Returns:
//   - error: nil on voluntary stop, otherwise the fault that ended the
//     connection
func (l *loop) sample(conn source.Connection, stop <-chan struct{}) error {
	entries := l.catalog.Entries()
	handles := l.resolveHandles(conn, entries)

	for {
		now := time.Now()
		row := samplelog.Row{
			LocalTime: now.In(l.loc),
			EpochUTC:  now.Unix(),
			Values:    make([]any, len(entries)),
		}

		for i, h := range handles {
			if h == nil {
				// Unresolved since connect; stays absent until reconnect.
				continue
			}

			value, err := h.Read(context.Background())
			if err != nil {
				if errors.Is(err, source.ErrProtocol) || errors.Is(err, source.ErrTimeout) {
					return fmt.Errorf("reading %s: %w", h.NodeID(), err)
				}
				l.logger.Warn("tag read failed",
					"tag", entries[i].Name,
					"node_id", h.NodeID(),
					"error", err,
				)
				l.reporter.Warn(fmt.Sprintf("read failed for tag %s", entries[i].Name))
				continue
			}

			row.Values[i] = value
			if l.mirror != nil {
				l.mirror.WriteSample(entries[i].Name, entries[i].NodeID, value, now)
			}
		}

		if err := l.writer.Append(row); err != nil {
			return fmt.Errorf("appending row: %w", err)
		}
		l.rowsWritten++

		if !l.wait(stop, l.interval) {
			return nil
		}
	}
}

// resolveHandles maps every catalog entry to a handle. Resolution failure
// is per-tag and non-fatal: the slot stays nil and the tag reads as
// absent until the next connection.
func (l *loop) resolveHandles(conn source.Connection, entries []catalog.Entry) []source.Handle {
	handles := make([]source.Handle, len(entries))
	for i, entry := range entries {
		h, err := conn.Resolve(entry.NodeID)
		if err != nil {
			l.logger.Warn("node resolution failed",
				"tag", entry.Name,
				"node_id", entry.NodeID,
				"error", err,
			)
			l.reporter.Warn(fmt.Sprintf("tag %s (%s) unavailable on this connection", entry.Name, entry.NodeID))
			continue
		}
		handles[i] = h
	}
	return handles
}

// reportFault classifies a connection-tier fault and reports it at error
// severity, recording it as the run's last fault.
func (l *loop) reportFault(op string, err error) {
	l.lastFault = err.Error()

	var kind string
	switch {
	case errors.Is(err, source.ErrConnectionRefused):
		kind = "connection refused"
	case errors.Is(err, source.ErrTimeout):
		kind = "timeout"
	case errors.Is(err, source.ErrProtocol):
		kind = "protocol error"
	default:
		kind = "fault"
	}

	l.logger.Error("connection-tier fault",
		"op", op,
		"kind", kind,
		"endpoint", l.endpoint,
		"error", err,
	)
	l.reporter.Error(fmt.Sprintf("%s %s: %v (retrying in %s)", op, kind, err, l.reconnectDelay))
}

// wait sleeps for d, interruptible by stop. Returns false if stop was
// requested during the wait.
func (l *loop) wait(stop <-chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-stop:
		return false
	case <-timer.C:
		return true
	}
}

// stopRequested reports whether stop has been closed, without blocking.
func stopRequested(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
