package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/catalog"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/infrastructure/logging"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/source"
	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/status"
)

// Default worker timings, matching the logger's standard configuration.
const (
	defaultReconnectDelay = 10 * time.Second
	defaultConnectTimeout = 10 * time.Second
)

// RunRecorder persists run boundaries. The journal satisfies it.
type RunRecorder interface {
	RecordStart(ctx context.Context, endpoint string, interval time.Duration) (int64, error)
	RecordFinish(ctx context.Context, id int64, rowsWritten int64, lastError string) error
}

// Config assembles a Controller's collaborators.
type Config struct {
	// Client establishes source connections. Required.
	Client source.Client

	// Catalog is the ordered tag catalog. Required, non-empty.
	Catalog catalog.Catalog

	// Writer receives completed rows. Required.
	Writer Appender

	// Location is the zone for row timestamps. Required.
	Location *time.Location

	// ReconnectDelay is the fixed backoff after a connection-tier fault.
	// Defaults to 10s.
	ReconnectDelay time.Duration

	// ConnectTimeout bounds each connection attempt. Defaults to 10s.
	ConnectTimeout time.Duration

	// Status receives run events. Optional; defaults to a no-op reporter.
	Status status.Reporter

	// Logger is the structured logger. Optional; defaults to logging.Default().
	Logger *logging.Logger

	// Mirror optionally receives successful readings. Optional.
	Mirror Mirror

	// Recorder optionally persists run boundaries. Optional.
	Recorder RunRecorder

	// OnReset is invoked exactly once per run when the worker has fully
	// exited, on every exit path. Optional.
	OnReset func()
}

// Controller owns the worker goroutine's lifecycle.
//
// At most one run is active at a time. Start launches a run, RequestStop
// asks it to end, Join waits for it with a bounded timeout.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Controller struct {
	cfg Config

	mu       sync.Mutex
	running  bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce *sync.Once
}

// New creates a controller after validating required collaborators.
//
// Parameters:
//   - cfg: Controller configuration; Client, Catalog, Writer, and
//     Location are required
//
// Returns:
//   - *Controller: Idle controller, ready for Start
//   - error: If a required collaborator is missing
func New(cfg Config) (*Controller, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("poller: source client is required")
	}
	if cfg.Catalog.Len() == 0 {
		return nil, fmt.Errorf("poller: a non-empty catalog is required")
	}
	if cfg.Writer == nil {
		return nil, fmt.Errorf("poller: writer is required")
	}
	if cfg.Location == nil {
		return nil, fmt.Errorf("poller: location is required")
	}

	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.Status == nil {
		cfg.Status = status.NopReporter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	return &Controller{cfg: cfg}, nil
}

// Start validates the run parameters and launches the worker goroutine.
//
// Validation is synchronous: a rejected Start spawns nothing and leaves
// the controller idle.
//
// Parameters:
//   - endpoint: Source endpoint URL, must be non-empty
//   - interval: Sampling interval, must be positive
//
// Returns:
//   - error: ErrEmptyEndpoint, ErrInvalidInterval, or ErrAlreadyRunning
func (c *Controller) Start(endpoint string, interval time.Duration) error {
	if endpoint == "" {
		return ErrEmptyEndpoint
	}
	if interval <= 0 {
		return ErrInvalidInterval
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ErrAlreadyRunning
	}

	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.stopOnce = &sync.Once{}

	go c.runWorker(endpoint, interval, c.stop, c.done)

	return nil
}

// RequestStop asks the active run to end. Idempotent; a no-op when no
// run is active. Returns without waiting — pair with Join.
func (c *Controller) RequestStop() {
	c.mu.Lock()
	stop, once := c.stop, c.stopOnce
	c.mu.Unlock()

	if stop == nil {
		return
	}
	once.Do(func() {
		close(stop)
	})
}

// Join waits for the worker to exit, up to timeout.
//
// Parameters:
//   - timeout: Maximum time to wait
//
// Returns:
//   - bool: true if the worker exited in time; false on timeout, in
//     which case the worker may still finish later
func (c *Controller) Join(timeout time.Duration) bool {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		c.cfg.Logger.Warn("worker did not exit within join timeout", "timeout", timeout)
		return false
	}
}

// IsRunning reports whether a run is currently active.
func (c *Controller) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// runWorker hosts one run: journal start, poll loop, journal finish.
// The reset callback fires exactly once on every exit path.
func (c *Controller) runWorker(endpoint string, interval time.Duration, stop, done chan struct{}) {
	var resetOnce sync.Once
	reset := func() {
		resetOnce.Do(func() {
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()

			if c.cfg.OnReset != nil {
				c.cfg.OnReset()
			}
		})
	}

	defer close(done)
	defer reset()

	var runID int64
	if c.cfg.Recorder != nil {
		id, err := c.cfg.Recorder.RecordStart(context.Background(), endpoint, interval)
		if err != nil {
			c.cfg.Logger.Warn("recording run start failed", "error", err)
		} else {
			runID = id
		}
	}

	l := &loop{
		client:         c.cfg.Client,
		catalog:        c.cfg.Catalog,
		writer:         c.cfg.Writer,
		loc:            c.cfg.Location,
		mirror:         c.cfg.Mirror,
		reporter:       c.cfg.Status,
		logger:         c.cfg.Logger,
		endpoint:       endpoint,
		interval:       interval,
		reconnectDelay: c.cfg.ReconnectDelay,
		connectTimeout: c.cfg.ConnectTimeout,
	}

	c.cfg.Status.Info(fmt.Sprintf("sampling started: endpoint=%s interval=%s", endpoint, interval))
	l.run(stop)
	c.cfg.Status.Info(fmt.Sprintf("sampling stopped after %d rows", l.rowsWritten))

	if c.cfg.Recorder != nil && runID != 0 {
		if err := c.cfg.Recorder.RecordFinish(context.Background(), runID, l.rowsWritten, l.lastFault); err != nil {
			c.cfg.Logger.Warn("recording run finish failed", "error", err)
		}
	}
}
