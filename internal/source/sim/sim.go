package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/source"
)

// Waveform periods and amplitudes, roughly matching the Prosys simulator defaults.
const (
	wavePeriod    = 16 * time.Second
	waveAmplitude = 100.0
	switchPeriod  = 30 * time.Second
)

// Source is a simulated data source server. It implements source.Client.
//
// Every connection shares the same start epoch so consecutive reads of the
// counter and waveform nodes advance monotonically across reconnects,
// matching how a real server behaves.
//
// Thread Safety: All methods are safe for concurrent use.
type Source struct {
	start time.Time

	rng   *rand.Rand
	rngMu sync.Mutex
}

// New creates a simulated source. The waveform epoch is the creation time.
func New() *Source {
	return &Source{
		start: time.Now(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Connect establishes a simulated session.
//
// The endpoint is accepted as-is except for an empty string, which is
// rejected the way a refused TCP connection would be.
func (s *Source) Connect(_ context.Context, endpoint string) (source.Connection, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("%w: empty endpoint", source.ErrConnectionRefused)
	}
	return &conn{src: s}, nil
}

// conn is a simulated session. Closing it invalidates its handles.
type conn struct {
	src    *Source
	closed atomic.Bool
}

// Resolve maps a node id to a waveform generator handle.
func (c *conn) Resolve(nodeID string) (source.Handle, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("%w: connection closed", source.ErrProtocol)
	}

	gen, ok := generatorFor(nodeID, c.src)
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, nodeID)
	}

	return &handle{nodeID: nodeID, conn: c, gen: gen}, nil
}

// Close terminates the session. Idempotent.
func (c *conn) Close() error {
	c.closed.Store(true)
	return nil
}

// handle is a resolved simulated tag.
type handle struct {
	nodeID string
	conn   *conn
	gen    func(elapsed time.Duration) any
}

// Read returns the simulated value for the current instant.
func (h *handle) Read(_ context.Context) (any, error) {
	if h.conn.closed.Load() {
		return nil, fmt.Errorf("%w: connection closed", source.ErrProtocol)
	}
	return h.gen(time.Since(h.conn.src.start)), nil
}

// NodeID returns the node identifier this handle was resolved from.
func (h *handle) NodeID() string {
	return h.nodeID
}

// generatorFor returns the waveform generator for a known node id.
func generatorFor(nodeID string, src *Source) (func(time.Duration) any, bool) {
	switch nodeID {
	case "ns=3;i=1001": // Constant
		return func(time.Duration) any { return 42.0 }, true
	case "ns=3;i=1002": // Counter
		return func(d time.Duration) any { return float64(int64(d.Seconds())) }, true
	case "ns=3;i=1003": // Random
		return func(time.Duration) any { return src.random() * waveAmplitude }, true
	case "ns=3;i=1004": // Sawtooth
		return func(d time.Duration) any { return sawtooth(phase(d)) }, true
	case "ns=3;i=1005": // Sinusoid
		return func(d time.Duration) any { return math.Sin(2*math.Pi*phase(d)) * waveAmplitude }, true
	case "ns=3;i=1006": // Square
		return func(d time.Duration) any { return square(phase(d)) }, true
	case "ns=3;i=1007": // Triangle
		return func(d time.Duration) any { return triangle(phase(d)) }, true
	case "ns=6;s=MyLevel": // Slow 0-100 gauge
		return func(d time.Duration) any {
			return 50.0 + 50.0*math.Sin(2*math.Pi*phase(d)/8)
		}, true
	case "ns=6;s=MySwitch": // Boolean toggling every switchPeriod
		return func(d time.Duration) any {
			return (d/switchPeriod)%2 == 0
		}, true
	case "ns=5;s=Double":
		return func(d time.Duration) any { return phase(d) * waveAmplitude }, true
	default:
		return nil, false
	}
}

// phase returns the position within the waveform period as [0, 1).
func phase(d time.Duration) float64 {
	p := math.Mod(d.Seconds(), wavePeriod.Seconds()) / wavePeriod.Seconds()
	if p < 0 {
		p += 1
	}
	return p
}

// sawtooth ramps from -amplitude to +amplitude over one period.
func sawtooth(p float64) float64 {
	return -waveAmplitude + 2*waveAmplitude*p
}

// square is +amplitude for the first half period, -amplitude for the second.
func square(p float64) float64 {
	if p < 0.5 {
		return waveAmplitude
	}
	return -waveAmplitude
}

// triangle ramps up for the first half period and back down for the second.
func triangle(p float64) float64 {
	if p < 0.5 {
		return -waveAmplitude + 4*waveAmplitude*p
	}
	return 3*waveAmplitude - 4*waveAmplitude*p
}

// random returns the next pseudo-random sample. The shared rng is guarded
// because handles may be read from concurrent batches in tests.
func (s *Source) random() float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Float64()
}
