package status

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// defaultBufferSize is the event queue depth used when NewBus is given a
// non-positive buffer size.
const defaultBufferSize = 64

// Bus fans status events out to sinks from a dedicated dispatch goroutine.
//
// Reporting never blocks: events are enqueued on a bounded channel and
// dropped (with a counter) when the queue is full. Sinks receive events
// sequentially in enqueue order.
type Bus struct {
	events  chan Event
	sinks   []Sink
	dropped atomic.Uint64

	mu       sync.Mutex
	started  bool
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewBus creates a bus with the given queue depth and sinks. A buffer
// size <= 0 falls back to the default.
func NewBus(buffer int, sinks ...Sink) *Bus {
	if buffer <= 0 {
		buffer = defaultBufferSize
	}
	return &Bus{
		events: make(chan Event, buffer),
		sinks:  sinks,
		done:   make(chan struct{}),
	}
}

// Start launches the dispatch goroutine.
//
// Returns:
//   - error: If the bus has already been started
func (b *Bus) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return fmt.Errorf("status: bus already started")
	}
	b.started = true

	b.wg.Add(1)
	go b.dispatch()
	return nil
}

// Stop ends dispatching and waits for the goroutine to exit. Events still
// queued at stop time are delivered before Stop returns. Safe to call
// multiple times.
func (b *Bus) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
	})
	b.wg.Wait()
}

// Dropped returns the number of events discarded because the queue was
// full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Info reports an informational event.
func (b *Bus) Info(msg string) { b.publish(SeverityInfo, msg) }

// Warn reports a warning event.
func (b *Bus) Warn(msg string) { b.publish(SeverityWarning, msg) }

// Error reports an error event.
func (b *Bus) Error(msg string) { b.publish(SeverityError, msg) }

// publish enqueues without blocking. A full queue drops the event.
func (b *Bus) publish(sev Severity, msg string) {
	ev := Event{Time: time.Now(), Severity: sev, Message: msg}
	select {
	case b.events <- ev:
	default:
		b.dropped.Add(1)
	}
}

// dispatch drains the queue to the sinks until Stop, then delivers any
// remaining buffered events.
func (b *Bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case ev := <-b.events:
			b.emit(ev)
		case <-b.done:
			for {
				select {
				case ev := <-b.events:
					b.emit(ev)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) emit(ev Event) {
	for _, s := range b.sinks {
		s.Emit(ev)
	}
}
