package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Dispatcher forwards lifecycle events to a Sink off the request path.
// Events are buffered on a channel and delivered by a single goroutine, so
// sinks never run concurrently with themselves. Close flushes whatever is
// buffered before returning.
type Dispatcher struct {
	sink       Sink
	events     chan Event
	quit       chan struct{}
	dropIfFull bool

	dropped  atomic.Uint64
	closing  atomic.Bool
	stopOnce sync.Once
	stopped  sync.WaitGroup
}

// NewDispatcher starts the forwarding goroutine. A nil sink is replaced
// with [NoOpSink].
func NewDispatcher(bufferSize int, dropIfFull bool, sink Sink) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		events:     make(chan Event, bufferSize),
		quit:       make(chan struct{}),
		dropIfFull: dropIfFull,
	}

	d.stopped.Add(1)
	go d.forward()

	return d
}

func (d *Dispatcher) forward() {
	defer d.stopped.Done()

	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			d.flush()
			return
		}
	}
}

// flush delivers everything still buffered at shutdown.
func (d *Dispatcher) flush() {
	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit enqueues one event. In drop-if-full mode a full buffer increments
// the dropped counter instead of blocking the request path; otherwise the
// caller blocks until there is room, the context ends, or the dispatcher
// shuts down.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closing.Load() {
		return
	}

	if d.dropIfFull {
		select {
		case d.events <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close stops intake, flushes the buffer, and waits for the forwarding
// goroutine to exit. Safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.closing.Store(true)
		close(d.quit)
		d.stopped.Wait()
	})
}

// Dropped reports how many events were discarded by a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
