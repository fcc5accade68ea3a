package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Async hands events to a bounded queue drained by a single worker. When the
// queue is full the event is dropped with a warning.
type Async struct {
	next  Dispatcher
	queue chan Event
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewAsync starts a worker delivering to next. size is the queue capacity.
func NewAsync(next Dispatcher, size int) *Async {
	if size < 1 {
		size = 1
	}
	a := &Async{
		next:  next,
		queue: make(chan Event, size),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

// Dispatch enqueues the event without blocking. Events dispatched after Close
// are dropped.
func (a *Async) Dispatch(ctx context.Context, event Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		slog.Warn("Notification dropped after shutdown", "kind", string(event.Kind), "group_id", event.GroupID)
		return
	}
	select {
	case a.queue <- event:
	default:
		slog.Warn("Notification queue full, dropping event",
			"kind", string(event.Kind),
			"group_id", event.GroupID,
		)
	}
}

// Close stops accepting events and waits until the queue is drained or ctx ends.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) run() {
	defer close(a.done)
	for event := range a.queue {
		a.next.Dispatch(context.Background(), event)
	}
}
