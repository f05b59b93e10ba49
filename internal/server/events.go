// ABOUTME: Event queue between the dispatcher and its observers
// ABOUTME: Observers run on one delivery goroutine so slow sinks never stall the accept loop

package server

import (
	"context"
	"sync"

	"github.com/harper/netcmd/internal/event"
)

// eventQueue is unbounded: push never blocks and never drops while open.
type eventQueue struct {
	observers event.Fanout

	mu      sync.Mutex
	pending []event.Event
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func newEventQueue(observers event.Fanout) *eventQueue {
	return &eventQueue{
		observers: observers,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// push reports false once the queue is closed.
func (q *eventQueue) push(ev event.Event) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, ev)
	q.mu.Unlock()

	q.signal()
	return true
}

func (q *eventQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *eventQueue) run() {
	defer close(q.done)
	for range q.wake {
		for {
			q.mu.Lock()
			batch := q.pending
			q.pending = nil
			closed := q.closed
			q.mu.Unlock()

			if len(batch) == 0 {
				if closed {
					return
				}
				break
			}
			for _, ev := range batch {
				q.observers.Observe(ev)
			}
		}
	}
}

// close stops accepting events and waits until the queued ones are
// delivered or ctx ends.
func (q *eventQueue) close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
