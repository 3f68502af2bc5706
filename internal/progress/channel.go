package progress

import (
	"context"
	"sync"
)

// Channel is an unbounded FIFO with a single consumer. Producers never
// block; the consumer waits in Next until an event arrives, the channel is
// closed or its context ends.
type Channel struct {
	mu     sync.Mutex
	queue  []Event
	notify chan struct{} // capacity 1, coalesces wake-ups
	done   chan struct{}
	once   sync.Once
}

func newChannel() *Channel {
	return &Channel{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// push appends ev and wakes the consumer. It reports false once the
// channel has been closed.
func (c *Channel) push(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	c.mu.Lock()
	c.queue = append(c.queue, ev)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
	return true
}

// Next blocks until an event is available. ok is false when the channel
// was closed or ctx was cancelled.
func (c *Channel) Next(ctx context.Context) (ev Event, ok bool) {
	for {
		select {
		case <-c.done:
			return Event{}, false
		default:
		}

		c.mu.Lock()
		if len(c.queue) > 0 {
			ev = c.queue[0]
			c.queue[0] = Event{}
			c.queue = c.queue[1:]
			c.mu.Unlock()
			return ev, true
		}
		c.mu.Unlock()

		select {
		case <-c.notify:
		case <-c.done:
			return Event{}, false
		case <-ctx.Done():
			return Event{}, false
		}
	}
}

// Done is closed when the channel is torn down.
func (c *Channel) Done() <-chan struct{} { return c.done }

func (c *Channel) close() {
	c.once.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.queue = nil
		c.mu.Unlock()
	})
}
