package progress

import (
	"context"
	"sync"
)

// Registry maps request ids to their live progress channels. The zero value
// is not usable; construct one with NewRegistry and share it between the
// chat and progress handlers.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]*Channel)}
}

// Open registers a fresh channel for id. A channel already registered under
// the same id is replaced and closed, which ends the older subscription.
func (r *Registry) Open(id string) *Channel {
	ch := newChannel()
	r.mu.Lock()
	prev := r.channels[id]
	r.channels[id] = ch
	r.mu.Unlock()
	if prev != nil {
		prev.close()
	}
	return ch
}

// Publish enqueues ev on id's channel. Without a subscriber the event is
// dropped and Publish reports false.
func (r *Registry) Publish(id string, ev Event) bool {
	if id == "" {
		return false
	}
	r.mu.RLock()
	ch := r.channels[id]
	r.mu.RUnlock()
	if ch == nil {
		return false
	}
	return ch.push(ev)
}

// Emit is Publish with a freshly stamped event.
func (r *Registry) Emit(id string, t Type, message string) bool {
	return r.Publish(id, NewEvent(t, message))
}

// Close removes id only while ch is still the registered channel, so a
// stale subscriber cannot tear down its replacement.
func (r *Registry) Close(id string, ch *Channel) {
	r.mu.Lock()
	if cur, ok := r.channels[id]; ok && cur == ch {
		delete(r.channels, id)
	}
	r.mu.Unlock()
	ch.close()
}

// Subscribe opens id and streams its events until ctx is cancelled or the
// channel is replaced. The returned channel is closed on teardown. The
// registration happens before Subscribe returns.
func (r *Registry) Subscribe(ctx context.Context, id string) <-chan Event {
	ch := r.Open(id)
	out := make(chan Event)
	go func() {
		defer close(out)
		defer r.Close(id, ch)
		for {
			ev, ok := ch.Next(ctx)
			if !ok {
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			case <-ch.Done():
				return
			}
		}
	}()
	return out
}

// Len reports the number of live channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}
