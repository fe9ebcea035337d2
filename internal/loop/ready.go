package loop

import (
	"context"
	"sync"
)

// Ready is a one-shot latch. It is safe for concurrent use.
type Ready struct {
	once sync.Once
	ch   chan struct{}
	mu   sync.Mutex
}

func (r *Ready) channel() chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch == nil {
		r.ch = make(chan struct{})
	}
	return r.ch
}

// Fire releases every waiter. Later calls do nothing.
func (r *Ready) Fire() {
	ch := r.channel()
	r.once.Do(func() { close(ch) })
}

// Done returns a channel closed once Fire has been called.
func (r *Ready) Done() <-chan struct{} {
	return r.channel()
}

// Fired reports whether Fire has been called.
func (r *Ready) Fired() bool {
	select {
	case <-r.Done():
		return true
	default:
		return false
	}
}

// WaitReady blocks until ready is closed or ctx ends.
func WaitReady(ctx context.Context, ready <-chan struct{}) error {
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
