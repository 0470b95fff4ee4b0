package strategy

import (
	"context"
	"sync/atomic"
)

// Stopper is the cooperative cancellation flag shared across fan-out
// workers (spec.md §5): checked only at iteration boundaries, never
// forcibly preempting a worker mid-convergence.
type Stopper struct {
	ctx     context.Context
	stopped atomic.Bool
}

// NewStopper wraps ctx; Stop() or ctx's own cancellation both mark it
// stopped.
func NewStopper(ctx context.Context) *Stopper {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Stopper{ctx: ctx}
}

// Stop marks the flag: the first worker to find a valid ordering calls
// this so every other worker exits at its next iteration boundary.
func (s *Stopper) Stop() { s.stopped.Store(true) }

// Stopped reports whether this Stopper (or its context) has been
// canceled.
func (s *Stopper) Stopped() bool {
	if s == nil {
		return false
	}
	if s.stopped.Load() {
		return true
	}
	select {
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}
