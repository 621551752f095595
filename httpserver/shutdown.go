package httpserver

import "context"

// ShutdownSignal is a single-slot notification used by request handlers to
// ask the process to stop serving. Any number of goroutines may call Signal;
// only the first pending signal is kept.
type ShutdownSignal struct {
	ch chan struct{}
}

// NewShutdownSignal creates a ShutdownSignal with a buffer of one.
func NewShutdownSignal() *ShutdownSignal {
	return &ShutdownSignal{ch: make(chan struct{}, 1)}
}

// Signal requests shutdown without blocking. It reports false if a signal was
// already pending, in which case the call is a no-op.
func (s *ShutdownSignal) Signal() bool {
	select {
	case s.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Done returns a channel that receives once per delivered signal.
func (s *ShutdownSignal) Done() <-chan struct{} {
	return s.ch
}

// Wait blocks until a signal is delivered or ctx is done.
func (s *ShutdownSignal) Wait(ctx context.Context) error {
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
