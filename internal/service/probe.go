package service

import (
	"context"
	"sync/atomic"
)

// ConnState is the advisory connectivity flag. Each probe replaces it.
// The zero value is disconnected.
type ConnState struct {
	connected atomic.Bool
}

// Set replaces the flag.
func (s *ConnState) Set(connected bool) { s.connected.Store(connected) }

// Connected returns the flag.
func (s *ConnState) Connected() bool { return s.connected.Load() }

// Probe is a handle to a connectivity probe running in the background.
// The host may wait for it, cancel it, or ignore it.
type Probe struct {
	done   chan struct{}
	cancel context.CancelFunc
	result bool
}

// StartProbe runs probe in a new goroutine and returns its handle.
// Cancelling the handle cancels the context passed to probe.
func StartProbe(ctx context.Context, probe func(ctx context.Context) bool) *Probe {
	ctx, cancel := context.WithCancel(ctx)
	p := &Probe{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer cancel()
		p.result = probe(ctx)
		close(p.done)
	}()
	return p
}

// Done is closed once the probe has finished.
func (p *Probe) Done() <-chan struct{} { return p.done }

// Wait blocks until the probe finishes or ctx is done.
// Returns false if ctx ends first.
func (p *Probe) Wait(ctx context.Context) bool {
	select {
	case <-p.done:
		return p.result
	case <-ctx.Done():
		return false
	}
}

// Result returns the probe outcome and whether the probe has finished.
func (p *Probe) Result() (connected, finished bool) {
	select {
	case <-p.done:
		return p.result, true
	default:
		return false, false
	}
}

// Cancel aborts the probe. A cancelled probe resolves false.
func (p *Probe) Cancel() {
	p.cancel()
}
