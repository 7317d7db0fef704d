// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package testutil defines internal support code for writing tests.
package testutil

import (
	"context"
	"sync"

	"github.com/creachadair/duplex"
)

// A Recorder wraps a transform and records the values it receives and sends.
// Only values actually delivered are recorded: a value the wrapped transform
// never read, or that was not accepted by the caller, is omitted.
type Recorder[In, Out any] struct {
	T duplex.Transform[In, Out]

	mu   sync.Mutex
	recv []In
	sent []Out
}

// Record returns a Recorder wrapping t.
func Record[In, Out any](t duplex.Transform[In, Out]) *Recorder[In, Out] {
	return &Recorder[In, Out]{T: t}
}

// Transform implements duplex.Transform by interposing on the inbound and
// outbound values of the wrapped transform.
func (r *Recorder[In, Out]) Transform(ctx context.Context, in <-chan In, out chan<- Out) error {
	rin := make(chan In)
	rout := make(chan Out)
	stop := make(chan struct{}) // closed when the wrapped transform returns

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer close(rin)
		for {
			select {
			case v, ok := <-in:
				if !ok {
					return
				}
				select {
				case rin <- v:
					r.mu.Lock()
					r.recv = append(r.recv, v)
					r.mu.Unlock()
				case <-stop:
					return
				case <-ctx.Done():
					return
				}
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for v := range rout {
			select {
			case out <- v:
				r.mu.Lock()
				r.sent = append(r.sent, v)
				r.mu.Unlock()
			case <-ctx.Done():
				for range rout {
					// discard
				}
				return
			}
		}
	}()

	err := r.T.Transform(ctx, rin, rout)
	close(rout)
	close(stop)
	wg.Wait()
	return err
}

// Received returns a copy of the values received by the wrapped transform.
func (r *Recorder[In, Out]) Received() []In {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]In(nil), r.recv...)
}

// Sent returns a copy of the values sent by the wrapped transform.
func (r *Recorder[In, Out]) Sent() []Out {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Out(nil), r.sent...)
}
