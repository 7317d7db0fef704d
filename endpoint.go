// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package duplex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/creachadair/duplex/channel"
	"github.com/creachadair/duplex/codec"
	"github.com/creachadair/duplex/metrics"
	"golang.org/x/sync/errgroup"
)

// ErrAborted is the error recorded by Abort when it is called with a nil
// error.
var ErrAborted = errors.New("endpoint aborted")

// A Port exposes the byte streams of one side of a link. Bytes written to the
// inbound channel are consumed by the owner of the port; bytes the owner
// produces are read from the outbound channel.
type Port interface {
	Inbound() *channel.Channel
	Outbound() *channel.Channel
}

// An Endpoint owns an inbound and an outbound channel and runs a Transform
// between them: inbound bytes are decoded into values of type In and fed to
// the transform, and the values of type Out it produces are encoded onto the
// outbound channel.
//
// An Endpoint knows nothing about its remote peer. Use Connect to join the
// ports of two endpoints.
type Endpoint[In, Out any] struct {
	name   string
	in     *channel.Channel
	out    *channel.Channel
	format codec.Format
	log    func(string, ...any)
	m      *metrics.M

	tasks errgroup.Group // decode loop, transform, encode loop

	mu       sync.Mutex // protects the fields below
	started  bool
	finished bool
	err      error // the first failure, if any
	cancel   context.CancelCauseFunc
	done     chan struct{} // closed when all tasks have returned
}

// NewEndpoint returns a new unstarted endpoint with empty channels configured
// by opts. To begin processing, call Start.
func NewEndpoint[In, Out any](opts *Options) *Endpoint[In, Out] {
	return newEndpoint[In, Out]("endpoint", opts)
}

func newEndpoint[In, Out any](name string, opts *Options) *Endpoint[In, Out] {
	return &Endpoint[In, Out]{
		name:   name,
		in:     channel.New(opts.capacity()),
		out:    channel.New(opts.capacity()),
		format: opts.format(),
		log:    opts.logFunc("[duplex.Endpoint " + name + "] "),
		m:      opts.metrics(),
		done:   make(chan struct{}),
	}
}

// Inbound returns the channel from which e decodes its input.
func (e *Endpoint[In, Out]) Inbound() *channel.Channel { return e.in }

// Outbound returns the channel onto which e encodes its output.
func (e *Endpoint[In, Out]) Outbound() *channel.Channel { return e.out }

// Start begins decoding the inbound channel, running t on the decoded values,
// and encoding its results onto the outbound channel. Start does not block
// while the endpoint runs; call Wait to wait for it to finish. Start panics if
// e is already started or t == nil. It returns e to allow chaining with
// construction.
//
// When t returns and its output has been encoded, the outbound channel is
// completed. If decoding, encoding or t fails, or if ctx ends first, the
// endpoint fails: the context passed to t is cancelled with the error as its
// cause, and both channels are closed with the error.
func (e *Endpoint[In, Out]) Start(ctx context.Context, t Transform[In, Out]) *Endpoint[In, Out] {
	if t == nil {
		panic("nil transform")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		panic("endpoint is already started")
	}
	e.started = true

	tctx, cancel := context.WithCancelCause(ctx)
	e.cancel = cancel
	failed := make(chan struct{})
	stop := context.AfterFunc(tctx, func() {
		defer close(failed)
		e.fail(context.Cause(tctx))
	})

	inq := make(chan In)
	outq := make(chan Out)
	quit := make(chan struct{}) // closed when the transform returns

	// Decode inbound records and hand them to the transform.
	e.tasks.Go(func() error { return e.decode(tctx, inq, quit) })

	// Run the transform. Its output ends when it returns.
	e.tasks.Go(func() error {
		defer close(quit)
		defer close(outq)
		if err := t.Transform(tctx, inq, outq); err != nil {
			return e.fail(fmt.Errorf("transform: %w", err))
		}
		return nil
	})

	// Encode the output of the transform onto the outbound channel.
	e.tasks.Go(func() error { return e.encode(tctx, outq) })

	go func() {
		e.tasks.Wait()
		if !stop() {
			<-failed // the failure handler is running; let it finish
		}
		e.mu.Lock()
		e.finished = true
		e.mu.Unlock()
		cancel(nil)
		close(e.done)
	}()
	return e
}

// Wait blocks until e has finished and reports the error that caused it to
// fail, or nil if it ran to completion. Wait returns nil immediately if e was
// never started.
func (e *Endpoint[In, Out]) Wait() error {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if !started {
		return nil
	}
	<-e.done
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Abort causes e to fail with err, if it has not already finished or failed.
// If err == nil, ErrAborted is used instead.
func (e *Endpoint[In, Out]) Abort(err error) {
	if err == nil {
		err = ErrAborted
	}
	e.fail(err)
}

// fail records err as the failure of e, if no other failure was already
// recorded, and tears down the channels and the transform. It returns err.
func (e *Endpoint[In, Out]) fail(err error) error {
	e.mu.Lock()
	if e.err != nil || e.finished {
		e.mu.Unlock()
		return err
	}
	e.err = err
	cancel := e.cancel
	e.mu.Unlock()

	e.log("Endpoint failed: %v", err)
	e.m.Count(e.name+".failures", 1)
	if cancel != nil {
		cancel(err)
	}
	e.in.CloseWithError(err)
	e.out.CloseWithError(err)
	return err
}

// decode is the receive loop of the endpoint. It decodes records from the
// inbound channel and delivers them to the transform via inq, which it closes
// when it returns. Once the transform has returned, any remaining records are
// decoded and discarded, so that the remote side is never blocked by a peer
// that has stopped listening.
func (e *Endpoint[In, Out]) decode(ctx context.Context, inq chan<- In, quit <-chan struct{}) error {
	defer close(inq)
	dec := codec.NewDecoder[In](e.format, e.in)
	var nr, discarded int
	for {
		v, err := dec.Decode()
		if err == io.EOF {
			e.log("Inbound stream complete after %d records (%d discarded)", nr, discarded)
			return nil
		} else if err != nil {
			if codec.IsDecodeError(err) {
				decodeErrorsCount.Add(1)
			}
			return e.fail(err)
		}
		nr++
		messagesDecodedCount.Add(1)
		e.m.Count(e.name+".received", 1)

		select {
		case inq <- v:
		case <-quit:
			discarded++
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
}

// encode is the send loop of the endpoint. It encodes each value produced by
// the transform onto the outbound channel, and completes the channel after the
// transform has returned.
func (e *Endpoint[In, Out]) encode(ctx context.Context, outq <-chan Out) error {
	enc := codec.NewEncoder[Out](e.format, e.out)
	var nw int
	for v := range outq {
		if err := enc.Encode(v); err != nil {
			err = e.fail(fmt.Errorf("encode: %w", err))
			for range outq {
				// Drain so the transform is not blocked sending.
			}
			return err
		}
		nw++
		messagesEncodedCount.Add(1)
		e.m.Count(e.name+".sent", 1)
	}
	if ctx.Err() != nil {
		return context.Cause(ctx) // failed; the channel is already closed
	}
	if err := enc.Close(); err != nil {
		return e.fail(fmt.Errorf("encode: %w", err))
	}
	e.log("Outbound stream complete after %d records", nw)
	return e.out.Complete()
}
