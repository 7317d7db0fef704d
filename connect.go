// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package duplex

import (
	"io"
	"sync/atomic"

	"github.com/creachadair/duplex/channel"
	"github.com/creachadair/duplex/metrics"
	"golang.org/x/sync/errgroup"
)

// copyBufferSize is the largest number of bytes a link moves in one step.
const copyBufferSize = 32 << 10

// A Link forwards bytes in both directions between the ports of two
// endpoints. It is created by Connect.
type Link struct {
	tasks errgroup.Group
	log   func(string, ...any)
	m     *metrics.M

	nab atomic.Int64 // bytes copied from a to b
	nba atomic.Int64 // bytes copied from b to a
}

// Connect starts forwarding the outbound stream of a to the inbound stream of
// b, and the outbound stream of b to the inbound stream of a, concurrently.
// Each direction runs until its source is complete and drained, and then
// completes its destination. Connect does not block; call Wait on the result
// to wait for both directions to finish.
//
// If either direction fails, its source and destination channels are closed
// with the error. The endpoints owning those channels will observe the error
// on their next read or write.
func Connect(a, b Port, opts *Options) *Link {
	l := &Link{
		log: opts.logFunc("[duplex.Link] "),
		m:   opts.metrics(),
	}
	l.tasks.Go(func() error { return l.forward("a->b", b.Inbound(), a.Outbound(), &l.nab) })
	l.tasks.Go(func() error { return l.forward("b->a", a.Inbound(), b.Outbound(), &l.nba) })
	return l
}

// Wait blocks until both directions of l have finished, and reports the first
// error from either direction, or nil.
func (l *Link) Wait() error { return l.tasks.Wait() }

// Bytes reports the number of bytes copied so far from a to b and from b to a.
// It may be called while the link is active.
func (l *Link) Bytes() (aToB, bToA int64) { return l.nab.Load(), l.nba.Load() }

// forward copies bytes from src to dst until src reports io.EOF, then
// completes dst. On any other error, both channels are closed with the error.
func (l *Link) forward(name string, dst, src *channel.Channel, nc *atomic.Int64) error {
	buf := make([]byte, copyBufferSize)
	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			if nw > 0 {
				nc.Add(int64(nw))
				bytesCopiedCount.Add(int64(nw))
				l.m.CountAndSetMax(name+".bytes", int64(nw))
			}
			if werr != nil {
				return l.abort(name, dst, src, nc.Load(), werr)
			}
		}
		if rerr == io.EOF {
			l.log("Forwarder %s finished after %d bytes", name, nc.Load())
			return dst.Complete()
		} else if rerr != nil {
			return l.abort(name, dst, src, nc.Load(), rerr)
		}
	}
}

func (l *Link) abort(name string, dst, src *channel.Channel, n int64, err error) error {
	l.log("Forwarder %s failed after %d bytes: %v", name, n, err)
	src.CloseWithError(err)
	dst.CloseWithError(err)
	return err
}
