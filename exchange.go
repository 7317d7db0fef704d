// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package duplex

import (
	"context"

	"github.com/creachadair/duplex/metrics"
	"golang.org/x/sync/errgroup"
)

// Stats describe a completed exchange.
type Stats struct {
	BytesAB int64 // bytes copied from endpoint a to endpoint b
	BytesBA int64 // bytes copied from endpoint b to endpoint a

	// If the exchange options include a metrics collector, these maps hold a
	// snapshot of its contents when the exchange ended. Endpoint counters are
	// named "a.sent", "a.received", "b.sent", "b.received", and link counters
	// "a->b.bytes" and "b->a.bytes".
	Counters  map[string]int64
	MaxValues map[string]int64
}

// Exchange runs a complete duplex session between two transforms. It creates
// an endpoint for each transform, connects them, and blocks until both
// transforms have finished and all their output has been delivered.
//
// Transform a produces values of type X, which are delivered to b; b produces
// values of type Y, which are delivered to a. The two directions progress
// independently, each limited by its own channel capacity.
//
// If any part of the session fails, or if ctx ends first, every endpoint is
// aborted with the first error, releasing all the channels, and Exchange
// reports that error. No output already delivered is rolled back.
func Exchange[X, Y any](ctx context.Context, a Transform[Y, X], b Transform[X, Y], opts *Options) (Stats, error) {
	sessionsActiveGauge.Add(1)
	defer sessionsActiveGauge.Add(-1)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	ea := newEndpoint[Y, X]("a", opts).Start(ctx, a)
	eb := newEndpoint[X, Y]("b", opts).Start(ctx, b)
	link := Connect(ea, eb, opts)

	// The first failure cancels ctx, which aborts both endpoints; their
	// channels are closed, which in turn stops the link.
	var g errgroup.Group
	for _, wait := range []func() error{ea.Wait, eb.Wait, link.Wait} {
		wait := wait
		g.Go(func() error {
			err := wait()
			if err != nil {
				cancel(err)
			}
			return err
		})
	}
	err := g.Wait()
	if err != nil {
		sessionsFailedCount.Add(1)
	}

	var st Stats
	st.BytesAB, st.BytesBA = link.Bytes()
	if m := opts.metrics(); m != nil {
		st.Counters, st.MaxValues = snapshot(m)
	}
	return st, err
}

func snapshot(m *metrics.M) (counters, maxValues map[string]int64) {
	counters = make(map[string]int64)
	maxValues = make(map[string]int64)
	m.Snapshot(counters, maxValues)
	return
}
