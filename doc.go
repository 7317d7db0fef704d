// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

/*
Package duplex implements a full-duplex, streaming message exchange between
two peers over a pair of flow-controlled, in-memory byte channels.

# Endpoints

An Endpoint owns two channels (see package channel): an inbound channel it
decodes messages from, and an outbound channel it encodes messages onto. The
behaviour of a peer is a Transform, which consumes the inbound sequence and
produces the outbound one:

	type Echo struct{}

	func (Echo) Transform(ctx context.Context, in <-chan duplex.Message, out chan<- duplex.Message) error {
	   for m := range in {
	      select {
	      case out <- m:
	      case <-ctx.Done():
	         return ctx.Err()
	      }
	   }
	   return nil
	}

Starting an endpoint runs three goroutines: a decode loop feeding the
transform, the transform itself, and an encode loop draining its output. This
allows a peer to react to inbound traffic and emit unsolicited messages (such
as a greeting) without deadlocking on a single blocking call:

	ep := duplex.NewEndpoint[duplex.Message, duplex.Message](nil).Start(ctx, Echo{})

When the transform returns, the outbound channel is completed, which the
remote side observes as the end of its inbound sequence.

# Links

Endpoints know nothing about each other. Connect joins two endpoints by
copying the outbound bytes of each to the inbound channel of the other:

	link := duplex.Connect(ep1, ep2, nil)
	if err := link.Wait(); err != nil {
	   log.Fatalf("Link failed: %v", err)
	}

# Exchanges

Exchange does all of the above for a pair of transforms, and waits for the
session to finish. If any part of the session fails, the whole session is torn
down and the first error is reported:

	stats, err := duplex.Exchange(ctx, client, server, &duplex.Options{
	   Capacity: 4096,
	})

Package peer provides the Client and Server transforms of the reference
protocol.

# Wire Format

By default messages are encoded as the elements of a single JSON array, which
is decoded incrementally as bytes arrive. Other formats are available from
package codec, selected with Options.Format. No other framing is added.
*/
package duplex
