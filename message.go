// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package duplex

import (
	"context"
	"fmt"
)

// A Message is a single record of the reference protocol. Each sending
// direction numbers its messages from 0 in steps of 1.
type Message struct {
	ID      int    `json:"id"`
	Payload string `json:"message"`
}

func (m Message) String() string { return fmt.Sprintf("%d:%s", m.ID, m.Payload) }

// A Transform maps an inbound sequence of messages to an outbound sequence.
// It is the pluggable behaviour of one peer of an exchange.
//
// Transform receives inbound values from in, which is closed when the remote
// peer finishes sending or the endpoint fails, and sends outbound values to
// out. It must not close
// out; the caller closes out when Transform returns. Transform may return
// before in is closed, in which case the remaining inbound values are
// discarded. Any blocking send or receive must also select on ctx, which ends
// if the session fails.
type Transform[In, Out any] interface {
	Transform(ctx context.Context, in <-chan In, out chan<- Out) error
}

// TransformFunc adapts a function to the Transform interface.
type TransformFunc[In, Out any] func(context.Context, <-chan In, chan<- Out) error

// Transform implements the Transform interface by calling f.
func (f TransformFunc[In, Out]) Transform(ctx context.Context, in <-chan In, out chan<- Out) error {
	return f(ctx, in, out)
}
