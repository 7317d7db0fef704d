// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package peer implements the Client and Server transforms of the reference
// exchange protocol.
//
// Each peer begins by sending a greeting with ID 0, and then replies exactly
// once to each message it receives. Replies are numbered by the peer's own
// outgoing counter, which is independent of the IDs it receives:
//
//	client -> {0, "Client is ready"}
//	server -> {0, "Server is ready"}
//	server -> {1, "Server has processed 0 from client"}
//	client -> {1, "Client has processed 0 from server"}
//	...
//
// A peer stops when its inbound sequence ends or, if a limit is set, after it
// has sent that many messages.
package peer

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/creachadair/duplex"
)

// DefaultLogEvery is the logging interval used when Config.LogEvery < 1.
const DefaultLogEvery = 1000

// Config carries the settings of a peer. A nil *Config provides sensible
// defaults: no throttling, no limit and no logging.
type Config struct {
	// If positive, wait this long before processing each inbound message, and
	// log every message received.
	Throttle time.Duration

	// If Throttle is zero, log a received message only when the count of
	// messages this peer has sent is a multiple of LogEvery. A value less
	// than 1 uses DefaultLogEvery.
	LogEvery int

	// If positive, stop after sending this many messages, including the
	// greeting. Otherwise, run until the inbound sequence ends.
	Limit int

	// If not nil, write logs to this writer.
	LogWriter io.Writer
}

func (c *Config) throttle() time.Duration {
	if c == nil || c.Throttle < 0 {
		return 0
	}
	return c.Throttle
}

func (c *Config) logEvery() int {
	if c == nil || c.LogEvery < 1 {
		return DefaultLogEvery
	}
	return c.LogEvery
}

func (c *Config) limit() int {
	if c == nil || c.Limit < 0 {
		return 0
	}
	return c.Limit
}

func (c *Config) logFunc(role string) func(string, ...any) {
	if c == nil || c.LogWriter == nil {
		return func(string, ...any) {}
	}
	logger := log.New(c.LogWriter, "["+role+"] ", log.LstdFlags)
	return func(msg string, args ...any) { logger.Output(2, fmt.Sprintf(msg, args...)) }
}

// Client is the transform for the client side of the exchange.
type Client struct{ cfg *Config }

// NewClient returns a Client with the given settings.
func NewClient(cfg *Config) *Client { return &Client{cfg: cfg} }

// Transform implements duplex.Transform.
func (c *Client) Transform(ctx context.Context, in <-chan duplex.Message, out chan<- duplex.Message) error {
	return run(ctx, role{name: "Client", remote: "server"}, c.cfg, in, out)
}

// Server is the transform for the server side of the exchange.
type Server struct{ cfg *Config }

// NewServer returns a Server with the given settings.
func NewServer(cfg *Config) *Server { return &Server{cfg: cfg} }

// Transform implements duplex.Transform.
func (s *Server) Transform(ctx context.Context, in <-chan duplex.Message, out chan<- duplex.Message) error {
	return run(ctx, role{name: "Server", remote: "client"}, s.cfg, in, out)
}

type role struct {
	name   string // how the peer refers to itself
	remote string // how the peer refers to the other side
}

// run implements the protocol state machine: a greeting, followed by one
// reply per inbound message.
func run(ctx context.Context, r role, cfg *Config, in <-chan duplex.Message, out chan<- duplex.Message) error {
	logf := cfg.logFunc(r.name)
	throttle, every, limit := cfg.throttle(), cfg.logEvery(), cfg.limit()

	next := 0 // the ID of the next message to send
	send := func(payload string) error {
		select {
		case out <- duplex.Message{ID: next, Payload: payload}:
			next++
			return nil
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}

	if err := send(r.name + " is ready"); err != nil {
		return err
	}
	for limit == 0 || next < limit {
		var m duplex.Message
		select {
		case v, ok := <-in:
			if !ok {
				return nil
			}
			m = v
		case <-ctx.Done():
			return context.Cause(ctx)
		}

		if throttle > 0 {
			if err := sleep(ctx, throttle); err != nil {
				return err
			}
			logf("%s received: %v", r.name, m)
		} else if next%every == 0 {
			// N.B. This checks the outgoing counter, not the inbound ID.
			logf("%s received: %v", r.name, m)
		}

		if err := send(fmt.Sprintf("%s has processed %d from %s", r.name, m.ID, r.remote)); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
