// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package duplex

import (
	"fmt"
	"io"
	"log"

	"github.com/creachadair/duplex/channel"
	"github.com/creachadair/duplex/codec"
	"github.com/creachadair/duplex/metrics"
)

const logFlags = log.LstdFlags | log.Lshortfile

// Options control the behaviour of endpoints, links and exchanges.
// A nil *Options provides sensible defaults.
type Options struct {
	// If not nil, send debug logs to this writer.
	LogWriter io.Writer

	// The capacity in bytes of each channel buffer. A value less than 1 uses
	// channel.DefaultCapacity.
	Capacity int

	// The wire format used to encode messages. Both endpoints of a link must
	// agree on the format. If empty, codec.Array is used.
	Format codec.Format

	// If not nil, this collector receives per-session counters.
	Metrics *metrics.M
}

func (o *Options) logFunc(prefix string) func(string, ...any) {
	if o == nil || o.LogWriter == nil {
		return func(string, ...any) {}
	}
	logger := log.New(o.LogWriter, prefix, logFlags)
	return func(msg string, args ...any) { logger.Output(2, fmt.Sprintf(msg, args...)) }
}

func (o *Options) capacity() int {
	if o == nil || o.Capacity < 1 {
		return channel.DefaultCapacity
	}
	return o.Capacity
}

func (o *Options) format() codec.Format {
	if o == nil || o.Format == "" {
		return codec.Array
	}
	return o.Format
}

func (o *Options) metrics() *metrics.M {
	if o == nil {
		return nil
	}
	return o.Metrics
}
