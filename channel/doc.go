// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package channel implements a bounded, in-memory byte conduit with
// backpressure.
//
// A *Channel has exactly one writer and one reader. The writer appends bytes
// with Write, which blocks while the buffer is full, and signals the end of
// the stream with Complete. The reader consumes bytes with Read, which blocks
// while the buffer is empty, and receives io.EOF once the stream is complete
// and fully drained. A Channel does not interpret or frame the bytes it
// carries.
//
// Either side may abandon the stream with CloseWithError, after which pending
// and future operations on both sides report the error.
package channel
