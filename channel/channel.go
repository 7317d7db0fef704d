// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package channel

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/creachadair/mds/queue"
	"golang.org/x/sync/semaphore"
)

// DefaultCapacity is the buffer capacity in bytes of a channel constructed
// with a capacity less than 1.
const DefaultCapacity = 64 << 10

var (
	// ErrCompleted is reported by Write after Complete has been called.
	// Writing to a completed channel is a usage error.
	ErrCompleted = errors.New("write on completed channel")

	// ErrClosed is reported by operations on a channel that was closed by
	// CloseWithError with a nil error.
	ErrClosed = errors.New("channel closed")
)

// A Channel is a bounded FIFO byte buffer with a single writer and a single
// reader. Its methods are safe for concurrent use by one writer goroutine and
// one reader goroutine.
type Channel struct {
	cap  int64
	room *semaphore.Weighted // unused buffer capacity, in bytes

	// The context ends when the channel fails, to unblock a writer waiting
	// for room in the buffer.
	ctx    context.Context
	cancel context.CancelFunc

	ready chan struct{} // signals the reader that the state changed

	mu   sync.Mutex // protects the fields below
	buf  *queue.Queue[[]byte]
	head []byte // the unread remainder of the front chunk
	size int    // total bytes buffered
	done bool   // Complete has been called
	err  error  // set by CloseWithError
}

// New constructs an empty channel that buffers at most capacity bytes.
// If capacity < 1, DefaultCapacity is used.
func New(capacity int) *Channel {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Channel{
		cap:    int64(capacity),
		room:   semaphore.NewWeighted(int64(capacity)),
		ctx:    ctx,
		cancel: cancel,
		ready:  make(chan struct{}, 1),
		buf:    queue.New[[]byte](),
	}
}

// Cap reports the capacity of c in bytes.
func (c *Channel) Cap() int { return int(c.cap) }

// Len reports the number of bytes currently buffered in c.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Write appends the contents of p to the buffer. If there is not enough room
// it blocks until the reader has drained enough of the buffer. A write larger
// than the capacity of c is delivered in capacity-sized pieces.
//
// Write reports ErrCompleted if Complete has already been called, or the
// error passed to CloseWithError if the channel has failed.
func (c *Channel) Write(p []byte) (int, error) {
	if err := c.checkWrite(); err != nil {
		return 0, err
	}
	var nw int
	for len(p) != 0 {
		chunk := p
		if int64(len(chunk)) > c.cap {
			chunk = chunk[:c.cap]
		}
		n := int64(len(chunk))
		if err := c.room.Acquire(c.ctx, n); err != nil {
			return nw, c.checkWrite()
		}

		c.mu.Lock()
		if err := c.writeErrLocked(); err != nil {
			c.mu.Unlock()
			c.room.Release(n)
			return nw, err
		}
		cp := make([]byte, len(chunk))
		copy(cp, chunk)
		c.buf.Add(cp)
		c.size += len(cp)
		c.mu.Unlock()
		c.signal()

		nw += len(chunk)
		p = p[len(chunk):]
	}
	return nw, nil
}

// Read copies buffered bytes into p, blocking until some are available. Once
// Complete has been called and the buffer is drained, Read reports io.EOF.
// If the channel has failed, Read reports the error passed to CloseWithError.
func (c *Channel) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		c.mu.Lock()
		if c.err != nil {
			err := c.err
			c.mu.Unlock()
			return 0, err
		}
		if len(c.head) == 0 {
			c.head, _ = c.buf.Pop()
		}
		if len(c.head) != 0 {
			nr := copy(p, c.head)
			c.head = c.head[nr:]
			c.size -= nr
			c.mu.Unlock()
			c.room.Release(int64(nr))
			return nr, nil
		}
		if c.done {
			c.mu.Unlock()
			return 0, io.EOF
		}
		c.mu.Unlock()
		<-c.ready
	}
}

// Complete marks the end of the stream. Bytes already buffered remain
// readable; after they are consumed, Read reports io.EOF. Complete is
// idempotent. It reports an error only if the channel has failed.
func (c *Channel) Complete() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if !c.done {
		c.done = true
		c.signal()
	}
	return nil
}

// CloseWithError abandons the stream. Any buffered bytes are discarded, and
// all subsequent reads and writes report err. If err == nil, ErrClosed is
// used instead. Only the first call has any effect.
func (c *Channel) CloseWithError(err error) {
	if err == nil {
		err = ErrClosed
	}
	c.mu.Lock()
	if c.err == nil {
		c.err = err
		c.buf.Clear()
		c.head = nil
		c.size = 0
	}
	c.mu.Unlock()
	c.cancel()
	c.signal()
}

// Err reports the error c was closed with, or nil.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Channel) checkWrite() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeErrLocked()
}

func (c *Channel) writeErrLocked() error {
	if c.err != nil {
		return c.err
	} else if c.done {
		return ErrCompleted
	}
	return nil
}

func (c *Channel) signal() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}
