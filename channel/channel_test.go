// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package channel_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creachadair/duplex/channel"
	"github.com/fortytw2/leaktest"
)

const message1 = `["Full plate and packing steel"]`
const message2 = `{"slogan":"Jump on your sword, evil!"}`

// testWriteRead writes msg to c in one goroutine and reads it back in
// another, and checks that the bytes arrive intact.
func testWriteRead(t *testing.T, c *channel.Channel, msg string) {
	t.Helper()

	var wg sync.WaitGroup
	var writeErr error
	got := make([]byte, 0, len(msg))

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, writeErr = io.WriteString(c, msg)
	}()
	buf := make([]byte, 7)
	for len(got) < len(msg) {
		n, err := c.Read(buf)
		if err != nil {
			t.Fatalf("Read: unexpected error: %v", err)
		}
		got = append(got, buf[:n]...)
	}
	wg.Wait()

	if writeErr != nil {
		t.Errorf("Write(%q): unexpected error: %v", msg, writeErr)
	}
	if string(got) != msg {
		t.Errorf("Read:\ngot  %#q\nwant %#q", got, msg)
	}
}

func TestWriteRead(t *testing.T) {
	defer leaktest.Check(t)()

	for _, capacity := range []int{0, 1, 3, 16, 1 << 20} {
		c := channel.New(capacity)
		testWriteRead(t, c, message1)
		testWriteRead(t, c, message2)
		testWriteRead(t, c, strings.Repeat("ABCDefghIJKLmnopQRSTuvwxYZ!", 800))
		if n := c.Len(); n != 0 {
			t.Errorf("Capacity %d: Len after reads = %d, want 0", capacity, n)
		}
	}
}

func TestDefaultCapacity(t *testing.T) {
	if got := channel.New(0).Cap(); got != channel.DefaultCapacity {
		t.Errorf("Cap() = %d, want %d", got, channel.DefaultCapacity)
	}
	if got := channel.New(5).Cap(); got != 5 {
		t.Errorf("Cap() = %d, want 5", got)
	}
}

func TestComplete(t *testing.T) {
	c := channel.New(64)
	if _, err := io.WriteString(c, message2); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := c.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := c.Complete(); err != nil {
		t.Errorf("Second Complete: %v", err)
	}

	// Buffered data survive completion.
	got, err := io.ReadAll(c)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != message2 {
		t.Errorf("ReadAll: got %#q, want %#q", got, message2)
	}
	if n, err := c.Read(make([]byte, 1)); n != 0 || err != io.EOF {
		t.Errorf("Read after drain: got (%d, %v), want (0, EOF)", n, err)
	}

	if _, err := c.Write([]byte("nonsense")); !errors.Is(err, channel.ErrCompleted) {
		t.Errorf("Write after Complete: got %v, want %v", err, channel.ErrCompleted)
	}
}

func TestReadBlocksUntilComplete(t *testing.T) {
	defer leaktest.Check(t)()

	c := channel.New(8)
	errc := make(chan error, 1)
	go func() {
		_, err := c.Read(make([]byte, 4))
		errc <- err
	}()

	select {
	case err := <-errc:
		t.Fatalf("Read returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	c.Complete()
	if err := <-errc; err != io.EOF {
		t.Errorf("Read: got %v, want EOF", err)
	}
}

func TestBackpressure(t *testing.T) {
	defer leaktest.Check(t)()

	c := channel.New(4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := c.Write([]byte("abcdefgh")); err != nil {
			t.Errorf("Write: %v", err)
		}
	}()

	// The writer cannot finish until the reader makes room.
	select {
	case <-done:
		t.Fatal("Write of 8 bytes to a 4-byte channel did not block")
	case <-time.After(20 * time.Millisecond):
	}
	if n := c.Len(); n > c.Cap() {
		t.Errorf("Len() = %d exceeds capacity %d", n, c.Cap())
	}

	var buf bytes.Buffer
	tmp := make([]byte, 3)
	for buf.Len() < 8 {
		n, err := c.Read(tmp)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		buf.Write(tmp[:n])
	}
	<-done
	if got := buf.String(); got != "abcdefgh" {
		t.Errorf("Read: got %q, want %q", got, "abcdefgh")
	}
}

func TestCloseWithError(t *testing.T) {
	defer leaktest.Check(t)()

	c := channel.New(2)
	errc := make(chan error, 1)
	go func() {
		_, err := c.Write([]byte("too much data"))
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)

	bad := errors.New("bad things happened")
	c.CloseWithError(bad)
	c.CloseWithError(errors.New("ignored"))

	if err := <-errc; err != bad {
		t.Errorf("Blocked Write: got %v, want %v", err, bad)
	}
	if _, err := c.Read(make([]byte, 1)); err != bad {
		t.Errorf("Read: got %v, want %v", err, bad)
	}
	if err := c.Complete(); err != bad {
		t.Errorf("Complete: got %v, want %v", err, bad)
	}
	if err := c.Err(); err != bad {
		t.Errorf("Err: got %v, want %v", err, bad)
	}
}

func TestCloseNil(t *testing.T) {
	c := channel.New(0)
	c.CloseWithError(nil)
	if _, err := c.Write([]byte("x")); err != channel.ErrClosed {
		t.Errorf("Write: got %v, want %v", err, channel.ErrClosed)
	}
}
