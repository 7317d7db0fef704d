// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package codec

import (
	"encoding/json"
	"fmt"
	"io"
)

// An arrayEncoder writes records as the elements of a single JSON array. The
// opening bracket is written with the first record, and each later record is
// written together with its leading comma, so every record costs exactly one
// write to the underlying stream.
type arrayEncoder[T any] struct {
	w      io.Writer
	n      int
	closed bool
	err    error
}

// Encode implements part of the Encoder interface.
func (e *arrayEncoder[T]) Encode(v T) error {
	if e.err != nil {
		return e.err
	} else if e.closed {
		return errEncoderClosed
	}
	bits, err := json.Marshal(v)
	if err != nil {
		return err
	}
	sep := byte(',')
	if e.n == 0 {
		sep = '['
	}
	rec := make([]byte, 0, len(bits)+1)
	rec = append(rec, sep)
	rec = append(rec, bits...)
	if _, err := e.w.Write(rec); err != nil {
		e.err = err
		return err
	}
	e.n++
	return nil
}

// Close implements part of the Encoder interface.
func (e *arrayEncoder[T]) Close() error {
	if e.closed {
		return e.err
	}
	e.closed = true
	if e.err != nil {
		return e.err
	}
	end := "]"
	if e.n == 0 {
		end = "[]"
	}
	_, e.err = io.WriteString(e.w, end)
	return e.err
}

// An arrayDecoder reads the elements of a JSON array one at a time.
type arrayDecoder[T any] struct {
	src  *source
	dec  *json.Decoder
	open bool // the opening bracket has been consumed
	n    int  // records decoded so far
	err  error
}

func newArrayDecoder[T any](r io.Reader) *arrayDecoder[T] {
	src := &source{r: r}
	return &arrayDecoder[T]{src: src, dec: json.NewDecoder(src)}
}

// Decode implements the Decoder interface.
func (d *arrayDecoder[T]) Decode() (T, error) {
	var zero T
	if d.err != nil {
		return zero, d.err
	}
	v, err := d.next()
	if err != nil {
		d.err = err
		return zero, err
	}
	d.n++
	return v, nil
}

func (d *arrayDecoder[T]) next() (T, error) {
	var v T
	if !d.open {
		tok, err := d.dec.Token()
		if err == io.EOF {
			return v, io.EOF // an empty stream is an empty sequence
		} else if err != nil {
			return v, d.src.failure(d.n, err)
		} else if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			return v, d.src.failure(d.n, fmt.Errorf("got %v, want start of array", tok))
		}
		d.open = true
	}

	if d.dec.More() {
		if err := d.dec.Decode(&v); err != nil {
			return v, d.src.failure(d.n, err)
		}
		return v, nil
	}

	// Either the closing bracket, or the stream ended early.
	if _, err := d.dec.Token(); err != nil {
		return v, d.src.failure(d.n, err)
	}
	if tok, err := d.dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected %v after end of array", tok)
		}
		return v, d.src.failure(d.n, err)
	}
	return v, io.EOF
}
