// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package codec

import (
	"encoding/json"
	"io"
)

// A lineEncoder writes each record as a JSON value followed by a newline.
type lineEncoder[T any] struct {
	w      io.Writer
	closed bool
	err    error
}

// Encode implements part of the Encoder interface.
func (e *lineEncoder[T]) Encode(v T) error {
	if e.err != nil {
		return e.err
	} else if e.closed {
		return errEncoderClosed
	}
	bits, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(append(bits, '\n')); err != nil {
		e.err = err
		return err
	}
	return nil
}

// Close implements part of the Encoder interface. The lines format has no
// trailer.
func (e *lineEncoder[T]) Close() error { e.closed = true; return e.err }

// A lineDecoder reads a sequence of whitespace-separated JSON values.
type lineDecoder[T any] struct {
	src *source
	dec *json.Decoder
	n   int
	err error
}

func newLineDecoder[T any](r io.Reader) *lineDecoder[T] {
	src := &source{r: r}
	return &lineDecoder[T]{src: src, dec: json.NewDecoder(src)}
}

// Decode implements the Decoder interface.
func (d *lineDecoder[T]) Decode() (T, error) {
	var v T
	if d.err != nil {
		return v, d.err
	}
	if err := d.dec.Decode(&v); err == io.EOF {
		d.err = io.EOF
		return v, io.EOF
	} else if err != nil {
		d.err = d.src.failure(d.n, err)
		return v, d.err
	}
	d.n++
	return v, nil
}
