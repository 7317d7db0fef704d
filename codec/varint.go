// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package codec

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxRecordSize is the largest record length accepted by a varint decoder.
const MaxRecordSize = 64 << 20

// A varintEncoder writes each record prefixed by its length, encoded as a
// varint as defined by the encoding/binary package.
type varintEncoder[T any] struct {
	w      io.Writer
	closed bool
	err    error
}

// Encode implements part of the Encoder interface.
func (e *varintEncoder[T]) Encode(v T) error {
	if e.err != nil {
		return e.err
	} else if e.closed {
		return errEncoderClosed
	}
	bits, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var ln [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(ln[:], uint64(len(bits)))
	rec := make([]byte, 0, n+len(bits))
	rec = append(rec, ln[:n]...)
	rec = append(rec, bits...)
	if _, err := e.w.Write(rec); err != nil {
		e.err = err
		return err
	}
	return nil
}

// Close implements part of the Encoder interface. The varint format has no
// trailer.
func (e *varintEncoder[T]) Close() error { e.closed = true; return e.err }

// A varintDecoder reads length-prefixed records.
type varintDecoder[T any] struct {
	src *source
	rd  *bufio.Reader
	n   int
	err error
}

func newVarintDecoder[T any](r io.Reader) *varintDecoder[T] {
	src := &source{r: r}
	return &varintDecoder[T]{src: src, rd: bufio.NewReader(src)}
}

// Decode implements the Decoder interface.
func (d *varintDecoder[T]) Decode() (T, error) {
	var v T
	if d.err != nil {
		return v, d.err
	}
	bits, err := d.record()
	if err == io.EOF {
		d.err = io.EOF
		return v, io.EOF
	} else if err != nil {
		d.err = d.src.failure(d.n, err)
		return v, d.err
	}
	if err := json.Unmarshal(bits, &v); err != nil {
		d.err = decodeFailure(d.n, err)
		return v, d.err
	}
	d.n++
	return v, nil
}

// record reads the next length-prefixed record. It reports io.EOF only if the
// stream ended exactly at a record boundary.
func (d *varintDecoder[T]) record() ([]byte, error) {
	ln, err := binary.ReadUvarint(d.rd)
	if err != nil {
		return nil, err // io.EOF at a boundary, io.ErrUnexpectedEOF inside the prefix
	} else if ln > MaxRecordSize {
		return nil, fmt.Errorf("record length %d exceeds limit %d", ln, MaxRecordSize)
	}
	out := make([]byte, int(ln))
	if _, err := io.ReadFull(d.rd, out); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return out, nil
}
