// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package codec implements streaming encoders and decoders that convert
// between sequences of typed records and a byte stream.
//
// An Encoder writes each record to its underlying writer as soon as it is
// encoded, so that a concurrent reader can make progress without the whole
// sequence existing in memory. A Decoder yields each record as soon as enough
// bytes are available to reconstruct it, and reports io.EOF when the stream
// ends cleanly. Malformed or truncated input is reported as a *DecodeError.
// A read error, such as a channel closed by an aborted session, is reported
// unchanged. Either way the decoder reports the same error indefinitely.
//
// The records of every format are JSON values. The formats differ only in how
// the records are delimited:
//
//	array  -- the stream is a single JSON array, one element per record
//	lines  -- each record is a JSON value terminated by a newline
//	varint -- each record is prefixed by its length as a binary varint
package codec

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// A Format names a record-delimiting discipline.
type Format string

// The formats supported by this package.
const (
	Array  Format = "array"
	Lines  Format = "lines"
	Varint Format = "varint"
)

var formats = map[Format]bool{Array: true, Lines: true, Varint: true}

// ParseFormat returns the Format described by name, which is not case
// sensitive. The empty string denotes Array.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return Array, nil
	}
	f := Format(strings.ToLower(name))
	if !formats[f] {
		return "", fmt.Errorf("unknown format %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names returns the names of the supported formats in sorted order.
func Names() []string {
	var names []string
	for f := range formats {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// An Encoder writes a stream of records of type T.
type Encoder[T any] interface {
	// Encode writes v as the next record of the stream.
	Encode(v T) error

	// Close writes whatever trailer the format requires to end the stream.
	// It does not close the underlying writer.
	Close() error
}

// A Decoder reads a stream of records of type T.
type Decoder[T any] interface {
	// Decode returns the next record of the stream. It reports io.EOF when
	// the stream has ended cleanly, and a *DecodeError if the input is
	// malformed or truncated. An error from the underlying reader other than
	// io.EOF is reported as-is.
	Decode() (T, error)
}

// NewEncoder returns an Encoder for f that writes to w. An empty f denotes
// Array. NewEncoder panics if f is not a known format.
func NewEncoder[T any](f Format, w io.Writer) Encoder[T] {
	switch f {
	case Array, "":
		return &arrayEncoder[T]{w: w}
	case Lines:
		return &lineEncoder[T]{w: w}
	case Varint:
		return &varintEncoder[T]{w: w}
	}
	panic("codec: unknown format " + string(f))
}

// NewDecoder returns a Decoder for f that reads from r. An empty f denotes
// Array. NewDecoder panics if f is not a known format.
func NewDecoder[T any](f Format, r io.Reader) Decoder[T] {
	switch f {
	case Array, "":
		return newArrayDecoder[T](r)
	case Lines:
		return newLineDecoder[T](r)
	case Varint:
		return newVarintDecoder[T](r)
	}
	panic("codec: unknown format " + string(f))
}

// A DecodeError reports a failure to decode the record at a given offset in
// the stream. A truncated stream is reported with Err == io.ErrUnexpectedEOF.
type DecodeError struct {
	Index int   // the zero-based index of the record being decoded
	Err   error // the underlying error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding record %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is or wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var derr *DecodeError
	return errors.As(err, &derr)
}

// errEncoderClosed is reported by Encode after Close.
var errEncoderClosed = errors.New("encoder is closed")

// decodeFailure converts err into a *DecodeError for the record at index i.
// An io.EOF inside a record is reported as io.ErrUnexpectedEOF.
func decodeFailure(i int, err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return &DecodeError{Index: i, Err: err}
}

// A source wraps the reader of a decoder and remembers the last error it
// reported other than io.EOF, so that a failure of the transport is not
// mistaken for a malformed stream.
type source struct {
	r   io.Reader
	err error
}

func (s *source) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

// failure reports err unchanged if it came from the underlying reader, and
// otherwise as a *DecodeError for the record at index i.
func (s *source) failure(i int, err error) error {
	if s.err != nil && err == s.err {
		return err
	}
	return decodeFailure(i, err)
}
