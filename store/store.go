// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package store implements a directory of named, compressed record sequences.
//
// Each key names a file holding a gzip-compressed stream of records in the
// array format of package codec. Sequences are written and read lazily, so a
// sequence need never be held in memory all at once.
package store

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/creachadair/duplex/codec"
	"github.com/pkg/errors"
)

const fileSuffix = ".json.gz"

// ErrInvalidKey is reported for a key that is not a plain file name.
var ErrInvalidKey = errors.New("invalid key")

// A Store is a directory of record sequences indexed by key.
type Store struct {
	dir string
}

// New returns a store rooted at dir, creating the directory if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create store")
	}
	return &Store{dir: dir}, nil
}

// Dir reports the directory of s.
func (s *Store) Dir() string { return s.dir }

// Exists reports whether a sequence is stored under key.
func (s *Store) Exists(key string) bool {
	path, err := s.path(key)
	if err != nil {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// Remove deletes the sequence stored under key. It is not an error if there
// is no such sequence.
func (s *Store) Remove(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %q", key)
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || filepath.Base(key) != key {
		return "", errors.Wrapf(ErrInvalidKey, "key %q", key)
	}
	return filepath.Join(s.dir, key+fileSuffix), nil
}

// Save writes the records received from src under key, replacing any
// existing sequence, and reports the number of records written. The sequence
// becomes visible only once src is closed and all its records are written.
//
// If ctx ends or writing fails, Save stops receiving from src, discards the
// partial sequence and reports the error. Any existing sequence is then left
// unchanged.
func Save[T any](ctx context.Context, s *Store, key string, src <-chan T) (int, error) {
	path, err := s.path(key)
	if err != nil {
		return 0, err
	}
	f, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return 0, errors.Wrap(err, "create temp file")
	}
	n, err := writeRecords(ctx, f, src)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(f.Name(), path)
	}
	if err != nil {
		os.Remove(f.Name())
		return 0, errors.Wrapf(err, "save %q", key)
	}
	return n, nil
}

func writeRecords[T any](ctx context.Context, w io.Writer, src <-chan T) (int, error) {
	zw, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
	if err != nil {
		return 0, err
	}
	enc := codec.NewEncoder[T](codec.Array, zw)
	var n int
	for {
		select {
		case v, ok := <-src:
			if !ok {
				if err := enc.Close(); err != nil {
					return n, err
				}
				return n, zw.Close()
			}
			if err := enc.Encode(v); err != nil {
				return n, err
			}
			n++
		case <-ctx.Done():
			return n, ctx.Err()
		}
	}
}

// A Cursor reads the records of a stored sequence one at a time.
type Cursor[T any] struct {
	key string
	f   *os.File
	zr  *gzip.Reader
	dec codec.Decoder[T] // nil for an empty sequence
}

// Load opens the sequence stored under key for reading. If there is no such
// sequence, Load returns a cursor over an empty sequence. The caller must
// close the cursor when it is no longer needed.
func Load[T any](s *Store, key string) (*Cursor[T], error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &Cursor[T]{key: key}, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "load %q", key)
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "load %q", key)
	}
	return &Cursor[T]{key: key, f: f, zr: zr, dec: codec.NewDecoder[T](codec.Array, zr)}, nil
}

// Next returns the next record of the sequence. It returns io.EOF when the
// sequence is exhausted.
func (c *Cursor[T]) Next() (T, error) {
	if c.dec == nil {
		var zero T
		return zero, io.EOF
	}
	v, err := c.dec.Decode()
	if err != nil && err != io.EOF {
		return v, errors.Wrapf(err, "read %q", c.key)
	}
	return v, err
}

// Close releases the resources held by c.
func (c *Cursor[T]) Close() error {
	if c.f == nil {
		return nil
	}
	zerr := c.zr.Close()
	if err := c.f.Close(); err != nil {
		return err
	}
	return zerr
}

// Each calls f with each remaining record of c in order, until the sequence
// is exhausted or f reports an error.
func (c *Cursor[T]) Each(f func(T) error) error {
	for {
		v, err := c.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if err := f(v); err != nil {
			return err
		}
	}
}
