// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package dataset

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/creachadair/duplex/store"
	"github.com/pkg/errors"
)

// A Service serves synthetic customer data, generating each requested data
// set once and loading it from a store thereafter.
type Service struct {
	st   *store.Store
	seed int64
	log  func(string, ...any)
}

// ServiceOptions control the behaviour of a Service. A nil *ServiceOptions
// provides sensible defaults.
type ServiceOptions struct {
	// The seed used to generate data sets. Zero selects a random seed.
	Seed int64

	// If not nil, send progress logs to this writer.
	LogWriter io.Writer
}

// NewService constructs a Service that memoises data in st.
func NewService(st *store.Store, opts *ServiceOptions) *Service {
	s := &Service{st: st, log: func(string, ...any) {}}
	if opts != nil {
		s.seed = opts.Seed
		if opts.LogWriter != nil {
			logger := log.New(opts.LogWriter, "[dataset] ", log.LstdFlags)
			s.log = func(msg string, args ...any) { logger.Output(2, fmt.Sprintf(msg, args...)) }
		}
	}
	return s
}

// CustomersKey returns the store key of the data set of count customers.
func CustomersKey(count int) string { return fmt.Sprintf("customers_%d", count) }

// Customers calls f for each customer in the data set of count customers
// whose name contains filter, ignoring case. An empty filter matches every
// customer. If the data set is not already stored, it is generated and saved
// first. Customers stops and returns the error if f reports an error.
func (s *Service) Customers(ctx context.Context, count int, filter string, f func(Customer) error) error {
	key := CustomersKey(count)
	if !s.st.Exists(key) {
		if err := s.generate(ctx, key, count); err != nil {
			return err
		}
	} else {
		s.log("Loading customer data from %q", key)
	}

	start := time.Now()
	cur, err := store.Load[Customer](s.st, key)
	if err != nil {
		return errors.Wrap(err, "load customers")
	}
	defer cur.Close()

	filter = strings.ToLower(filter)
	var nr, nm int
	err = cur.Each(func(c Customer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		nr++
		if filter != "" && !strings.Contains(strings.ToLower(c.Name), filter) {
			return nil
		}
		nm++
		return f(c)
	})
	if err != nil {
		return err
	}
	s.log("Read %d customers (%d matched) in %v", nr, nm, time.Since(start))
	return nil
}

func (s *Service) generate(ctx context.Context, key string, count int) error {
	s.log("Generating %d customers", count)
	start := time.Now()

	gctx, cancel := context.WithCancel(ctx)
	defer cancel() // stop the generator if saving fails
	n, err := store.Save(gctx, s.st, key, GenerateCustomers(gctx, s.seed, count))
	if err != nil {
		return errors.Wrap(err, "generate customers")
	}
	s.log("Generated and stored %d customers in %v", n, time.Since(start))
	return nil
}
