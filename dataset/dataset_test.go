// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package dataset_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/creachadair/duplex/dataset"
	"github.com/creachadair/duplex/store"
	"github.com/fortytw2/leaktest"
	"github.com/google/go-cmp/cmp"
)

func collect[T any](ch <-chan T) []T {
	var out []T
	for v := range ch {
		out = append(out, v)
	}
	return out
}

func TestGenerateCustomers(t *testing.T) {
	defer leaktest.Check(t)()

	ctx := context.Background()
	cs := collect(dataset.GenerateCustomers(ctx, 17, 200))
	if len(cs) != 200 {
		t.Fatalf("Got %d customers, want 200", len(cs))
	}
	now := time.Now()
	for _, c := range cs {
		if c.Name == "" {
			t.Errorf("Customer %+v has no name", c)
		}
		if len(c.State) != 2 {
			t.Errorf("Customer %+v has state %q, want a two-letter code", c, c.State)
		}
		if c.AnnualIncome < 20_000 || c.AnnualIncome > 200_000 {
			t.Errorf("Customer %+v has income out of range", c)
		}
		if age := now.Sub(c.Birthday).Hours() / 24 / 365.25; age < 17.9 || age > 98.1 {
			t.Errorf("Customer %+v has age %.1f, out of range", c, age)
		}
	}

	// The same seed produces the same customers.
	again := collect(dataset.GenerateCustomers(ctx, 17, 200))
	names := func(cs []dataset.Customer) (out []string) {
		for _, c := range cs {
			out = append(out, c.Name+"/"+c.State)
		}
		return
	}
	if diff := cmp.Diff(names(cs), names(again)); diff != "" {
		t.Errorf("Same seed (-first, +second):\n%s", diff)
	}
}

func TestGenerateCancel(t *testing.T) {
	defer leaktest.Check(t)()

	ctx, cancel := context.WithCancel(context.Background())
	ch := dataset.GenerateCustomers(ctx, 1, 1000000)
	<-ch
	cancel()
	for range ch {
		// drain until the generator notices
	}
}

func TestGenerateTickets(t *testing.T) {
	defer leaktest.Check(t)()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(47 * time.Hour)
	batches := collect(dataset.GenerateTickets(context.Background(), 3, 4, start, end))

	// Stores are open 16 hours a day.
	if len(batches) != 32 {
		t.Errorf("Got %d batches, want 32", len(batches))
	}
	var total dataset.Sales
	for _, batch := range batches {
		if len(batch) < 4 || len(batch) > 80 {
			t.Errorf("Batch has %d tickets, want between 4 and 80", len(batch))
		}
		var part dataset.Sales
		for _, tk := range batch {
			if h := tk.Timestamp.Hour(); h < dataset.OpenHour || h > dataset.CloseHour {
				t.Errorf("Ticket at %v is outside opening hours", tk.Timestamp)
			}
			if tk.StoreID < 1 || tk.StoreID > 4 {
				t.Errorf("Ticket has store ID %d", tk.StoreID)
			}
			if n := len(tk.Items); n < 1 || n > 5 {
				t.Errorf("Ticket has %d items", n)
			}
			for _, item := range tk.Items {
				if item.Price < 1 || item.Price > 2.5 || item.Quantity < 1 || item.Quantity > 3 {
					t.Errorf("Invalid item %+v", item)
				}
			}
			part.Update(tk)
		}
		total.Merge(&part)
	}

	// Merging per-hour summaries agrees with a single pass.
	var flat dataset.Sales
	for _, batch := range batches {
		for _, tk := range batch {
			flat.Update(tk)
		}
	}
	if total.Tickets() != flat.Tickets() {
		t.Errorf("Merged tickets = %d, want %d", total.Tickets(), flat.Tickets())
	}
	if math.Abs(total.Revenue()-flat.Revenue()) > 1e-6 {
		t.Errorf("Merged revenue = %.4f, want %.4f", total.Revenue(), flat.Revenue())
	}
	if diff := cmp.Diff([]string{"1", "2", "3", "4"}, total.Totals.Keys()); diff != "" {
		t.Errorf("Store keys (-want, +got):\n%s", diff)
	}
}

func TestTicket(t *testing.T) {
	tk := dataset.Ticket{Items: []dataset.MenuItem{
		{Name: "Burger", Price: 2.5, Quantity: 2},
		{Name: "Soda", Price: 1.25, Quantity: 1},
	}}
	if got := tk.Total(); got != 6.25 {
		t.Errorf("Total: got %v, want 6.25", got)
	}
	if got := tk.Quantity(); got != 3 {
		t.Errorf("Quantity: got %d, want 3", got)
	}
}

func TestServiceCustomers(t *testing.T) {
	defer leaktest.Check(t)()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	var logs bytes.Buffer
	svc := dataset.NewService(st, &dataset.ServiceOptions{Seed: 5, LogWriter: &logs})
	ctx := context.Background()

	var all []dataset.Customer
	if err := svc.Customers(ctx, 50, "", func(c dataset.Customer) error {
		all = append(all, c)
		return nil
	}); err != nil {
		t.Fatalf("Customers: %v", err)
	}
	if len(all) != 50 {
		t.Errorf("Got %d customers, want 50", len(all))
	}
	if !st.Exists(dataset.CustomersKey(50)) {
		t.Errorf("Data set %q was not stored", dataset.CustomersKey(50))
	}
	if !strings.Contains(logs.String(), "Generating 50 customers") {
		t.Errorf("Missing generation log:\n%s", logs.String())
	}

	// The second request is served from the store, filtered by name.
	filter := strings.ToUpper(all[0].Name[:2])
	var want []dataset.Customer
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter)) {
			want = append(want, c)
		}
	}
	logs.Reset()
	var got []dataset.Customer
	if err := svc.Customers(ctx, 50, filter, func(c dataset.Customer) error {
		got = append(got, c)
		return nil
	}); err != nil {
		t.Fatalf("Customers: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Filtered customers (-want, +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "Loading customer data") {
		t.Errorf("Missing load log:\n%s", logs.String())
	}

	// An error from the callback stops the iteration.
	stop := errors.New("stop")
	var n int
	err = svc.Customers(ctx, 50, "", func(dataset.Customer) error {
		n++
		if n == 3 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) || n != 3 {
		t.Errorf("Customers: got (%d, %v), want (3, %v)", n, err, stop)
	}
}
