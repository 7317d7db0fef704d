// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package dataset generates synthetic customer and sales data, and serves
// customer data memoised in a store.
package dataset

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// A Customer is a synthetic customer record.
type Customer struct {
	Name         string    `json:"name"`
	Birthday     time.Time `json:"birthday"`
	State        string    `json:"state"`
	AnnualIncome int       `json:"annualIncome"`
}

// Customers are between 18 and 98 years old, and earn between $20k and $200k.
const (
	minAge    = 18
	maxAge    = 98
	minIncome = 20_000
	maxIncome = 200_000
)

// GenerateCustomers returns a channel that delivers n synthetic customers and
// is then closed. The same nonzero seed yields the same names, states and
// incomes; a seed of 0 selects a random seed. Birthdays are relative to the
// current date. If ctx ends, the channel is closed early.
func GenerateCustomers(ctx context.Context, seed int64, n int) <-chan Customer {
	ch := make(chan Customer)
	go func() {
		defer close(ch)
		f := gofakeit.New(seed)
		today := time.Now().UTC().Truncate(24 * time.Hour)
		oldest := today.AddDate(-maxAge, 0, 0)
		youngest := today.AddDate(-minAge, 0, 0)
		for i := 0; i < n; i++ {
			c := Customer{
				Name:         f.Name(),
				Birthday:     f.DateRange(oldest, youngest).Truncate(24 * time.Hour),
				State:        f.StateAbr(),
				AnnualIncome: f.IntRange(minIncome, maxIncome),
			}
			select {
			case ch <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// A MenuItem is one line of a sales ticket.
type MenuItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// A Ticket is a synthetic sale at one store.
type Ticket struct {
	StoreID   int        `json:"storeId"`
	Timestamp time.Time  `json:"timestamp"`
	Items     []MenuItem `json:"items"`
}

// Total reports the total price of t.
func (t Ticket) Total() float64 {
	var sum float64
	for _, item := range t.Items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

// Quantity reports the number of items sold in t.
func (t Ticket) Quantity() int {
	var n int
	for _, item := range t.Items {
		n += item.Quantity
	}
	return n
}

// Menu is the list of items sold by every store.
var Menu = []string{"Burger", "Fries", "Soda", "Shake", "Salad"}

// Stores are open from OpenHour until the end of CloseHour, local time.
const (
	OpenHour  = 5
	CloseHour = 20
)

// GenerateTickets returns a channel that delivers, for each opening hour from
// start until end, a batch of the tickets sold in that hour by stores
// numbered 1 to stores. The channel is closed after the last batch, or early
// if ctx ends. Seeds behave as for GenerateCustomers.
func GenerateTickets(ctx context.Context, seed int64, stores int, start, end time.Time) <-chan []Ticket {
	ch := make(chan []Ticket)
	go func() {
		defer close(ch)
		f := gofakeit.New(seed)
		for hour := start.Truncate(time.Hour); !hour.After(end); hour = hour.Add(time.Hour) {
			if h := hour.Hour(); h < OpenHour || h > CloseHour {
				continue
			}
			var batch []Ticket
			for id := 1; id <= stores; id++ {
				for i, n := 0, f.IntRange(1, 20); i < n; i++ {
					t := Ticket{
						StoreID:   id,
						Timestamp: hour.Add(time.Duration(f.IntRange(0, 3599)) * time.Second),
					}
					for j, m := 0, f.IntRange(1, 5); j < m; j++ {
						t.Items = append(t.Items, MenuItem{
							Name:     f.RandomString(Menu),
							Price:    f.Float64Range(1, 2.5),
							Quantity: f.IntRange(1, 3),
						})
					}
					batch = append(batch, t)
				}
			}
			select {
			case ch <- batch:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
