// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package dataset

import (
	"strconv"

	"github.com/creachadair/duplex/stats"
)

// Sales summarizes tickets per store. Summaries of disjoint sets of tickets,
// for example of different periods or regions, are combined with Merge.
type Sales struct {
	Totals stats.Keyed // ticket totals, by store ID
	Items  stats.Keyed // items per ticket, by store ID
}

// Update adds t to the summary.
func (s *Sales) Update(t Ticket) {
	key := strconv.Itoa(t.StoreID)
	s.Totals.Update(key, t.Total())
	s.Items.Update(key, float64(t.Quantity()))
}

// Merge adds the tickets summarized by o to s.
func (s *Sales) Merge(o *Sales) {
	s.Totals.Merge(&o.Totals)
	s.Items.Merge(&o.Items)
}

// Tickets reports the number of tickets summarized.
func (s *Sales) Tickets() int64 { return s.Totals.Total().Count }

// Revenue reports the total price of all tickets summarized.
func (s *Sales) Revenue() float64 { return s.Totals.Total().Sum }
