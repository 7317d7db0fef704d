// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package stats computes summary statistics over streams of values.
//
// A Stat accumulates the count, sum, extrema, mean and variance of a sequence
// of values in constant space. Two Stats computed over disjoint sequences can
// be merged into the Stat of their concatenation, so partial results computed
// concurrently, or for the children of a hierarchy, can be combined without
// revisiting the data.
package stats

import (
	"fmt"
	"math"
	"sort"
)

// A Stat is a running summary of a sequence of values. The zero value is
// ready for use and summarizes the empty sequence.
type Stat struct {
	Count int64
	Sum   float64
	Min   float64 // meaningful only if Count > 0
	Max   float64 // meaningful only if Count > 0

	mean float64
	m2   float64 // sum of squared deviations from the mean
}

// Update adds v to the sequence summarized by s.
func (s *Stat) Update(v float64) {
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if s.Count == 0 || v > s.Max {
		s.Max = v
	}
	s.Count++
	s.Sum += v
	d := v - s.mean
	s.mean += d / float64(s.Count)
	s.m2 += d * (v - s.mean)
}

// Merge updates s to summarize the concatenation of its sequence with the
// sequence summarized by o. Merging an empty Stat has no effect.
func (s *Stat) Merge(o Stat) {
	switch {
	case o.Count == 0:
		return
	case s.Count == 0:
		*s = o
		return
	}
	if o.Min < s.Min {
		s.Min = o.Min
	}
	if o.Max > s.Max {
		s.Max = o.Max
	}
	n := s.Count + o.Count
	d := o.mean - s.mean
	s.m2 += o.m2 + d*d*float64(s.Count)*float64(o.Count)/float64(n)
	s.mean += d * float64(o.Count) / float64(n)
	s.Count = n
	s.Sum += o.Sum
}

// Mean reports the arithmetic mean of the values, or 0 if there are none.
func (s Stat) Mean() float64 { return s.mean }

// Variance reports the population variance of the values, or 0 if there are
// fewer than two.
func (s Stat) Variance() float64 {
	if s.Count < 2 {
		return 0
	}
	return s.m2 / float64(s.Count)
}

// StdDev reports the population standard deviation of the values.
func (s Stat) StdDev() float64 { return math.Sqrt(s.Variance()) }

func (s Stat) String() string {
	if s.Count == 0 {
		return "n=0"
	}
	return fmt.Sprintf("n=%d sum=%.2f min=%.2f max=%.2f mean=%.2f sd=%.2f",
		s.Count, s.Sum, s.Min, s.Max, s.Mean(), s.StdDev())
}

// Keyed is a collection of Stats indexed by key. The zero value is ready for
// use. A Keyed is not safe for concurrent use without synchronization.
type Keyed struct {
	m map[string]*Stat
}

// Update adds v to the Stat for key.
func (k *Keyed) Update(key string, v float64) { k.stat(key).Update(v) }

// Get returns the Stat for key, which is empty if no values were added.
func (k *Keyed) Get(key string) Stat {
	if s, ok := k.m[key]; ok {
		return *s
	}
	return Stat{}
}

// Keys returns the keys of k in sorted order.
func (k *Keyed) Keys() []string {
	keys := make([]string, 0, len(k.m))
	for key := range k.m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Total returns the merge of all the Stats in k.
func (k *Keyed) Total() Stat {
	var t Stat
	for _, key := range k.Keys() {
		t.Merge(*k.m[key])
	}
	return t
}

// Merge merges each Stat of o into the Stat of the same key in k.
func (k *Keyed) Merge(o *Keyed) {
	for key, s := range o.m {
		k.stat(key).Merge(*s)
	}
}

func (k *Keyed) stat(key string) *Stat {
	if k.m == nil {
		k.m = make(map[string]*Stat)
	}
	s, ok := k.m[key]
	if !ok {
		s = new(Stat)
		k.m[key] = s
	}
	return s
}
