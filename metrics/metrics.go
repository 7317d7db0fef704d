// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package metrics defines a concurrently-accessible collector for the
// counters and high-water marks of a duplex session.
//
// A *metrics.M tracks named metrics, each of which has a running total (for
// example, bytes copied in one direction or messages encoded by an endpoint)
// and a high-water mark (for example, the largest chunk moved by a single
// copy). The names are assigned by the caller and are not interpreted.
package metrics

import (
	"sort"
	"sync"
)

// An M collects counters and maximum value trackers. A nil *M is valid, and
// discards all metrics. The methods of an *M are safe for concurrent use by
// multiple goroutines.
type M struct {
	mu  sync.Mutex
	val map[string]*entry
}

// An entry is the state of one named metric. A metric is reported as a
// counter once it has been counted, and as a max value once a maximum has
// been recorded; it may be both.
type entry struct {
	total, max     int64
	counted, maxed bool
}

// New creates a new, empty metrics collector.
func New() *M { return &M{val: make(map[string]*entry)} }

// update calls f with the entry for name under the lock, creating the entry
// if needed. It does nothing if m == nil.
func (m *M) update(name string, f func(*entry)) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.val[name]
	if !ok {
		e = new(entry)
		m.val[name] = e
	}
	f(e)
}

func (e *entry) add(n int64) { e.total += n; e.counted = true }

func (e *entry) raise(n int64) {
	if !e.maxed || n > e.max {
		e.max = n
	}
	e.maxed = true
}

// Count adds n to the counter named.
func (m *M) Count(name string, n int64) { m.update(name, func(e *entry) { e.add(n) }) }

// SetMaxValue raises the max value tracker named to n, if n is greater than
// its current value.
func (m *M) SetMaxValue(name string, n int64) { m.update(name, func(e *entry) { e.raise(n) }) }

// CountAndSetMax adds n to the counter named, and raises the max value
// tracker of the same name to n, in a single step.
func (m *M) CountAndSetMax(name string, n int64) {
	m.update(name, func(e *entry) { e.add(n); e.raise(n) })
}

// get returns a copy of the entry for name, or a zero entry.
func (m *M) get(name string) entry {
	if m == nil {
		return entry{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.val[name]; ok {
		return *e
	}
	return entry{}
}

// Counter reports the current value of the counter named, or 0.
func (m *M) Counter(name string) int64 { return m.get(name).total }

// MaxValue reports the current value of the max value tracker named, or 0.
func (m *M) MaxValue(name string) int64 { return m.get(name).max }

// Names returns the names of all defined counters in sorted order.
func (m *M) Names() []string {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for name, e := range m.val {
		if e.counted {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Snapshot copies a consistent view of the counters into counters and of the
// max value trackers into maxValues. Either map may be nil, in which case
// that kind of metric is skipped.
func (m *M) Snapshot(counters, maxValues map[string]int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, e := range m.val {
		if e.counted && counters != nil {
			counters[name] = e.total
		}
		if e.maxed && maxValues != nil {
			maxValues[name] = e.max
		}
	}
}
