// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package stats_test

import (
	"math"
	"testing"

	"github.com/creachadair/duplex/stats"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func statOf(vs ...float64) stats.Stat {
	var s stats.Stat
	for _, v := range vs {
		s.Update(v)
	}
	return s
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9*math.Max(1, math.Abs(b)) }

func checkStat(t *testing.T, label string, got stats.Stat, count int64, sum, min, max, mean, variance float64) {
	t.Helper()
	if got.Count != count {
		t.Errorf("%s: Count = %d, want %d", label, got.Count, count)
	}
	for _, c := range []struct {
		name      string
		got, want float64
	}{
		{"Sum", got.Sum, sum},
		{"Min", got.Min, min},
		{"Max", got.Max, max},
		{"Mean", got.Mean(), mean},
		{"Variance", got.Variance(), variance},
	} {
		if !near(c.got, c.want) {
			t.Errorf("%s: %s = %g, want %g", label, c.name, c.got, c.want)
		}
	}
}

func TestStat(t *testing.T) {
	checkStat(t, "empty", statOf(), 0, 0, 0, 0, 0, 0)
	checkStat(t, "single", statOf(-3), 1, -3, -3, -3, -3, 0)
	checkStat(t, "several", statOf(2, 4, 4, 4, 5, 5, 7, 9), 8, 40, 2, 9, 5, 4)

	if got := statOf(2, 4, 4, 4, 5, 5, 7, 9).StdDev(); !near(got, 2) {
		t.Errorf("StdDev: got %g, want 2", got)
	}
	if got := statOf().String(); got != "n=0" {
		t.Errorf("String: got %q, want n=0", got)
	}
	t.Logf("Stat: %v", statOf(1, 2, 3))
}

func TestMerge(t *testing.T) {
	vs := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7, 9}
	want := statOf(vs...)

	for i := 0; i <= len(vs); i++ {
		for j := i; j <= len(vs); j++ {
			a, b, c := statOf(vs[:i]...), statOf(vs[i:j]...), statOf(vs[j:]...)

			// (a + b) + c
			left := a
			left.Merge(b)
			left.Merge(c)

			// a + (b + c)
			bc := b
			bc.Merge(c)
			right := a
			right.Merge(bc)

			for _, got := range []stats.Stat{left, right} {
				checkStat(t, "merged", got, want.Count, want.Sum, want.Min, want.Max, want.Mean(), want.Variance())
			}
		}
	}

	// The empty Stat is an identity for Merge.
	s := statOf(1, 2)
	s.Merge(stats.Stat{})
	checkStat(t, "identity", s, 2, 3, 1, 2, 1.5, 0.25)
}

func TestKeyed(t *testing.T) {
	var k stats.Keyed
	k.Update("WA", 10)
	k.Update("OR", 5)
	k.Update("WA", 20)

	if diff := cmp.Diff([]string{"OR", "WA"}, k.Keys()); diff != "" {
		t.Errorf("Keys (-want, +got):\n%s", diff)
	}
	checkStat(t, "WA", k.Get("WA"), 2, 30, 10, 20, 15, 25)
	checkStat(t, "missing", k.Get("NV"), 0, 0, 0, 0, 0, 0)

	var o stats.Keyed
	o.Update("NV", 1)
	o.Update("WA", 30)
	k.Merge(&o)
	if diff := cmp.Diff([]string{"NV", "OR", "WA"}, k.Keys()); diff != "" {
		t.Errorf("Keys after merge (-want, +got):\n%s", diff)
	}
	checkStat(t, "WA merged", k.Get("WA"), 3, 60, 10, 30, 20, 200.0/3)

	total := k.Total()
	checkStat(t, "total", total, 5, 66, 1, 30, 13.2, statOf(10, 5, 20, 1, 30).Variance())

	opt := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff([]float64{total.Mean(), total.StdDev()},
		[]float64{statOf(10, 5, 20, 1, 30).Mean(), statOf(10, 5, 20, 1, 30).StdDev()}, opt); diff != "" {
		t.Errorf("Total (-want, +got):\n%s", diff)
	}
}
