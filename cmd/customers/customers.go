// Program customers reports income statistics by state for a synthetic
// customer data set. The data set is generated on first use and cached in a
// directory, so later runs stream it from disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/creachadair/duplex/dataset"
	"github.com/creachadair/duplex/stats"
	"github.com/creachadair/duplex/store"
)

var (
	cacheDir   = flag.String("dir", filepath.Join(os.TempDir(), "duplex-cache"), "Cache directory")
	numRecords = flag.Int("n", 100000, "Number of customers in the data set")
	nameFilter = flag.String("filter", "", "Include only customers whose name contains this string")
	seed       = flag.Int64("seed", 1, "Random seed for generating data (0 for random)")
	doRefresh  = flag.Bool("refresh", false, "Regenerate the data set even if it is cached")
	doVerbose  = flag.Bool("v", false, "Enable verbose logging")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %s [options]

Generate (or load from the cache) a data set of synthetic customers, and print
summary statistics of their annual income for each state.

Options:
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	if *numRecords <= 0 {
		log.Fatal("You must provide a positive -n")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := store.New(*cacheDir)
	if err != nil {
		log.Fatalf("Opening cache: %v", err)
	}
	if *doRefresh {
		if err := st.Remove(dataset.CustomersKey(*numRecords)); err != nil {
			log.Fatalf("Refresh: %v", err)
		}
	}
	opts := &dataset.ServiceOptions{Seed: *seed}
	if *doVerbose {
		opts.LogWriter = os.Stderr
	}
	svc := dataset.NewService(st, opts)

	start := time.Now()
	byState, err := incomeByState(ctx, svc, *numRecords, *nameFilter)
	if err != nil {
		log.Fatalf("Reading customers: %v", err)
	}
	if err := printTable(os.Stdout, byState); err != nil {
		log.Fatalf("Printing: %v", err)
	}
	fmt.Fprintf(os.Stderr, "%v elapsed\n", time.Since(start))
}

// incomeByState summarizes the annual income of the customers in the data set
// of n customers whose names contain filter, grouped by state.
func incomeByState(ctx context.Context, svc *dataset.Service, n int, filter string) (*stats.Keyed, error) {
	byState := new(stats.Keyed)
	err := svc.Customers(ctx, n, filter, func(c dataset.Customer) error {
		byState.Update(c.State, float64(c.AnnualIncome))
		return nil
	})
	return byState, err
}

// printTable writes one row for each state in byState, followed by a row for
// all states together.
func printTable(w io.Writer, byState *stats.Keyed) error {
	tw := tabwriter.NewWriter(w, 4, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "state\tcount\tmean\tstddev\tmin\tmax\t")
	row := func(label string, s stats.Stat) {
		fmt.Fprintf(tw, "%s\t%d\t%.0f\t%.0f\t%.0f\t%.0f\t\n", label, s.Count, s.Mean(), s.StdDev(), s.Min, s.Max)
	}
	for _, key := range byState.Keys() {
		row(key, byState.Get(key))
	}
	row("all", byState.Total())
	return tw.Flush()
}
