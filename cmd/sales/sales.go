// Program sales generates synthetic hourly sales tickets for a chain of
// stores, and reports statistics per day and for the whole period. Daily
// summaries are computed per hour and merged, so no ticket is visited twice.
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
	"time"

	"github.com/creachadair/duplex/dataset"
)

var (
	numStores = flag.Int("stores", 200, "Number of stores")
	numDays   = flag.Int("days", 7, "Number of days of sales to generate")
	seed      = flag.Int64("seed", 1, "Random seed for generating data (0 for random)")
	doHourly  = flag.Bool("hourly", false, "Also print a line for each hour")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %s [options]

Generate synthetic sales tickets for the last -days days, and print summary
statistics of the ticket totals for each day and for the whole period.

Options:
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	if *numStores <= 0 || *numDays <= 0 {
		log.Fatal("You must provide positive -stores and -days")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	end := time.Now().UTC().Truncate(time.Hour)
	start := end.AddDate(0, 0, -*numDays)
	if _, err := report(ctx, os.Stdout, *seed, *numStores, start, end, *doHourly); err != nil {
		log.Fatalf("Interrupted: %v", err)
	}
}

// report generates the tickets sold by the given number of stores from start
// to end, and writes a summary line for each day (and each hour, if hourly is
// true) followed by a total. Each hour is summarized once; days and the total
// are merged from the hourly summaries. It returns the total.
func report(ctx context.Context, w io.Writer, seed int64, stores int, start, end time.Time, hourly bool) (*dataset.Sales, error) {
	var total, day dataset.Sales
	var curDay time.Time
	flush := func() {
		if day.Tickets() != 0 {
			printSummary(w, curDay.Format("2006-01-02"), &day)
			total.Merge(&day)
		}
		day = dataset.Sales{}
	}
	for batch := range dataset.GenerateTickets(ctx, seed, stores, start, end) {
		if len(batch) == 0 {
			continue
		}
		hour := batch[0].Timestamp.Truncate(time.Hour)
		if d := hour.Truncate(24 * time.Hour); !d.Equal(curDay) {
			flush()
			curDay = d
		}
		var part dataset.Sales
		for _, t := range batch {
			part.Update(t)
		}
		if hourly {
			printSummary(w, hour.Format("2006-01-02 15:04"), &part)
		}
		day.Merge(&part)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	flush()
	printSummary(w, "total", &total)
	return &total, nil
}

func printSummary(w io.Writer, label string, s *dataset.Sales) {
	t := s.Totals.Total()
	items := s.Items.Total()
	fmt.Fprintf(w, "%-16s tickets %7d  sales $%12.2f  avg $%6.2f  min $%6.2f  max $%6.2f  items/ticket %.2f\n",
		label, t.Count, t.Sum, t.Mean(), t.Min, t.Max, items.Mean())
}
