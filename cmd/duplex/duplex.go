// Program duplex runs a fixed-length message exchange between a client and a
// server peer over a pair of in-memory channels, and reports what each side
// sent.
//
// Usage:
//
//	duplex [options]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/creachadair/duplex"
	"github.com/creachadair/duplex/channel"
	"github.com/creachadair/duplex/codec"
	"github.com/creachadair/duplex/metrics"
	"github.com/creachadair/duplex/peer"
	"gopkg.in/yaml.v3"
)

var (
	numMessages = flag.Int("n", 1000, "Messages sent in each direction (0 runs until interrupted)")
	throttle    = flag.Duration("throttle", 0, "Delay before processing each message (logs every message)")
	logEvery    = flag.Int("log-every", peer.DefaultLogEvery, "Log received messages at this interval when not throttled")
	capacity    = flag.Int("capacity", 0, "Channel capacity in bytes (0 for the default)")
	wireFormat  = flag.String("format", string(codec.Array), "Wire format")
	configFile  = flag.String("config", "", "Read settings from this YAML file (flags override)")
	doVerbose   = flag.Bool("v", false, "Enable verbose endpoint logging")
	doStats     = flag.Bool("stats", false, "Print per-session counters when done")
	timeout     = flag.Duration("timeout", 0, "Timeout for the whole exchange (0 for no timeout)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %s [options]

Run a message exchange between a client and a server peer connected by a pair
of bounded in-memory channels. Each peer sends a greeting, then replies once to
each message it receives, until it has sent -n messages.

Settings may also be read from a YAML file given by -config, whose keys are:

  messages, throttle, log_every, capacity, format, verbose, timeout

Flags given explicitly on the command line override the file.

The -format flag selects the wire format. The options are:

  array   -- a single streaming JSON array (default)
  lines   -- one JSON record per line
  varint  -- JSON records with a varint length prefix

Options:
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

// settings are the configurable parameters of a run.
type settings struct {
	Messages int           `yaml:"messages"`
	Throttle time.Duration `yaml:"throttle"`
	LogEvery int           `yaml:"log_every"`
	Capacity int           `yaml:"capacity"`
	Format   string        `yaml:"format"`
	Verbose  bool          `yaml:"verbose"`
	Timeout  time.Duration `yaml:"timeout"`
}

func main() {
	flag.Parse()
	if flag.NArg() != 0 {
		log.Fatal("This program takes no arguments")
	}
	cfg, err := loadSettings(*configFile)
	if err != nil {
		log.Fatalf("Loading settings: %v", err)
	}
	format, err := codec.ParseFormat(cfg.Format)
	if err != nil {
		log.Fatalf("Invalid format: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	pc := &peer.Config{
		Throttle:  cfg.Throttle,
		LogEvery:  cfg.LogEvery,
		Limit:     cfg.Messages,
		LogWriter: os.Stderr,
	}
	opts := &duplex.Options{
		Capacity: cfg.Capacity,
		Format:   format,
		Metrics:  metrics.New(),
	}
	if cfg.Verbose {
		opts.LogWriter = os.Stderr
	}

	start := time.Now()
	st, err := duplex.Exchange[duplex.Message, duplex.Message](ctx, peer.NewClient(pc), peer.NewServer(pc), opts)
	elapsed := time.Since(start)
	if err != nil {
		log.Printf("Exchange failed after %v: %v", elapsed, err)
	}

	fmt.Printf("client sent %d messages (%d bytes)\n", opts.Metrics.Counter("a.sent"), st.BytesAB)
	fmt.Printf("server sent %d messages (%d bytes)\n", opts.Metrics.Counter("b.sent"), st.BytesBA)
	fmt.Printf("%v elapsed (%s, capacity %d)\n", elapsed, format, channelCap(cfg.Capacity))
	if *doStats {
		for _, name := range opts.Metrics.Names() {
			fmt.Printf("  %-16s %d (max %d)\n", name, opts.Metrics.Counter(name), opts.Metrics.MaxValue(name))
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

// loadSettings returns the default settings, overlaid by the contents of the
// named YAML file if path != "", overlaid by any flags set explicitly.
func loadSettings(path string) (settings, error) {
	cfg := settings{
		Messages: *numMessages,
		Throttle: *throttle,
		LogEvery: *logEvery,
		Capacity: *capacity,
		Format:   *wireFormat,
		Verbose:  *doVerbose,
		Timeout:  *timeout,
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %q: %w", path, err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			cfg.Messages = *numMessages
		case "throttle":
			cfg.Throttle = *throttle
		case "log-every":
			cfg.LogEvery = *logEvery
		case "capacity":
			cfg.Capacity = *capacity
		case "format":
			cfg.Format = *wireFormat
		case "v":
			cfg.Verbose = *doVerbose
		case "timeout":
			cfg.Timeout = *timeout
		}
	})
	if cfg.Messages < 0 {
		return cfg, fmt.Errorf("invalid message count %d", cfg.Messages)
	}
	return cfg, nil
}

func channelCap(n int) int {
	if n < 1 {
		return channel.DefaultCapacity
	}
	return n
}
