package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zverik/join-roads/pkg/config"
	"github.com/Zverik/join-roads/pkg/gaps"
	"github.com/Zverik/join-roads/pkg/merge"
	osmreader "github.com/Zverik/join-roads/pkg/osm"
	"github.com/Zverik/join-roads/pkg/output"
	"github.com/Zverik/join-roads/pkg/progress"
	"github.com/Zverik/join-roads/pkg/store"
)

const usage = `Merges ways with similar name and ref tags and produces a csv file
Usage: joinroads [flags] <file.osm.pbf>`

// errUsage means the command line did not name exactly one input file.
var errUsage = errors.New("expected one input file")

type options struct {
	input      string
	configPath string
	output     string
	withKeys   bool
	dbPath     string
	gapsPath   string
	quiet      bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("joinroads", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (defaults built in)")
	fs.StringVar(&opts.output, "output", "", "CSV output path (default stdout)")
	fs.BoolVar(&opts.withKeys, "keys", false, "Prefix every line with the name and ref columns")
	fs.StringVar(&opts.dbPath, "db", "", "Also store the result in this SQLite database")
	fs.StringVar(&opts.gapsPath, "gaps", "", "Write chain ends closer than gaps.meters to this CSV file")
	fs.BoolVar(&opts.quiet, "quiet", false, "Do not print progress")
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, errUsage
	}
	opts.input = fs.Arg(0)
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	if opts.gapsPath != "" && cfg.Gaps.Meters <= 0 {
		return errors.New("-gaps needs gaps.meters > 0 in the config file")
	}

	format, err := osmreader.FormatFor(opts.input)
	if err != nil {
		return err
	}

	start := time.Now()

	f, err := os.Open(opts.input)
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	// Step 1: Stream ways into the index.
	idx := merge.NewGroupIndex()
	streamOpts := osmreader.StreamOptions{
		Tags:         cfg.Tags,
		ObserveEvery: cfg.Progress.Every,
	}
	var reporter *progress.Reporter
	if !opts.quiet {
		reporter = progress.NewReporter(stderr, cfg.Progress.MaxWayID)
		streamOpts.Observer = reporter.Observe
	}

	err = osmreader.Stream(ctx, f, format, streamOpts, func(seg merge.Segment) error {
		idx.Process(seg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("read ways: %w", err)
	}
	if reporter != nil {
		reporter.Done()
	}

	st := idx.Stats()
	roads := idx.Finalize()
	log.Printf("Merged %d road ways under %d keys into %d chains, %d with more than one way",
		st.Segments, st.Keys, st.Chains, len(roads))

	// Step 2: Write CSV.
	if err := writeRoads(opts, roads, stdout); err != nil {
		return err
	}

	// Step 3: Optional SQLite copy.
	if opts.dbPath != "" {
		db, err := store.Open(ctx, opts.dbPath)
		if err != nil {
			return err
		}
		id, err := db.SaveRun(ctx, opts.input, roads)
		db.Close()
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		log.Printf("Stored run %s in %s", id, opts.dbPath)
	}

	// Step 4: Optional gap report, needs a second pass for node coordinates.
	if opts.gapsPath != "" {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("seek for node pass: %w", err)
		}
		all := idx.Roads(1)
		coords, err := osmreader.LocateNodes(ctx, f, format, gaps.Endpoints(all))
		if err != nil {
			return fmt.Errorf("read nodes: %w", err)
		}
		found := gaps.Find(all, coords, cfg.Gaps.Meters)
		if err := writeFile(opts.gapsPath, func(w io.Writer) error { return output.WriteGaps(w, found) }); err != nil {
			return err
		}
		log.Printf("Found %d gaps within %.0f m", len(found), cfg.Gaps.Meters)
	}

	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func writeRoads(opts options, roads []merge.Road, stdout io.Writer) error {
	write := func(w io.Writer) error {
		return output.WriteCSV(w, roads, output.Options{WithKey: opts.withKeys})
	}
	if opts.output == "" {
		return write(stdout)
	}
	return writeFile(opts.output, write)
}

// writeFile writes to a temp file next to path and renames it into place.
func writeFile(path string, write func(io.Writer) error) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
