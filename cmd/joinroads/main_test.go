package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zverik/join-roads/pkg/store"
)

const testXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="55.0000" lon="37.0"/>
  <node id="2" lat="55.0010" lon="37.0"/>
  <node id="3" lat="55.0020" lon="37.0"/>
  <node id="4" lat="55.0021" lon="37.0"/>
  <node id="5" lat="55.0030" lon="37.0"/>
  <way id="1"><nd ref="1"/><nd ref="2"/><tag k="highway" v="primary"/><tag k="name" v="Main St"/></way>
  <way id="2"><nd ref="2"/><nd ref="3"/><tag k="highway" v="primary"/><tag k="name" v="Main St"/></way>
  <way id="3"><nd ref="5"/><nd ref="4"/><tag k="highway" v="primary"/><tag k="name" v="Main St"/></way>
  <way id="4"><nd ref="1"/><nd ref="5"/><tag k="highway" v="primary"/><tag k="ref" v="A1"/><tag k="oneway" v="-1"/></way>
  <way id="5"><nd ref="5"/><nd ref="3"/><tag k="highway" v="primary"/><tag k="ref" v="A1"/></way>
</osm>`

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.osm")
	if err := os.WriteFile(path, []byte(testXML), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestParseFlagsMissingInput(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseFlags(nil, &stderr)
	if !errors.Is(err, errUsage) {
		t.Fatalf("parseFlags() error = %v, want errUsage", err)
	}
	if !strings.Contains(stderr.String(), "Usage: joinroads") {
		t.Errorf("usage not printed: %q", stderr.String())
	}
}

func TestParseFlagsExtraArgs(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseFlags([]string{"-keys", "a.osm.pbf", "b.osm.pbf"}, &stderr)
	if !errors.Is(err, errUsage) {
		t.Fatalf("parseFlags() error = %v, want errUsage", err)
	}
	if !strings.Contains(stderr.String(), "Usage: joinroads") {
		t.Errorf("usage not printed: %q", stderr.String())
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-keys", "-output", "out.csv", "planet.osm.pbf"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.input != "planet.osm.pbf" || opts.output != "out.csv" || !opts.withKeys {
		t.Errorf("options = %+v", opts)
	}
}

func TestRunStdout(t *testing.T) {
	var stdout bytes.Buffer
	opts := options{input: writeInput(t), quiet: true}

	if err := run(context.Background(), opts, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	// Main St: ways 1 and 2 merge, way 3 stays alone. A1: way 5 is
	// appended at node 5 and way 4 keeps its reversal tag.
	want := "1,2\n-4,5\n"
	if got := stdout.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunFilesAndStore(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(cfgPath, []byte("gaps:\n  meters: 20\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	opts := options{
		input:      writeInput(t),
		configPath: cfgPath,
		output:     filepath.Join(dir, "roads.csv"),
		withKeys:   true,
		dbPath:     filepath.Join(dir, "roads.db"),
		gapsPath:   filepath.Join(dir, "gaps.csv"),
		quiet:      true,
	}

	if err := run(context.Background(), opts, &bytes.Buffer{}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	csvData, err := os.ReadFile(opts.output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got, want := string(csvData), "Main St,,1,2\n,A1,-4,5\n"; got != want {
		t.Errorf("csv = %q, want %q", got, want)
	}

	gapData, err := os.ReadFile(opts.gapsPath)
	if err != nil {
		t.Fatalf("read gaps: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(gapData)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "Main St,,11.1,3,4,") {
		t.Errorf("gaps = %q", gapData)
	}

	ctx := context.Background()
	db, err := store.Open(ctx, opts.dbPath)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer db.Close()
	runs, err := db.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Roads != 2 {
		t.Errorf("runs = %+v, want one run with 2 roads", runs)
	}
}

func TestRunGapsNeedDistance(t *testing.T) {
	opts := options{input: writeInput(t), gapsPath: filepath.Join(t.TempDir(), "g.csv"), quiet: true}
	if err := run(context.Background(), opts, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error when gaps.meters is zero")
	}
}

func TestRunUnknownFormat(t *testing.T) {
	opts := options{input: "roads.o5m", quiet: true}
	if err := run(context.Background(), opts, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
