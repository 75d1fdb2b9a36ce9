package osm

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"slices"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"

	"github.com/Zverik/join-roads/pkg/config"
	"github.com/Zverik/join-roads/pkg/geo"
	"github.com/Zverik/join-roads/pkg/merge"
)

// Format is an OSM file encoding.
type Format int

const (
	FormatPBF Format = iota
	FormatXML
)

func (f Format) String() string {
	if f == FormatXML {
		return "xml"
	}
	return "pbf"
}

// FormatFor picks the decoder from the file extension.
func FormatFor(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pbf":
		return FormatPBF, nil
	case ".osm", ".xml":
		return FormatXML, nil
	}
	return 0, fmt.Errorf("unsupported OSM file extension %q", ext)
}

// Observer is called periodically while ways are streamed.
type Observer func(count int64, lastWay int64)

// StreamOptions configures Stream.
type StreamOptions struct {
	Tags         config.Tags
	Observer     Observer // optional
	ObserveEvery int      // ways between Observer calls
}

// scanner opens the decoder for format. Node or way decoding can be
// skipped for PBF input; the XML decoder always yields everything.
func scanner(ctx context.Context, r io.Reader, format Format, skipNodes, skipWays bool) osm.Scanner {
	if format == FormatXML {
		return osmxml.New(ctx, r)
	}
	s := osmpbf.New(ctx, r, 1)
	s.SkipNodes = skipNodes
	s.SkipWays = skipWays
	s.SkipRelations = true
	return s
}

// Segment converts a way into a merge segment. It returns false for ways
// with fewer than two nodes.
func Segment(w *osm.Way, tags config.Tags) (merge.Segment, bool) {
	if len(w.Nodes) < 2 {
		return merge.Segment{}, false
	}
	return merge.Segment{
		ID:       int64(w.ID),
		Start:    int64(w.Nodes[0].ID),
		End:      int64(w.Nodes[len(w.Nodes)-1].ID),
		Reversed: isReversed(w.Tags, tags),
		Road:     w.Tags.HasTag(tags.Highway),
		Name:     w.Tags.Find(tags.Name),
		Ref:      w.Tags.Find(tags.Ref),
	}, true
}

// isReversed reports whether the way's logical direction runs against its
// node order.
func isReversed(wt osm.Tags, tags config.Tags) bool {
	if tags.Reverse == "" {
		return false
	}
	v := wt.Find(tags.Reverse)
	return v != "" && slices.Contains(tags.ReverseValues, v)
}

// Stream reads every way from r and passes it to fn as a segment, in file
// order. Ways with fewer than two nodes are skipped. Stream stops at the
// first error returned by fn.
func Stream(ctx context.Context, r io.Reader, format Format, opts StreamOptions, fn func(merge.Segment) error) error {
	s := scanner(ctx, r, format, true, false)
	defer s.Close()

	var count, skipped int64
	for s.Scan() {
		w, ok := s.Object().(*osm.Way)
		if !ok {
			continue
		}

		count++
		if opts.Observer != nil && opts.ObserveEvery > 0 && count%int64(opts.ObserveEvery) == 0 {
			opts.Observer(count, int64(w.ID))
		}

		seg, ok := Segment(w, opts.Tags)
		if !ok {
			skipped++
			continue
		}
		if err := fn(seg); err != nil {
			return fmt.Errorf("way %d: %w", w.ID, err)
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("scan ways: %w", err)
	}

	if skipped > 0 {
		log.Printf("Skipped %d ways with fewer than 2 nodes", skipped)
	}
	return nil
}

// LocateNodes reads node coordinates for the requested ids. Ids that are
// not found in r are absent from the result.
func LocateNodes(ctx context.Context, r io.Reader, format Format, ids map[int64]struct{}) (map[int64]geo.Point, error) {
	coords := make(map[int64]geo.Point, len(ids))
	if len(ids) == 0 {
		return coords, nil
	}

	s := scanner(ctx, r, format, false, true)
	defer s.Close()

	for s.Scan() {
		n, ok := s.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := ids[int64(n.ID)]; !needed {
			continue
		}
		coords[int64(n.ID)] = geo.Point{Lat: n.Lat, Lon: n.Lon}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan nodes: %w", err)
	}

	if missing := len(ids) - len(coords); missing > 0 {
		log.Printf("Warning: %d requested nodes not found", missing)
	}
	return coords, nil
}
