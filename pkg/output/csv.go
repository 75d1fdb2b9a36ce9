package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Zverik/join-roads/pkg/gaps"
	"github.com/Zverik/join-roads/pkg/merge"
)

// Options configures WriteCSV.
type Options struct {
	// WithKey prepends the name and ref columns to every line.
	WithKey bool
}

// WriteCSV writes one line per road: comma-joined way ids, negative for
// reversed ways.
func WriteCSV(w io.Writer, roads []merge.Road, opts Options) error {
	if !opts.WithKey {
		// Plain id lists never need quoting.
		for _, r := range roads {
			if _, err := io.WriteString(w, joinIDs(r)+"\n"); err != nil {
				return fmt.Errorf("write road: %w", err)
			}
		}
		return nil
	}

	cw := csv.NewWriter(w)
	for _, r := range roads {
		ids := r.Signed()
		rec := make([]string, 0, len(ids)+2)
		rec = append(rec, r.Key.Name, r.Key.Ref)
		for _, id := range ids {
			rec = append(rec, strconv.FormatInt(id, 10))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write road: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func joinIDs(r merge.Road) string {
	ids := r.Signed()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// WriteGaps writes the near-miss report with a header line.
func WriteGaps(w io.Writer, found []gaps.Gap) error {
	cw := csv.NewWriter(w)
	header := []string{"name", "ref", "meters", "node_a", "node_b", "ways_a", "ways_b"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, g := range found {
		rec := []string{
			g.Key.Name,
			g.Key.Ref,
			strconv.FormatFloat(g.Meters, 'f', 1, 64),
			strconv.FormatInt(g.A.Node, 10),
			strconv.FormatInt(g.B.Node, 10),
			joinIDs(g.A.Road),
			joinIDs(g.B.Road),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write gap: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
