package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/Zverik/join-roads/pkg/merge"
)

// Run describes one stored merge result.
type Run struct {
	ID        string
	Source    string
	CreatedAt time.Time
	Roads     int
}

// Store keeps merge results in a SQLite database.
type Store struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

// Open opens (or creates) the database at path with WAL mode enabled.
func Open(ctx context.Context, path string) (*Store, error) {
	// foreign_keys is per connection, so it goes into the DSN for every
	// connection the pool opens.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db, entropy: ulid.Monotonic(rand.Reader, 0)}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	created_at TEXT NOT NULL,
	road_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS roads (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	name TEXT NOT NULL,
	ref TEXT NOT NULL,
	ways TEXT NOT NULL,
	start_node INTEGER NOT NULL,
	end_node INTEGER NOT NULL,
	closed INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY(run_id, seq),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_roads_key ON roads(name, ref);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores roads under a new run id and returns that id.
func (s *Store) SaveRun(ctx context.Context, source string, roads []merge.Road) (string, error) {
	id := ulid.MustNew(ulid.Now(), s.entropy).String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (id, source, created_at, road_count) VALUES (?, ?, ?, ?)",
		id, source, time.Now().UTC().Format(time.RFC3339), len(roads))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO roads (run_id, seq, name, ref, ways, start_node, end_node, closed) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return "", fmt.Errorf("prepare roads: %w", err)
	}
	defer stmt.Close()

	for i, r := range roads {
		closed := 0
		if r.Closed {
			closed = 1
		}
		if _, err := stmt.ExecContext(ctx, id, i, r.Key.Name, r.Key.Ref, encodeWays(r.Links), r.Start, r.End, closed); err != nil {
			return "", fmt.Errorf("insert road %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Roads returns the roads of a run in their original order.
func (s *Store) Roads(ctx context.Context, runID string) ([]merge.Road, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, ref, ways, start_node, end_node, closed FROM roads WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, fmt.Errorf("query roads: %w", err)
	}
	defer rows.Close()

	var roads []merge.Road
	for rows.Next() {
		var r merge.Road
		var ways string
		var closed int
		if err := rows.Scan(&r.Key.Name, &r.Key.Ref, &ways, &r.Start, &r.End, &closed); err != nil {
			return nil, fmt.Errorf("scan road: %w", err)
		}
		if r.Links, err = decodeWays(ways); err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		r.Closed = closed != 0
		roads = append(roads, r)
	}
	return roads, rows.Err()
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, source, created_at, road_count FROM runs ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Source, &created, &r.Roads); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// encodeWays stores links the same way the CSV output does.
func encodeWays(links []merge.Link) string {
	parts := make([]string, len(links))
	for i, l := range links {
		parts[i] = strconv.FormatInt(l.Signed(), 10)
	}
	return strings.Join(parts, ",")
}

func decodeWays(s string) ([]merge.Link, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	links := make([]merge.Link, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad way id %q: %w", p, err)
		}
		if id < 0 {
			links[i] = merge.Link{ID: -id, Reversed: true}
		} else {
			links[i] = merge.Link{ID: id}
		}
	}
	return links, nil
}
