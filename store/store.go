// Package store persists call-site snapshots in a SQLite database so
// specialization profiles can be compared across runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/chazu/arraycreate/vm/snapshot"
)

// ErrNoSnapshots is returned by Latest when the store is empty.
var ErrNoSnapshots = errors.New("store: no snapshots")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	context_id TEXT    NOT NULL,
	taken_at   INTEGER NOT NULL,
	data       BLOB    NOT NULL
);
CREATE TABLE IF NOT EXISTS site_stats (
	snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
	site        INTEGER NOT NULL,
	level       TEXT    NOT NULL,
	last_branch TEXT    NOT NULL,
	hits        INTEGER NOT NULL,
	misses      INTEGER NOT NULL,
	invocations INTEGER NOT NULL,
	hot         INTEGER NOT NULL,
	PRIMARY KEY (snapshot_id, site)
);
CREATE INDEX IF NOT EXISTS idx_site_stats_site ON site_stats(site);
`

// Store manages the profile database.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// SiteHistoryEntry is one row of a call site's history.
type SiteHistoryEntry struct {
	SnapshotID  int64
	TakenAt     int64
	Level       string
	Last        string
	Hits        uint64
	Misses      uint64
	Invocations uint64
	Hot         bool
}

// Open creates or opens a profile store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save stores snap and returns its row ID.
func (s *Store) Save(ctx context.Context, snap *snapshot.Snapshot) (int64, error) {
	data, err := snapshot.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("store: encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (context_id, taken_at, data) VALUES (?, ?, ?)`,
		snap.ContextID, snap.TakenAt, data)
	if err != nil {
		return 0, fmt.Errorf("store: insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: snapshot id: %w", err)
	}

	for _, rec := range snap.Sites {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO site_stats (snapshot_id, site, level, last_branch, hits, misses, invocations, hot)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, rec.Site, rec.Level, rec.Last, int64(rec.Hits), int64(rec.Misses), int64(rec.Invocations), rec.Hot)
		if err != nil {
			return 0, fmt.Errorf("store: insert site %d: %w", rec.Site, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return id, nil
}

// Latest returns the most recently saved snapshot.
func (s *Store) Latest(ctx context.Context) (*snapshot.Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots ORDER BY taken_at DESC, id DESC LIMIT 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshots
	}
	if err != nil {
		return nil, fmt.Errorf("store: query latest: %w", err)
	}
	return snapshot.Unmarshal(data)
}

// History returns up to limit entries for a call site, newest first.
func (s *Store) History(ctx context.Context, site int, limit int) ([]SiteHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT st.snapshot_id, sn.taken_at, st.level, st.last_branch, st.hits, st.misses, st.invocations, st.hot
		 FROM site_stats st JOIN snapshots sn ON sn.id = st.snapshot_id
		 WHERE st.site = ?
		 ORDER BY sn.taken_at DESC, st.snapshot_id DESC
		 LIMIT ?`, site, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query history: %w", err)
	}
	defer rows.Close()

	var out []SiteHistoryEntry
	for rows.Next() {
		var (
			e                     SiteHistoryEntry
			hits, misses, invokes int64
		)
		if err := rows.Scan(&e.SnapshotID, &e.TakenAt, &e.Level, &e.Last, &hits, &misses, &invokes, &e.Hot); err != nil {
			return nil, fmt.Errorf("store: scan history: %w", err)
		}
		e.Hits, e.Misses, e.Invocations = uint64(hits), uint64(misses), uint64(invokes)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of stored snapshots.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}
