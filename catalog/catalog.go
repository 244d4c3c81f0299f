// Package catalog keeps descriptor snapshots in a SQLite database.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/udrefl/snapshot"
)

var log = commonlog.GetLogger("udrefl.catalog")

// ErrNotFound indicates the requested snapshot doesn't exist
var ErrNotFound = errors.New("catalog: snapshot not found")

// Summary describes a stored snapshot without decoding it.
type Summary struct {
	ID        uuid.UUID
	Source    string
	Arch      string
	Types     int
	CreatedAt time.Time
}

// Catalog is a SQLite-backed snapshot store.
type Catalog struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens the catalog at path, creating the file, its directory and the
// schema if needed.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("catalog: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		id         TEXT PRIMARY KEY,
		source     TEXT NOT NULL,
		arch       TEXT NOT NULL,
		types      INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		data       BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: creating table: %w", err)
	}

	return &Catalog{db: db, path: path}, nil
}

// Path returns the database file the catalog was opened on.
func (c *Catalog) Path() string { return c.path }

// Close closes the database connection
func (c *Catalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Put stores s, replacing any snapshot with the same ID.
func (c *Catalog) Put(s *snapshot.Snapshot) error {
	data, err := snapshot.Marshal(s)
	if err != nil {
		return fmt.Errorf("catalog: encoding snapshot: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO snapshots (id, source, arch, types, created_at, data) VALUES (?, ?, ?, ?, ?, ?)",
		s.ID.String(), s.Source, s.Arch, len(s.Types), time.Now().UnixNano(), data,
	)
	if err != nil {
		return fmt.Errorf("catalog: saving snapshot: %w", err)
	}
	log.Infof("stored snapshot %s of %s (%d types)", s.ID, s.Source, len(s.Types))
	return nil
}

// Get loads the snapshot with the given ID.
func (c *Catalog) Get(id uuid.UUID) (*snapshot.Snapshot, error) {
	var data []byte
	err := c.db.QueryRow("SELECT data FROM snapshots WHERE id = ?", id.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalog: querying snapshot: %w", err)
	}
	return snapshot.Unmarshal(data)
}

// List returns summaries of every stored snapshot, newest first.
func (c *Catalog) List() ([]Summary, error) {
	rows, err := c.db.Query("SELECT id, source, arch, types, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("catalog: listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			id      string
			created int64
			s       Summary
		)
		if err := rows.Scan(&id, &s.Source, &s.Arch, &s.Types, &created); err != nil {
			return nil, fmt.Errorf("catalog: scanning snapshot: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("catalog: bad snapshot id %q: %w", id, err)
		}
		s.CreatedAt = time.Unix(0, created)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the snapshot with the given ID.
func (c *Catalog) Delete(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.Exec("DELETE FROM snapshots WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("catalog: deleting snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
