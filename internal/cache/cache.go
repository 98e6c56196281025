// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists remote lookup results in a local SQLite database
// so repeated validation runs do not hammer the source APIs. Entries live
// for a fixed TTL; there is no other eviction policy.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bibcheck/pkg/types"
)

const dbFile = "lookups.db"

// DefaultTTL is used when the config does not set one.
const DefaultTTL = 7 * 24 * time.Hour

// Store is the on-disk lookup cache. A cached row holds the full decoded
// candidate list for one (source, kind, query) lookup; empty lists are
// cached too, so repeated misses also skip the network.
type Store struct {
	db  *sql.DB
	ttl time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// Open opens or creates the cache database at cfg.Dir/lookups.db and
// creates the schema if needed.
func Open(cfg types.CacheConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Store{db: db, ttl: ttl, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS lookups (
		source     TEXT NOT NULL,
		kind       TEXT NOT NULL,
		query      TEXT NOT NULL,
		records    TEXT NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (source, kind, query)
	)`)
	return err
}

// Get returns the cached candidate list for a lookup. Expired rows count
// as misses (ok=false) but are left in place for Prune.
func (s *Store) Get(ctx context.Context, source, kind, query string) ([]types.Record, bool, error) {
	var recordsJSON string
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT records, fetched_at FROM lookups WHERE source = ? AND kind = ? AND query = ?`,
		source, kind, query,
	).Scan(&recordsJSON, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache: %w", err)
	}

	if s.now().Unix()-fetchedAt > int64(s.ttl.Seconds()) {
		return nil, false, nil
	}

	var records []types.Record
	if err := json.Unmarshal([]byte(recordsJSON), &records); err != nil {
		return nil, false, fmt.Errorf("decoding cached records: %w", err)
	}
	return records, true, nil
}

// Put stores the candidate list for a lookup, replacing any prior row.
func (s *Store) Put(ctx context.Context, source, kind, query string, records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lookups (source, kind, query, records, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source, kind, query) DO UPDATE SET
			records=excluded.records, fetched_at=excluded.fetched_at`,
		source, kind, query, string(data), s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Prune deletes expired rows and returns how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	cutoff := s.now().Unix() - int64(s.ttl.Seconds())
	res, err := s.db.ExecContext(ctx, `DELETE FROM lookups WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every row and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lookups`)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return res.RowsAffected()
}

// Stats reports the total and expired row counts.
func (s *Store) Stats(ctx context.Context) (total, expired int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT count(*) FROM lookups`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("counting cache rows: %w", err)
	}
	cutoff := s.now().Unix() - int64(s.ttl.Seconds())
	err = s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM lookups WHERE fetched_at < ?`, cutoff,
	).Scan(&expired)
	if err != nil {
		return 0, 0, fmt.Errorf("counting expired cache rows: %w", err)
	}
	return total, expired, nil
}
