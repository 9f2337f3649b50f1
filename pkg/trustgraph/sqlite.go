// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package trustgraph

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists ledger entries in SQLite. Timestamps are stored as
// RFC 3339 strings so that reloaded entries hash to exactly the same value
// they were written with.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed store and ensures schema. The
// store takes ownership of db and closes it on Close.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureTrustGraphSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// OpenSQLiteStore opens the database file at path and returns a store.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite ledger: %w", err)
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Head returns the hash of the most recently inserted entry.
func (s *SQLiteStore) Head(ctx context.Context) (string, bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT current_hash FROM trustgraph_entries ORDER BY id DESC LIMIT 1
	`).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

// Append stores a single entry.
func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	action, err := json.Marshal(e.Action)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trustgraph_entries (
			entry_id, kind, action_json, previous_hash, current_hash, external_ref, verified, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.EntryID,
		string(e.Action.Kind),
		string(action),
		e.PrevHash,
		e.Hash,
		e.ExternalRef,
		e.Verified,
		e.RecordedAt.Format(time.RFC3339Nano),
	)
	return err
}

// List returns entries matching the filter in write order.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `
		SELECT entry_id, action_json, previous_hash, current_hash, external_ref, verified, recorded_at
		FROM trustgraph_entries
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if f.Kind != "" {
		addFilter("kind = ?", string(f.Kind))
	}
	query += where + " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			actionJSON string
			recorded   string
		)
		if err := rows.Scan(
			&e.EntryID,
			&actionJSON,
			&e.PrevHash,
			&e.Hash,
			&e.ExternalRef,
			&e.Verified,
			&recorded,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(actionJSON), &e.Action); err != nil {
			return nil, fmt.Errorf("decode action for entry %s: %w", e.EntryID, err)
		}
		e.RecordedAt, err = time.Parse(time.RFC3339Nano, recorded)
		if err != nil {
			return nil, fmt.Errorf("decode recorded_at for entry %s: %w", e.EntryID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tailLimit(entries, f.Limit), nil
}

// Count returns the total number of entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trustgraph_entries`).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func ensureTrustGraphSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trustgraph_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			action_json TEXT NOT NULL,
			previous_hash TEXT NOT NULL,
			current_hash TEXT NOT NULL,
			external_ref TEXT,
			verified INTEGER NOT NULL DEFAULT 0,
			recorded_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_trustgraph_kind ON trustgraph_entries(kind);
	`)
	return err
}
