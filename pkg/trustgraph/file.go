// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package trustgraph

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// maxLineBytes bounds a single serialized entry when scanning the file.
const maxLineBytes = 10 * 1024 * 1024

// FileStore persists ledger entries as one JSON object per line. The format
// matches what earlier deployments produced, so existing ledgers can be
// opened and extended in place.
type FileStore struct {
	mu    sync.Mutex
	path  string
	f     *os.File
	head  string
	count int
}

// NewFileStore opens or creates the ledger file at path and scans it to
// recover the chain head. A file that cannot be parsed, including one with
// a truncated final line, is reported as an error rather than treated as a
// fresh chain.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	s := &FileStore{path: path, f: f}
	if err := s.scan(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// scan reads the whole file to recover head and count.
func (s *FileStore) scan() error {
	r, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("scan ledger: %w", err)
	}
	defer r.Close()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("ledger line %d: %w", line, err)
		}
		s.head = e.Hash
		s.count++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan ledger: %w", err)
	}
	return nil
}

// Head returns the hash recovered at open time, updated by appends.
func (s *FileStore) Head(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		return "", false, nil
	}
	return s.head, true, nil
}

// Append writes one entry as a JSON line and syncs the file. The ledger is
// the audit source of truth, so durability wins over write throughput.
func (s *FileStore) Append(_ context.Context, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}
	s.head = e.Hash
	s.count++
	return nil
}

// List re-reads the file and returns filtered entries in write order.
func (s *FileStore) List(_ context.Context, f Filter) ([]Entry, error) {
	r, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	defer r.Close()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var out []Entry
	line := 0
	for sc.Scan() {
		line++
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("ledger line %d: %w", line, err)
		}
		if f.Kind != "" && e.Action.Kind != f.Kind {
			continue
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return tailLimit(out, f.Limit), nil
}

// Count returns the number of entries written so far.
func (s *FileStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, nil
}

// Close releases the underlying file handle.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
