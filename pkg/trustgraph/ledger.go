// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package trustgraph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cuttlefish-labs/swarm/pkg/errors"
	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Ledger is the single writer for the TrustGraph chain. All appends go
// through it.
//
// Reading the head, hashing the new entry against it and appending must
// happen as one critical section. Two appends interleaving between the head
// read and the write would both chain onto the same parent and fork the
// chain, so mu spans the whole sequence.
type Ledger struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the wall clock used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger wraps a store with the single-writer append discipline.
func NewLedger(store Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records one action at the end of the chain and returns the entry
// written. A store failure surfaces as a LEDGER_IO error; the caller keeps
// the action and may retry, and the chain is unchanged.
func (l *Ledger) Append(ctx context.Context, action swarm.Action) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	head, ok, err := l.store.Head(ctx)
	if err != nil {
		return Entry{}, errors.New(errors.CodeLedgerIO, "read chain head", err)
	}
	prev := ""
	if ok {
		prev = head
	}

	e := Entry{
		EntryID:    uuid.NewString(),
		Action:     action,
		PrevHash:   prev,
		RecordedAt: l.now().UTC(),
	}
	hash, err := e.ComputeHash()
	if err != nil {
		return Entry{}, errors.New(errors.CodeLedgerIO, "hash entry", err)
	}
	e.Hash = hash

	if err := l.store.Append(ctx, e); err != nil {
		return Entry{}, errors.New(errors.CodeLedgerIO, "append entry", err).
			WithContext("entry_id", e.EntryID).
			WithContext("kind", string(action.Kind))
	}

	slog.Debug("trustgraph.append",
		"entry_id", e.EntryID,
		"kind", action.Kind,
		"verb", action.Verb,
		"hash", e.Hash)
	return e, nil
}

// Entries returns ledger entries matching the filter in write order.
func (l *Ledger) Entries(ctx context.Context, f Filter) ([]Entry, error) {
	entries, err := l.store.List(ctx, f)
	if err != nil {
		return nil, errors.New(errors.CodeLedgerIO, "list entries", err)
	}
	return entries, nil
}

// Head returns the current chain head hash. ok is false for an empty chain.
func (l *Ledger) Head(ctx context.Context) (string, bool, error) {
	head, ok, err := l.store.Head(ctx)
	if err != nil {
		return "", false, errors.New(errors.CodeLedgerIO, "read chain head", err)
	}
	return head, ok, nil
}

// Count returns the total number of ledger entries.
func (l *Ledger) Count(ctx context.Context) (int, error) {
	n, err := l.store.Count(ctx)
	if err != nil {
		return 0, errors.New(errors.CodeLedgerIO, "count entries", err)
	}
	return n, nil
}

// Close releases the underlying store.
func (l *Ledger) Close() error {
	return l.store.Close()
}

// VerifyReport summarizes a full chain verification scan.
type VerifyReport struct {
	Entries int    `json:"entries"`
	Valid   bool   `json:"valid"`
	Broken  string `json:"broken_entry_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Verify re-walks the whole chain, recomputing every hash and checking each
// link against its predecessor. It reports the first broken entry; a valid
// report means history has not been altered since it was written.
func (l *Ledger) Verify(ctx context.Context) (VerifyReport, error) {
	entries, err := l.store.List(ctx, Filter{})
	if err != nil {
		return VerifyReport{}, errors.New(errors.CodeLedgerIO, "read chain", err)
	}

	report := VerifyReport{Entries: len(entries), Valid: true}
	prev := ""
	for i, e := range entries {
		if e.PrevHash != prev {
			report.Valid = false
			report.Broken = e.EntryID
			report.Reason = fmt.Sprintf("entry %d: previous hash mismatch", i)
			return report, nil
		}
		hash, err := e.ComputeHash()
		if err != nil {
			return VerifyReport{}, errors.New(errors.CodeLedgerIO, "rehash entry", err).
				WithContext("entry_id", e.EntryID)
		}
		if hash != e.Hash {
			report.Valid = false
			report.Broken = e.EntryID
			report.Reason = fmt.Sprintf("entry %d: content hash mismatch", i)
			return report, nil
		}
		prev = e.Hash
	}
	return report, nil
}
