// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package trustgraph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

func TestFileStoreReopenRecoversHead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trustgraph.jsonl")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ledger := NewLedger(store)

	var lastHash string
	for i := 0; i < 4; i++ {
		e, err := ledger.Append(ctx, swarm.NewAction("builder-1", swarm.KindBuilder, swarm.VerbExecute, "workflow"))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		lastHash = e.Hash
	}
	if err := ledger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	head, ok, err := reopened.Head(ctx)
	if err != nil || !ok {
		t.Fatalf("head after reopen: ok=%v err=%v", ok, err)
	}
	if head != lastHash {
		t.Fatalf("head lost across reopen: %s vs %s", head, lastHash)
	}
	n, err := reopened.Count(ctx)
	if err != nil || n != 4 {
		t.Fatalf("count after reopen: n=%d err=%v", n, err)
	}

	// Appends after reopen must keep extending the same chain.
	resumed := NewLedger(reopened)
	e, err := resumed.Append(ctx, swarm.NewAction("permit-1", swarm.KindPermit, swarm.VerbExecute, "workflow"))
	if err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	if e.PrevHash != lastHash {
		t.Fatalf("resumed chain not linked to previous head")
	}
	report, err := resumed.Verify(ctx)
	if err != nil || !report.Valid {
		t.Fatalf("verify after resume: report=%+v err=%v", report, err)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trustgraph.jsonl")
	if err := os.WriteFile(path, []byte("{\"entry_id\":\"e-1\",\"curren"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := NewFileStore(path); err == nil {
		t.Fatalf("expected error for truncated ledger line")
	}
}

func TestFileStoreListFilter(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "trustgraph.jsonl"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	ledger := NewLedger(store)

	for _, k := range []swarm.CapabilityKind{swarm.KindBuilder, swarm.KindSignal, swarm.KindBuilder} {
		if _, err := ledger.Append(ctx, swarm.NewAction("a", k, swarm.VerbExecute, "workflow")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	signals, err := store.List(ctx, Filter{Kind: swarm.KindSignal})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal entry, got %d", len(signals))
	}
	all, err := store.List(ctx, Filter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d (err=%v)", len(all), err)
	}
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "trustgraph.jsonl")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("open with missing parents: %v", err)
	}
	store.Close()
}
