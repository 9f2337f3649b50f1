// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package trustgraph implements the tamper-evident action ledger. Every
// recorded Action becomes an Entry whose hash covers the previous entry's
// hash, so any mutation of history is detectable by a linear re-scan.
package trustgraph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/gowebpki/jcs"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Entry is one link in the TrustGraph hash chain.
type Entry struct {
	EntryID  string       `json:"entry_id"`
	Action   swarm.Action `json:"action"`
	PrevHash string       `json:"previous_hash"`
	Hash     string       `json:"current_hash"`

	// ExternalRef optionally points at a copy of the entry in external
	// storage. It is not covered by the hash.
	ExternalRef string `json:"external_ref,omitempty"`

	// Verified records whether an external verification step has seen the
	// entry. Not covered by the hash.
	Verified bool `json:"verified"`

	// RecordedAt is the ledger write time, distinct from the action's own
	// timestamp.
	RecordedAt time.Time `json:"recorded_at"`
}

// hashPayload is the exact subset of an entry covered by its hash.
type hashPayload struct {
	EntryID    string       `json:"entry_id"`
	Action     swarm.Action `json:"action"`
	PrevHash   string       `json:"previous_hash"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// ComputeHash returns the SHA-256 of the entry's canonical form. The
// payload is serialized to JSON and canonicalized per RFC 8785 before
// hashing, so the result is a pure function of entry id, action, previous
// hash and recorded time.
func (e Entry) ComputeHash() (string, error) {
	raw, err := json.Marshal(hashPayload{
		EntryID:    e.EntryID,
		Action:     e.Action,
		PrevHash:   e.PrevHash,
		RecordedAt: e.RecordedAt,
	})
	if err != nil {
		return "", err
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}
