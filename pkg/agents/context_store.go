// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cuttlefish-labs/swarm/pkg/resilience"
)

// DefaultSharedKey is the Redis hash key agents mirror their context under,
// one field per agent id.
const DefaultSharedKey = "swarm:shared"

// ContextStore mirrors each agent's shared context so other processes can
// observe the swarm's working state.
type ContextStore interface {
	// Share stores the agent's full context snapshot.
	Share(ctx context.Context, agentID string, shared map[string]any) error

	// Shared returns the stored snapshot, empty when none exists.
	Shared(ctx context.Context, agentID string) (map[string]any, error)

	// Close releases any underlying connections.
	Close() error
}

// MemoryContextStore keeps mirrored context in process memory.
type MemoryContextStore struct {
	mu   sync.RWMutex
	data map[string]map[string]any
}

// NewMemoryContextStore creates an empty in-memory store.
func NewMemoryContextStore() *MemoryContextStore {
	return &MemoryContextStore{data: make(map[string]map[string]any)}
}

// Share implements ContextStore.
func (s *MemoryContextStore) Share(_ context.Context, agentID string, shared map[string]any) error {
	cp := make(map[string]any, len(shared))
	for k, v := range shared {
		cp[k] = v
	}
	s.mu.Lock()
	s.data[agentID] = cp
	s.mu.Unlock()
	return nil
}

// Shared implements ContextStore.
func (s *MemoryContextStore) Shared(_ context.Context, agentID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]any, len(s.data[agentID]))
	for k, v := range s.data[agentID] {
		cp[k] = v
	}
	return cp, nil
}

// Close implements ContextStore.
func (s *MemoryContextStore) Close() error {
	return nil
}

// RedisContextStore mirrors context into a Redis hash. Snapshots are stored
// as JSON, one hash field per agent, so external dashboards can watch the
// swarm without touching the ledger. Commands are retried on transient
// failures.
type RedisContextStore struct {
	client *redis.Client
	key    string
	retry  resilience.RetryConfig
}

// redisRetryConfig retries transient command failures. A missing hash
// field is a normal empty read, never retried.
func redisRetryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2,
		Jitter:       0.2,
		IsRecoverable: func(err error) bool {
			return !errors.Is(err, redis.Nil)
		},
	}
}

// NewRedisContextStore connects to the given Redis URL and validates the
// connection with a ping before returning.
func NewRedisContextStore(ctx context.Context, url string) (*RedisContextStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisContextStore{client: client, key: DefaultSharedKey, retry: redisRetryConfig()}, nil
}

// Share implements ContextStore.
func (s *RedisContextStore) Share(ctx context.Context, agentID string, shared map[string]any) error {
	data, err := json.Marshal(shared)
	if err != nil {
		return fmt.Errorf("marshal shared context: %w", err)
	}
	return s.retry.Do(ctx, func() error {
		return s.client.HSet(ctx, s.key, agentID, data).Err()
	})
}

// Shared implements ContextStore.
func (s *RedisContextStore) Shared(ctx context.Context, agentID string) (map[string]any, error) {
	var raw string
	err := s.retry.Do(ctx, func() error {
		var getErr error
		raw, getErr = s.client.HGet(ctx, s.key, agentID).Result()
		return getErr
	})
	if errors.Is(err, redis.Nil) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("unmarshal shared context: %w", err)
	}
	return out, nil
}

// Close implements ContextStore.
func (s *RedisContextStore) Close() error {
	return s.client.Close()
}
