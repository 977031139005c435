// Package reportcache stores computed reports keyed by a fingerprint of the
// engine input, in memory or in Redis.
package reportcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/theirongolddev/ledgercast/internal/engine"
	"github.com/theirongolddev/ledgercast/internal/model"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Fingerprint hashes the canonical JSON encoding of an engine input.
// Inputs that encode identically share a fingerprint.
func Fingerprint(in engine.Input) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("encoding input: %w", err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b)), nil
}

// GetReport decodes a cached report. ok is false on a miss.
func GetReport(ctx context.Context, c Cache, key string) (*model.Report, bool, error) {
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var r model.Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, false, fmt.Errorf("decoding cached report: %w", err)
	}
	return &r, true, nil
}

// PutReport encodes and stores a report.
func PutReport(ctx context.Context, c Cache, key string, r *model.Report) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return c.Set(ctx, key, b)
}

type memEntry struct {
	value   []byte
	expires time.Time
	stored  time.Time
}

// Memory is an in-process Cache bounded to a fixed number of entries.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

// NewMemory creates a memory cache. A zero ttl never expires entries.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	if maxEntries < 1 {
		maxEntries = 16
	}
	return &Memory{
		entries: make(map[string]memEntry),
		ttl:     ttl,
		max:     maxEntries,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e := memEntry{value: value, stored: now}
	if m.ttl > 0 {
		e.expires = now.Add(m.ttl)
	}
	m.entries[key] = e

	// Evict the oldest entry once over capacity
	for len(m.entries) > m.max {
		var oldestKey string
		var oldest time.Time
		for k, v := range m.entries {
			if oldestKey == "" || v.stored.Before(oldest) {
				oldestKey, oldest = k, v.stored
			}
		}
		delete(m.entries, oldestKey)
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Redis is a Cache backed by a Redis server, shared between daemon instances.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to addr and verifies the connection with a PING.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &Redis{client: client, prefix: "ledgercast:report:", ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, r.ttl).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
