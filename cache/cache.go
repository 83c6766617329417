// Package cache defines the token cache port shared by swiftkit clients.
//
// A Store holds (key → value) string pairs. The authenticator writes the
// auth token and storage URL of every successful authentication and reads
// them back before talking to the identity service, so clients sharing a
// store converge on one token. Entries never expire here; a stale token is
// discovered by the 401 it produces.
package cache

import (
	"context"
	"sync"
)

// Store is the get/set contract of the token cache.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key.
	Set(ctx context.Context, key, value string) error
}

// TokenKey returns the cache key of the auth token for an identity digest.
func TokenKey(digest string) string {
	return "auth_token:" + digest
}

// StorageURLKey returns the cache key of the storage URL for an identity digest.
func StorageURLKey(digest string) string {
	return "storage_url:" + digest
}

// Null is a Store that never holds anything.
type Null struct{}

var _ Store = Null{}

// Get always misses.
func (Null) Get(context.Context, string) (string, bool, error) { return "", false, nil }

// Set discards the value.
func (Null) Set(context.Context, string, string) error { return nil }

// Memory is an in-process Store safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key, replacing any previous value.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
