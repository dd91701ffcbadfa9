// =============================================================================
// Presentielijst - Key-Value Store
// =============================================================================
//
// Trial participants and user preferences outlive a single import. They are
// kept in a small key-value store with string keys and string values.
//
// IMPLEMENTATIONS:
//   - Memory: process-local, used in tests and dry runs
//   - File:   a YAML document on disk, rewritten atomically on every change
//
// Both implementations are safe for concurrent use.
//
// =============================================================================

package store

import (
	"sort"
	"strings"
	"sync"
)

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)

	// Set stores value under key.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error

	// ListKeys returns the keys starting with prefix, sorted.
	ListKeys(prefix string) ([]string, error)
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory is an in-memory Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) ListKeys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return keysWithPrefix(m.data, prefix), nil
}

func keysWithPrefix(data map[string]string, prefix string) []string {
	keys := make([]string, 0, len(data))
	for key := range data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
