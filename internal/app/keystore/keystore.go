// Package keystore holds the persisted set of attribution dedupe keys.
// The set is append-only: keys are never deleted or expired by this package.
package keystore

import "context"

// KeyStore is the typed key-set abstraction the attribution tracker dedupes
// against. Implementations must treat an unreadable backing store as empty
// rather than failing the lookup.
type KeyStore interface {
	// Has reports whether key was previously added.
	Has(ctx context.Context, key string) (bool, error)

	// Add marks key as recorded.
	Add(ctx context.Context, key string) error
}

// Memory is a map-backed KeyStore used in tests and single-node setups.
type Memory struct {
	seen map[string]struct{}
}

// NewMemory returns an empty in-memory key store.
func NewMemory() *Memory {
	return &Memory{seen: make(map[string]struct{})}
}

func (m *Memory) Has(_ context.Context, key string) (bool, error) {
	_, ok := m.seen[key]
	return ok, nil
}

func (m *Memory) Add(_ context.Context, key string) error {
	m.seen[key] = struct{}{}
	return nil
}

var _ KeyStore = (*Memory)(nil)
