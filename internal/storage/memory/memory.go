// Package memory provides an in-process roll-log backend for tests and
// ephemeral deployments.
package memory

import (
	"context"
	"sync"

	"github.com/cory-johannsen/dicetool/internal/storage"
)

// Backend keeps documents in a map. It is safe for concurrent use.
type Backend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewBackend returns an empty Backend.
func NewBackend() *Backend {
	return &Backend{data: make(map[string][]byte)}
}

// Load returns a copy of the document stored under key.
//
// Postcondition: Returns storage.ErrKeyNotFound when key was never saved or was deleted.
func (b *Backend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save stores a copy of data under key, replacing any previous document.
func (b *Backend) Save(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}
