// Package blob stores patrol photos outside the event record. Blobs are
// content-addressed: the reference is the sha256 of the bytes, so the same
// photo uploaded twice occupies one object and event rows stay small no
// matter the media size.
package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
)

// ErrNotFound is returned when no blob exists for a reference.
var ErrNotFound = errors.New("blob not found")

// Store persists opaque photo blobs keyed by their content address.
type Store interface {
	// Put writes the blob and returns its content address.
	Put(ctx context.Context, data []byte) (string, error)
	// Get reads the blob for a content address.
	Get(ctx context.Context, ref string) ([]byte, error)
	// Exists reports whether a blob is stored for a content address.
	Exists(ctx context.Context, ref string) (bool, error)
}

// Ref computes the content address for a blob.
func Ref(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Memory is an in-process Store used by unit tests and local development.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory creates an empty in-memory blob store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Put(ctx context.Context, data []byte) (string, error) {
	ref := Ref(data)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[ref]; !ok {
		stored := make([]byte, len(data))
		copy(stored, data)
		m.blobs[ref] = stored
	}
	return ref, nil
}

func (m *Memory) Get(ctx context.Context, ref string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[ref]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Exists(ctx context.Context, ref string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.blobs[ref]
	return ok, nil
}

// Len reports how many distinct blobs are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
