// Package session persists a form session's value map keyed by form name.
// Stored payloads are sealed with AES-GCM so values are not readable at rest
// in the backing store. Sealing is storage obfuscation, not an access-control
// or compliance mechanism; the governance flags elsewhere in this system are
// assertions about field handling, not about this store.
package session

import (
	"context"
	"sync"

	apperrors "github.com/starterdev/guardian-form-backend/internal/domain/errors"
)

// Store loads and saves the whole value map for a named form session.
type Store interface {
	Load(ctx context.Context, formName string) (map[string]any, error)
	Save(ctx context.Context, formName string, values map[string]any) error
	Delete(ctx context.Context, formName string) error
}

// MemoryStore is an in-process Store for tests and single-node development.
type MemoryStore struct {
	mu     sync.RWMutex
	sealer *Sealer
	data   map[string][]byte
}

// NewMemoryStore creates an empty in-memory store sealing with sealer.
func NewMemoryStore(sealer *Sealer) *MemoryStore {
	return &MemoryStore{
		sealer: sealer,
		data:   make(map[string][]byte),
	}
}

func (s *MemoryStore) Load(_ context.Context, formName string) (map[string]any, error) {
	s.mu.RLock()
	sealed, ok := s.data[formName]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return s.sealer.Open(sealed)
}

func (s *MemoryStore) Save(_ context.Context, formName string, values map[string]any) error {
	sealed, err := s.sealer.Seal(values)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[formName] = sealed
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, formName string) error {
	s.mu.Lock()
	delete(s.data, formName)
	s.mu.Unlock()
	return nil
}
