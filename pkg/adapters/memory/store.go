package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Snapshot),
	}
}

func clone(snap *domain.Snapshot) *domain.Snapshot {
	cp := *snap
	cp.Values = maps.Clone(snap.Values)
	if cp.Values == nil {
		cp.Values = make(map[string]domain.Value)
	}
	return &cp
}

// Save persists a copy of the snapshot.
func (s *Store) Save(ctx context.Context, key string, snap *domain.Snapshot) error {
	cp := clone(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = cp
	return nil
}

// Load returns a copy so callers cannot mutate stored snapshots.
func (s *Store) Load(ctx context.Context, key string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[key]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return clone(snap), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored keys.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
