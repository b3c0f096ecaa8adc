package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/feedstream/pkg/domain"
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

// Save persists a copy of the snapshot.
func (s *Store) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	copied := *snapshot
	copied.Keys = slices.Clone(snapshot.Keys)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[snapshot.SessionID] = &copied
	return nil
}

// Load retrieves a copy of the snapshot so callers can't mutate the store.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	ret := *snapshot
	ret.Keys = slices.Clone(snapshot.Keys)
	return &ret, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the sessions with a snapshot, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	slices.Sort(sessions)
	return sessions, nil
}
