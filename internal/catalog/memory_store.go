package catalog

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore is a simple, goroutine-safe Store backed by a map.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]Snapshot
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		snapshots: make(map[string][]Snapshot),
	}
}

// Ensure InMemoryStore implements Store.
var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snap.Workflow] = append(s.snapshots[snap.Workflow], snap.clone())
	return nil
}

func (s *InMemoryStore) LatestSnapshot(ctx context.Context, workflow string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.snapshots[workflow]
	if len(history) == 0 {
		return Snapshot{}, ErrSnapshotNotFound
	}
	latest := history[0]
	for _, snap := range history[1:] {
		if !snap.TakenAt.Before(latest.TakenAt) {
			latest = snap
		}
	}
	return latest.clone(), nil
}

func (s *InMemoryStore) ListWorkflows(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.snapshots))
	for name := range s.snapshots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
