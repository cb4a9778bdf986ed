package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
type SnapshotStore struct {
	mu    sync.RWMutex
	snaps map[string]domain.Snapshot
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snaps: make(map[string]domain.Snapshot),
	}
}

// SaveSnapshot stores or replaces the snapshot for a document.
func (s *SnapshotStore) SaveSnapshot(_ context.Context, sspID string, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.Baseline = snap.Baseline.Clone()
	s.snaps[sspID] = snap
	return nil
}

// GetSnapshot retrieves the snapshot for a document.
func (s *SnapshotStore) GetSnapshot(_ context.Context, sspID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[sspID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	snap.Baseline = snap.Baseline.Clone()
	return &snap, nil
}

// DeleteSnapshot removes the snapshot for a document.
func (s *SnapshotStore) DeleteSnapshot(_ context.Context, sspID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, sspID)
	return nil
}
