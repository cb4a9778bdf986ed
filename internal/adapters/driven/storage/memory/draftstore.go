package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
)

// Ensure DraftStore implements the interface.
var _ driven.DraftStore = (*DraftStore)(nil)

// DraftStore is an in-memory implementation of driven.DraftStore.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string]domain.Draft
}

// NewDraftStore creates a new in-memory draft store.
func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[string]domain.Draft),
	}
}

// SaveDraft stores or updates a draft keyed by name.
func (s *DraftStore) SaveDraft(_ context.Context, draft domain.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft.Record = draft.Record.Clone()
	s.drafts[draft.Name] = draft
	return nil
}

// GetDraft retrieves a draft by name.
func (s *DraftStore) GetDraft(_ context.Context, name string) (*domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	draft.Record = draft.Record.Clone()
	return &draft, nil
}

// ListDrafts returns all drafts, most recently updated first.
func (s *DraftStore) ListDrafts(_ context.Context) ([]domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Draft, 0, len(s.drafts))
	for _, d := range s.drafts {
		d.Record = d.Record.Clone()
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].Name < result[j].Name
		}
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

// DeleteDraft removes a draft by name.
func (s *DraftStore) DeleteDraft(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[name]; !ok {
		return domain.ErrNotFound
	}
	delete(s.drafts, name)
	return nil
}
