package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driving"
)

// Ensure DraftService implements the interface.
var _ driving.DraftService = (*DraftService)(nil)

// DraftService manages named local working copies of records.
type DraftService struct {
	store driven.DraftStore
	now   func() time.Time
}

// NewDraftService creates a new draft service.
func NewDraftService(store driven.DraftStore) *DraftService {
	return &DraftService{store: store, now: time.Now}
}

// Save stores a copy of record under name. An existing draft keeps its ID
// and creation time.
func (s *DraftService) Save(ctx context.Context, name, sspID string, record *domain.ComplianceRecord) (*domain.Draft, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("draft name: %w", domain.ErrInvalidInput)
	}
	if record == nil {
		record = domain.NewComplianceRecord()
	}

	now := s.now().UTC()
	draft := domain.Draft{
		ID:        NewUUID(),
		Name:      name,
		SSPID:     sspID,
		Record:    record.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	existing, err := s.store.GetDraft(ctx, name)
	switch {
	case err == nil:
		draft.ID = existing.ID
		draft.CreatedAt = existing.CreatedAt
		if sspID == "" {
			draft.SSPID = existing.SSPID
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get draft %q: %w", name, err)
	}

	if err := s.store.SaveDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft %q: %w", name, err)
	}
	return &draft, nil
}

// Get retrieves a draft by name.
func (s *DraftService) Get(ctx context.Context, name string) (*domain.Draft, error) {
	return s.store.GetDraft(ctx, strings.TrimSpace(name))
}

// List returns all drafts.
func (s *DraftService) List(ctx context.Context) ([]domain.Draft, error) {
	return s.store.ListDrafts(ctx)
}

// Delete removes a draft.
func (s *DraftService) Delete(ctx context.Context, name string) error {
	return s.store.DeleteDraft(ctx, strings.TrimSpace(name))
}
