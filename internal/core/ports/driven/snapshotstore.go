package driven

import (
	"context"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// SnapshotStore persists orchestrator state between runs.
type SnapshotStore interface {
	// SaveSnapshot stores or replaces the snapshot for a document.
	SaveSnapshot(ctx context.Context, sspID string, snap domain.Snapshot) error

	// GetSnapshot retrieves the snapshot for a document.
	// Returns domain.ErrNotFound if none was saved.
	GetSnapshot(ctx context.Context, sspID string) (*domain.Snapshot, error)

	// DeleteSnapshot removes the snapshot for a document.
	DeleteSnapshot(ctx context.Context, sspID string) error
}

// DraftStore persists named working copies of compliance records.
type DraftStore interface {
	// SaveDraft stores or updates a draft keyed by name.
	SaveDraft(ctx context.Context, draft domain.Draft) error

	// GetDraft retrieves a draft by name.
	GetDraft(ctx context.Context, name string) (*domain.Draft, error)

	// ListDrafts returns all drafts, most recently updated first.
	ListDrafts(ctx context.Context) ([]domain.Draft, error)

	// DeleteDraft removes a draft by name.
	DeleteDraft(ctx context.Context, name string) error
}
