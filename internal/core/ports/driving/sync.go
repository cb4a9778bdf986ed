package driving

import (
	"context"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// SyncOrchestrator reconciles one open compliance record with the remote store.
//
// LoadFromServer, SaveToServer and FullSync are single-flight: a call made
// while another is in progress returns its sentinel (nil or false) at once.
// Failures are reported through State, not returned.
type SyncOrchestrator interface {
	// LoadFromServer fetches the document and its auxiliary resources.
	// Returns nil on failure or contention.
	LoadFromServer(ctx context.Context, sspID string) *domain.ComplianceRecord

	// SaveToServer pushes the sections that changed since the last sync.
	SaveToServer(ctx context.Context, sspID string, record *domain.ComplianceRecord) bool

	// FullSync saves the primary document then replaces every collection.
	FullSync(ctx context.Context, sspID string, record *domain.ComplianceRecord) bool

	// List returns the remote documents, or an empty list on failure.
	List(ctx context.Context) []domain.DocumentSummary

	// Create creates a new remote document.
	Create(ctx context.Context, title string) (*domain.DocumentSummary, error)

	// SetCurrent selects the open document without network I/O.
	SetCurrent(sspID, title string)

	// MarkDirty records unsaved local edits.
	MarkDirty()

	// Clear resets all state to offline and drops the baseline.
	Clear()

	// ClearError dismisses the last error.
	ClearError()

	// SetOnline switches between offline and idle.
	SetOnline(online bool)

	// State returns a copy of the current sync state.
	State() domain.SyncState

	// Baseline returns a copy of the last synced record, or nil.
	Baseline() *domain.ComplianceRecord

	// Subscribe delivers state snapshots after every transition. The
	// returned function cancels the subscription and closes the channel.
	Subscribe() (<-chan domain.SyncState, func())

	// Restore reloads persisted state for a document from the snapshot store.
	Restore(ctx context.Context, sspID string) error
}
