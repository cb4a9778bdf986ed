package domain

import "time"

// SyncStatus is the state of the sync state machine.
type SyncStatus string

// Sync statuses.
const (
	SyncOffline SyncStatus = "offline"
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncSynced  SyncStatus = "synced"
	SyncDirty   SyncStatus = "dirty"
	SyncError   SyncStatus = "error"
)

// IsValid returns true if the status is recognised.
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncOffline, SyncIdle, SyncSyncing, SyncSynced, SyncDirty, SyncError:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s SyncStatus) String() string {
	return string(s)
}

// SyncState tracks synchronisation of one open document with the remote store.
type SyncState struct {
	// Status is the current state machine position.
	Status SyncStatus `json:"status"`

	// SSPID is the remote document identity, empty until assigned.
	SSPID string `json:"sspId,omitempty"`

	// Title is the remote document title, if known.
	Title string `json:"title,omitempty"`

	// LastSyncedAt is when the last (possibly partial) successful sync completed.
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`

	// Error is the last failure message.
	Error string `json:"error,omitempty"`

	// PendingChanges signals local edits not yet pushed.
	PendingChanges bool `json:"pendingChanges"`
}

// DocumentSummary is one entry of the remote document listing.
type DocumentSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// DocumentEnvelope is the primary remote document: identity plus section contents.
// A section's content is either a narrative string or a structured object.
type DocumentEnvelope struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Sections map[string]any `json:"sections"`
}

// Snapshot is the persisted orchestrator state for a document: the sync
// state plus the baseline record used for change detection.
type Snapshot struct {
	State    SyncState
	Baseline *ComplianceRecord
	SavedAt  time.Time
}
