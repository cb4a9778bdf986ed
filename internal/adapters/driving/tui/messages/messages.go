// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// StateChanged carries a sync state snapshot from the orchestrator.
type StateChanged struct {
	State domain.SyncState
}

// SubscriptionClosed is sent when the state channel closes.
type SubscriptionClosed struct{}

// SaveCompleted reports the result of a manual save.
type SaveCompleted struct {
	// Saved is false when nothing was pending or the save failed.
	Saved bool
}

// ErrorOccurred is sent when an operation fails outside the orchestrator.
type ErrorOccurred struct {
	Err error
}
