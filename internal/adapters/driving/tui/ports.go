// Package tui provides the live sync status view for ssp.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"context"

	"github.com/custodia-labs/ssp-cli/internal/core/ports/driving"
)

// Saver pushes pending edits on demand. services.AutoSaver satisfies it.
type Saver interface {
	SaveIfPending(ctx context.Context) bool
}

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Sync is the orchestrator whose state is shown.
	Sync driving.SyncOrchestrator

	// Saver handles the save key. Optional.
	Saver Saver
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Sync == nil {
		return ErrMissingSyncOrchestrator
	}
	return nil
}
