package mcp

import (
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Validator checks compliance records.
	Validator driving.RecordValidator

	// Exporter renders OSCAL documents.
	Exporter driving.OSCALExporter

	// Importer parses OSCAL documents. Optional.
	Importer driving.OSCALImporter

	// Sync exposes the sync state. Optional.
	Sync driving.SyncOrchestrator

	// Drafts backs the draft resources. Optional.
	Drafts driving.DraftService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Validator == nil {
		return ErrMissingValidator
	}
	if p.Exporter == nil {
		return ErrMissingExporter
	}
	return nil
}
