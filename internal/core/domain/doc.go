// Package domain defines the core business entities for ssp.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ComplianceRecord: The flat SSP form state with collections and controls
//   - CollectionSpec: Per-kind row identifiers and remote field mapping
//   - SyncState: The sync state machine for one open document
//   - OSCALDocument: The OSCAL system-security-plan document graph
//   - ValidationResult: The structured field validation report
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
