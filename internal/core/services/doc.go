// Package services implements the driving port interfaces.
//
// It holds the record validator, change detection, the collection
// synchronizer, the sync orchestrator and autosaver, the OSCAL exporter and
// importer, and the draft, narrative and settings services. Services reach
// infrastructure only through the driven ports.
package services
