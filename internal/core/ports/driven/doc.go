// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - OSCALCodec: OSCAL document encoding (JSON, XML, YAML)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RemoteStore: The SSP backend. Without it the orchestrator stays offline.
//   - SnapshotStore: Orchestrator state between runs. Without it change
//     detection starts from scratch each run.
//   - DraftStore: Named local working copies.
//   - NarrativeDrafter: Narrative generation. Without it drafting is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
