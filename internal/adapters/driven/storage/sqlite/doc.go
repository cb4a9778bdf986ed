// Package sqlite provides a SQLite-based implementation of the local
// persistence ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements both store interfaces
// through a single database connection:
//
//   - SnapshotStore: Orchestrator state and change-detection baseline per document
//   - DraftStore: Named local working copies of compliance records
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.ssp/data/state.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
