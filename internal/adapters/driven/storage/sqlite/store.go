package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ssp-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
)

// dbFile is the database file name inside the data directory.
const dbFile = "state.db"

// Store is a SQLite-backed store that exposes the local persistence ports
// through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ssp/data/state.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ssp", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SnapshotStore returns a SnapshotStore interface backed by this store.
func (s *Store) SnapshotStore() driven.SnapshotStore {
	return &snapshotStore{store: s}
}

// DraftStore returns a DraftStore interface backed by this store.
func (s *Store) DraftStore() driven.DraftStore {
	return &draftStore{store: s}
}

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Snapshot Store ====================

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// SaveSnapshot stores or replaces the snapshot for a document.
func (s *snapshotStore) SaveSnapshot(ctx context.Context, sspID string, snap domain.Snapshot) error {
	stateJSON, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("marshalling sync state: %w", err)
	}

	var baseline sql.NullString
	if snap.Baseline != nil {
		data, err := json.Marshal(snap.Baseline)
		if err != nil {
			return fmt.Errorf("marshalling baseline: %w", err)
		}
		baseline = sql.NullString{String: string(data), Valid: true}
	}

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO snapshots (ssp_id, state, baseline, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(ssp_id) DO UPDATE SET
			state = excluded.state,
			baseline = excluded.baseline,
			saved_at = excluded.saved_at
	`, sspID, string(stateJSON), baseline, savedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// GetSnapshot retrieves the snapshot for a document.
func (s *snapshotStore) GetSnapshot(ctx context.Context, sspID string) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT state, baseline, saved_at
		FROM snapshots WHERE ssp_id = ?
	`, sspID)

	var stateJSON string
	var baseline sql.NullString
	var snap domain.Snapshot
	if err := row.Scan(&stateJSON, &baseline, &snap.SavedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(stateJSON), &snap.State); err != nil {
		return nil, fmt.Errorf("unmarshalling sync state: %w", err)
	}
	if baseline.Valid {
		snap.Baseline = domain.NewComplianceRecord()
		if err := json.Unmarshal([]byte(baseline.String), snap.Baseline); err != nil {
			return nil, fmt.Errorf("unmarshalling baseline: %w", err)
		}
	}

	return &snap, nil
}

// DeleteSnapshot removes the snapshot for a document.
func (s *snapshotStore) DeleteSnapshot(ctx context.Context, sspID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM snapshots WHERE ssp_id = ?", sspID)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}

// ==================== Draft Store ====================

// draftStore implements driven.DraftStore.
type draftStore struct {
	store *Store
}

var _ driven.DraftStore = (*draftStore)(nil)

// SaveDraft stores or updates a draft keyed by name.
func (s *draftStore) SaveDraft(ctx context.Context, draft domain.Draft) error {
	record := draft.Record
	if record == nil {
		record = domain.NewComplianceRecord()
	}
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling record: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO drafts (name, id, ssp_id, record, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			ssp_id = excluded.ssp_id,
			record = excluded.record,
			updated_at = excluded.updated_at
	`, draft.Name, draft.ID, draft.SSPID, string(recordJSON), draft.CreatedAt.UTC(), draft.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// GetDraft retrieves a draft by name.
func (s *draftStore) GetDraft(ctx context.Context, name string) (*domain.Draft, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT name, id, ssp_id, record, created_at, updated_at
		FROM drafts WHERE name = ?
	`, name)

	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return draft, nil
}

// ListDrafts returns all drafts, most recently updated first.
func (s *draftStore) ListDrafts(ctx context.Context) ([]domain.Draft, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, id, ssp_id, record, created_at, updated_at
		FROM drafts ORDER BY updated_at DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying drafts: %w", err)
	}
	defer rows.Close()

	var drafts []domain.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating drafts: %w", err)
	}
	return drafts, nil
}

// DeleteDraft removes a draft by name.
func (s *draftStore) DeleteDraft(ctx context.Context, name string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM drafts WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(row scanner) (*domain.Draft, error) {
	var draft domain.Draft
	var recordJSON string
	if err := row.Scan(&draft.Name, &draft.ID, &draft.SSPID, &recordJSON, &draft.CreatedAt, &draft.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning draft: %w", err)
	}

	draft.Record = domain.NewComplianceRecord()
	if err := json.Unmarshal([]byte(recordJSON), draft.Record); err != nil {
		return nil, fmt.Errorf("unmarshalling record: %w", err)
	}
	return &draft, nil
}
