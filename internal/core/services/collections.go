package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ssp-cli/internal/logger"
)

// CollectionSynchronizer replaces a remote collection with the local rows.
//
// Collections are replaced wholesale rather than diffed row by row: the
// remote collection is cleared, then every valid local row is created in
// order. A failure part way through leaves the rows created so far in place;
// there is no rollback. Stale remote rows are always dropped.
type CollectionSynchronizer struct {
	remote driven.RemoteStore
}

// NewCollectionSynchronizer creates a synchronizer over remote.
func NewCollectionSynchronizer(remote driven.RemoteStore) *CollectionSynchronizer {
	return &CollectionSynchronizer{remote: remote}
}

// Sync replaces the remote collection of kind for sspID with rows.
//
//  1. Rows with a blank identifier are dropped silently.
//  2. The remote collection is cleared. Not-found and method-not-allowed
//     responses count as already empty; any other failure is returned
//     before anything is created.
//  3. Rows are created one at a time in order. Conflict or duplicate
//     responses are skipped; any other failure is returned immediately.
func (s *CollectionSynchronizer) Sync(ctx context.Context, sspID string, kind domain.CollectionKind, rows []domain.Row) error {
	spec, ok := domain.SpecFor(kind)
	if !ok || !spec.Synced() {
		return fmt.Errorf("%w: collection %q is not synchronised", domain.ErrInvalidInput, kind)
	}

	valid := make([]domain.Row, 0, len(rows))
	for _, r := range rows {
		if spec.IsValidRow(r) {
			valid = append(valid, r)
		}
	}
	if dropped := len(rows) - len(valid); dropped > 0 {
		logger.Debug("%s: dropped %d row(s) with blank identifiers", kind, dropped)
	}

	if err := s.remote.DeleteRows(ctx, sspID, spec.Resource); err != nil {
		if !IsTolerableDelete(err) {
			return fmt.Errorf("clear %s: %w", kind, err)
		}
		logger.Debug("%s: delete not supported (%v), adding only", kind, err)
	}

	for i, r := range valid {
		if err := s.remote.CreateRow(ctx, sspID, spec.Resource, spec.ToRemote(r)); err != nil {
			if IsConflict(err) {
				logger.Debug("%s: row %d already exists, skipping", kind, i)
				continue
			}
			return fmt.Errorf("create %s row %d: %w", kind, i, err)
		}
	}

	logger.Debug("%s: synced %d row(s)", kind, len(valid))
	return nil
}

// SyncInfoTypes replaces the information types collection.
func (s *CollectionSynchronizer) SyncInfoTypes(ctx context.Context, sspID string, rows []domain.Row) error {
	return s.Sync(ctx, sspID, domain.CollectionInfoTypes, rows)
}

// SyncPortsProtocols replaces the ports, protocols and services collection.
func (s *CollectionSynchronizer) SyncPortsProtocols(ctx context.Context, sspID string, rows []domain.Row) error {
	return s.Sync(ctx, sspID, domain.CollectionPortsProtocols, rows)
}

// SyncCryptoModules replaces the cryptographic modules collection.
func (s *CollectionSynchronizer) SyncCryptoModules(ctx context.Context, sspID string, rows []domain.Row) error {
	return s.Sync(ctx, sspID, domain.CollectionCryptoModules, rows)
}

// SyncSeparationDuties replaces the separation of duties collection.
func (s *CollectionSynchronizer) SyncSeparationDuties(ctx context.Context, sspID string, rows []domain.Row) error {
	return s.Sync(ctx, sspID, domain.CollectionSeparationDuties, rows)
}

// SyncPolicyMappings replaces the policy mappings collection.
func (s *CollectionSynchronizer) SyncPolicyMappings(ctx context.Context, sspID string, rows []domain.Row) error {
	return s.Sync(ctx, sspID, domain.CollectionPolicyMappings, rows)
}

// SyncSCRMSuppliers replaces the supply chain suppliers collection.
func (s *CollectionSynchronizer) SyncSCRMSuppliers(ctx context.Context, sspID string, rows []domain.Row) error {
	return s.Sync(ctx, sspID, domain.CollectionSCRMSuppliers, rows)
}

// SyncCMBaselines replaces the configuration baselines collection.
func (s *CollectionSynchronizer) SyncCMBaselines(ctx context.Context, sspID string, rows []domain.Row) error {
	return s.Sync(ctx, sspID, domain.CollectionCMBaselines, rows)
}

// statusOf extracts the status and lower-cased message of err. A status
// error yields only its server message, so request URLs never match.
// Transport failures carry no message worth classifying.
func statusOf(err error) (int, string) {
	var se domain.StatusError
	if errors.As(err, &se) {
		return se.Status(), strings.ToLower(se.ServerMessage())
	}
	if errors.Is(err, domain.ErrRemoteUnavailable) {
		return 0, ""
	}
	return 0, strings.ToLower(err.Error())
}

// IsTolerableDelete reports whether a delete failure means the collection
// is already empty or cannot be cleared, by status or message.
func IsTolerableDelete(err error) bool {
	if err == nil {
		return false
	}
	code, msg := statusOf(err)
	if code != 0 {
		return code == http.StatusNotFound || code == http.StatusMethodNotAllowed
	}
	return strings.Contains(msg, "404") || strings.Contains(msg, "405") ||
		strings.Contains(msg, "not found") || strings.Contains(msg, "method not allowed")
}

// IsConflict reports whether a create failure means the row already exists,
// by status or message.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	code, msg := statusOf(err)
	if code == http.StatusConflict {
		return true
	}
	return strings.Contains(msg, "409") || strings.Contains(msg, "conflict") || strings.Contains(msg, "duplicate")
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrNotFound) {
		return true
	}
	code, msg := statusOf(err)
	if code != 0 {
		return code == http.StatusNotFound
	}
	return strings.Contains(msg, "404") || strings.Contains(msg, "not found")
}
