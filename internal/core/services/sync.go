package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ssp-cli/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 8

// SyncOrchestrator owns the sync state of one open compliance record.
//
// Load, save and full sync are guarded by a single-flight flag. A call that
// finds the flag held returns its sentinel immediately; it never queues.
// The flag is released on every return path.
type SyncOrchestrator struct {
	remote      driven.RemoteStore
	snapshots   driven.SnapshotStore
	collections *CollectionSynchronizer
	now         func() time.Time

	busy atomic.Bool

	mu       sync.RWMutex
	state    domain.SyncState
	dirtyGen uint64
	baseline *domain.ComplianceRecord
	subs     map[int]chan domain.SyncState
	nextSub  int
}

// NewSyncOrchestrator creates a new sync orchestrator.
// Remote is optional; without it the orchestrator starts and stays offline.
// Snapshots is optional; without it state is not persisted between runs.
func NewSyncOrchestrator(remote driven.RemoteStore, snapshots driven.SnapshotStore) *SyncOrchestrator {
	status := domain.SyncOffline
	if remote != nil {
		status = domain.SyncIdle
	}
	return &SyncOrchestrator{
		remote:      remote,
		snapshots:   snapshots,
		collections: NewCollectionSynchronizer(remote),
		now:         time.Now,
		state:       domain.SyncState{Status: status},
		subs:        make(map[int]chan domain.SyncState),
	}
}

// acquire takes the single-flight flag.
func (o *SyncOrchestrator) acquire() bool {
	return o.busy.CompareAndSwap(false, true)
}

func (o *SyncOrchestrator) release() {
	o.busy.Store(false)
}

// LoadFromServer fetches the document and all auxiliary resources. On
// success the loaded record becomes the change-detection baseline.
func (o *SyncOrchestrator) LoadFromServer(ctx context.Context, sspID string) *domain.ComplianceRecord {
	if !o.acquire() {
		logger.Debug("load %s skipped: sync in progress", sspID)
		return nil
	}
	defer o.release()

	if o.remote == nil {
		o.fail(fmt.Errorf("load: %w", domain.ErrNotConfigured))
		return nil
	}

	logger.Section("Load " + sspID)
	o.update(func(s *domain.SyncState) {
		s.Status = domain.SyncSyncing
		s.Error = ""
	})

	record, title, err := o.fetch(ctx, sspID)
	if err != nil {
		o.fail(fmt.Errorf("load %s: %w", sspID, err))
		return nil
	}

	now := o.now()
	o.setBaseline(record.Clone())
	o.update(func(s *domain.SyncState) {
		s.Status = domain.SyncSynced
		s.SSPID = sspID
		s.Title = title
		s.LastSyncedAt = &now
		s.PendingChanges = false
		s.Error = ""
	})
	o.persist(ctx, sspID)

	return record
}

// fetch loads the primary document then the auxiliary resources concurrently.
// A missing auxiliary resource is read as empty.
func (o *SyncOrchestrator) fetch(ctx context.Context, sspID string) (*domain.ComplianceRecord, string, error) {
	env, err := o.remote.GetDocument(ctx, sspID)
	if err != nil {
		return nil, "", fmt.Errorf("get document: %w", err)
	}

	record := domain.NewComplianceRecord()
	applySections(record, env.Sections)

	singletons := make([]map[string]any, len(domain.Singletons))
	specs := domain.SyncedCollections()
	rows := make([][]domain.Row, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range domain.Singletons {
		g.Go(func() error {
			body, err := o.remote.GetResource(gctx, sspID, s.Resource)
			if err != nil {
				if IsNotFound(err) {
					return nil
				}
				return fmt.Errorf("get %s: %w", s.Resource, err)
			}
			singletons[i] = body
			return nil
		})
	}
	for i, spec := range specs {
		g.Go(func() error {
			remote, err := o.remote.ListRows(gctx, sspID, spec.Resource)
			if err != nil {
				if IsNotFound(err) {
					return nil
				}
				return fmt.Errorf("list %s: %w", spec.Kind, err)
			}
			out := make([]domain.Row, 0, len(remote))
			for _, r := range remote {
				out = append(out, spec.FromRemote(r))
			}
			rows[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, "", err
	}

	for _, body := range singletons {
		applyFields(record, body)
	}
	for i, spec := range specs {
		if len(rows[i]) > 0 {
			record.SetRows(spec.Kind, rows[i])
		}
	}
	return record, env.Title, nil
}

// SaveToServer pushes the sections that changed since the baseline. The
// baseline becomes record whatever the outcome.
func (o *SyncOrchestrator) SaveToServer(ctx context.Context, sspID string, record *domain.ComplianceRecord) bool {
	if !o.acquire() {
		logger.Debug("save %s skipped: sync in progress", sspID)
		return false
	}
	defer o.release()

	if o.remote == nil {
		o.fail(fmt.Errorf("save: %w", domain.ErrNotConfigured))
		return false
	}

	logger.Section("Save " + sspID)
	gen := o.startSync()

	err := o.push(ctx, sspID, record, true)
	o.setBaseline(record.Clone())
	if err != nil {
		o.fail(fmt.Errorf("save %s: %w", sspID, err))
		o.persist(ctx, sspID)
		return false
	}

	o.succeed(sspID, gen)
	o.persist(ctx, sspID)
	return true
}

// FullSync saves the primary document, then replaces all seven collections
// concurrently. Every collection sync runs to completion before the outcome
// is decided. A collection failure still records the sync time and leaves
// pending changes set.
func (o *SyncOrchestrator) FullSync(ctx context.Context, sspID string, record *domain.ComplianceRecord) bool {
	if !o.acquire() {
		logger.Debug("full sync %s skipped: sync in progress", sspID)
		return false
	}
	defer o.release()

	if o.remote == nil {
		o.fail(fmt.Errorf("full sync: %w", domain.ErrNotConfigured))
		return false
	}

	logger.Section("Full Sync " + sspID)
	gen := o.startSync()

	err := o.push(ctx, sspID, record, false)
	o.setBaseline(record.Clone())
	if err != nil {
		o.fail(fmt.Errorf("save %s: %w", sspID, err))
		o.persist(ctx, sspID)
		return false
	}

	failed := o.syncCollections(ctx, sspID, record)
	if len(failed) > 0 {
		now := o.now()
		o.update(func(s *domain.SyncState) {
			s.Status = domain.SyncError
			s.SSPID = sspID
			s.Error = "Some collections failed to sync: " + strings.Join(failed, ", ")
			s.LastSyncedAt = &now
			s.PendingChanges = true
		})
		o.persist(ctx, sspID)
		return false
	}

	o.succeed(sspID, gen)
	o.persist(ctx, sspID)
	return true
}

// push sends every changed section to the remote store in key order,
// stopping at the first failure. Collection sections are only pushed when
// withCollections is set.
func (o *SyncOrchestrator) push(ctx context.Context, sspID string, record *domain.ComplianceRecord, withCollections bool) error {
	o.mu.RLock()
	previous := o.baseline
	o.mu.RUnlock()

	changed := ChangedSections(previous, record)
	if len(changed) == 0 {
		logger.Debug("no sections changed")
		return nil
	}

	contents := SectionContents(record)
	for _, key := range changed {
		content, ok := contents[key]
		if !ok {
			content = emptySection(key)
		}

		switch {
		case domain.IsSingletonResource(key):
			if err := o.remote.PutResource(ctx, sspID, key, toBody(content)); err != nil {
				return fmt.Errorf("put %s: %w", key, err)
			}
		default:
			if spec, isCollection := isCollectionSection(key); isCollection {
				if !withCollections {
					continue
				}
				if err := o.collections.Sync(ctx, sspID, spec.Kind, record.Rows(spec.Kind)); err != nil {
					return err
				}
				continue
			}
			if err := o.remote.PutSection(ctx, sspID, key, content); err != nil {
				return fmt.Errorf("put section %s: %w", key, err)
			}
		}
		logger.Debug("pushed section %s", key)
	}
	return nil
}

// syncCollections runs every collection sync concurrently and returns the
// kinds that failed, in table order. Each task records its own outcome and
// reports success to the group so no failure cancels the others.
func (o *SyncOrchestrator) syncCollections(ctx context.Context, sspID string, record *domain.ComplianceRecord) []string {
	specs := domain.SyncedCollections()
	results := make([]error, len(specs))

	var g errgroup.Group
	for i, spec := range specs {
		g.Go(func() error {
			results[i] = o.collections.Sync(ctx, sspID, spec.Kind, record.Rows(spec.Kind))
			return nil
		})
	}
	_ = g.Wait()

	var failed []string
	for i, err := range results {
		if err != nil {
			logger.Warn("collection %s failed: %v", specs[i].Kind, err)
			failed = append(failed, string(specs[i].Kind))
		}
	}
	return failed
}

// List returns the remote documents. Failures yield an empty list.
func (o *SyncOrchestrator) List(ctx context.Context) []domain.DocumentSummary {
	if o.remote == nil {
		return []domain.DocumentSummary{}
	}
	docs, err := o.remote.ListDocuments(ctx)
	if err != nil {
		logger.Warn("list documents: %v", err)
		return []domain.DocumentSummary{}
	}
	if docs == nil {
		docs = []domain.DocumentSummary{}
	}
	return docs
}

// Create creates a new remote document.
func (o *SyncOrchestrator) Create(ctx context.Context, title string) (*domain.DocumentSummary, error) {
	if o.remote == nil {
		return nil, fmt.Errorf("create document: %w", domain.ErrNotConfigured)
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	doc, err := o.remote.CreateDocument(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// SetCurrent selects the open document.
func (o *SyncOrchestrator) SetCurrent(sspID, title string) {
	o.update(func(s *domain.SyncState) {
		s.SSPID = sspID
		s.Title = title
		s.PendingChanges = false
	})
}

// MarkDirty records unsaved local edits. Only synced moves to dirty.
func (o *SyncOrchestrator) MarkDirty() {
	o.update(func(s *domain.SyncState) {
		o.dirtyGen++
		s.PendingChanges = true
		if s.Status == domain.SyncSynced {
			s.Status = domain.SyncDirty
		}
	})
}

// Clear resets all state to offline and drops the baseline.
func (o *SyncOrchestrator) Clear() {
	o.setBaseline(nil)
	o.update(func(s *domain.SyncState) {
		*s = domain.SyncState{Status: domain.SyncOffline}
	})
}

// ClearError dismisses the last error, returning to dirty when changes are
// pending and idle otherwise.
func (o *SyncOrchestrator) ClearError() {
	o.update(func(s *domain.SyncState) {
		s.Error = ""
		if s.Status != domain.SyncError {
			return
		}
		if s.PendingChanges {
			s.Status = domain.SyncDirty
		} else {
			s.Status = domain.SyncIdle
		}
	})
}

// SetOnline switches between offline and idle without touching other fields.
func (o *SyncOrchestrator) SetOnline(online bool) {
	o.update(func(s *domain.SyncState) {
		switch {
		case online && s.Status == domain.SyncOffline:
			s.Status = domain.SyncIdle
		case !online:
			s.Status = domain.SyncOffline
		}
	})
}

// State returns a copy of the current sync state.
func (o *SyncOrchestrator) State() domain.SyncState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return copyState(o.state)
}

// Baseline returns a copy of the last synced record, or nil.
func (o *SyncOrchestrator) Baseline() *domain.ComplianceRecord {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.baseline.Clone()
}

// Subscribe delivers a state snapshot after every transition. Slow
// subscribers see the latest state; intermediate ones may be dropped.
func (o *SyncOrchestrator) Subscribe() (<-chan domain.SyncState, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextSub
	o.nextSub++
	ch := make(chan domain.SyncState, subscriberBuffer)
	o.subs[id] = ch
	ch <- copyState(o.state)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Restore reloads the persisted state and baseline for sspID. It does
// nothing while an operation is in flight.
func (o *SyncOrchestrator) Restore(ctx context.Context, sspID string) error {
	if o.snapshots == nil {
		return fmt.Errorf("restore: %w", domain.ErrNotConfigured)
	}
	if !o.acquire() {
		return nil
	}
	defer o.release()

	snap, err := o.snapshots.GetSnapshot(ctx, sspID)
	if err != nil {
		return fmt.Errorf("restore %s: %w", sspID, err)
	}

	state := copyState(snap.State)
	switch {
	case o.remote == nil:
		state.Status = domain.SyncOffline
	case state.Status == domain.SyncSyncing || state.Status == domain.SyncOffline || !state.Status.IsValid():
		state.Status = domain.SyncIdle
	}

	o.setBaseline(snap.Baseline.Clone())
	o.update(func(s *domain.SyncState) { *s = state })
	logger.Debug("restored %s from snapshot saved %s", sspID, snap.SavedAt.Format(time.RFC3339))
	return nil
}

// startSync moves to syncing and returns the edit generation the push
// starts from.
func (o *SyncOrchestrator) startSync() uint64 {
	var gen uint64
	o.update(func(s *domain.SyncState) {
		s.Status = domain.SyncSyncing
		s.Error = ""
		gen = o.dirtyGen
	})
	return gen
}

// succeed records a completed sync. Edits marked after gen stay pending.
func (o *SyncOrchestrator) succeed(sspID string, gen uint64) {
	now := o.now()
	o.update(func(s *domain.SyncState) {
		s.Status = domain.SyncSynced
		s.SSPID = sspID
		s.LastSyncedAt = &now
		s.PendingChanges = false
		s.Error = ""
		if o.dirtyGen != gen {
			s.Status = domain.SyncDirty
			s.PendingChanges = true
		}
	})
}

// fail records err as the current error.
func (o *SyncOrchestrator) fail(err error) {
	logger.Warn("%v", err)
	o.update(func(s *domain.SyncState) {
		s.Status = domain.SyncError
		s.Error = err.Error()
	})
}

func (o *SyncOrchestrator) setBaseline(r *domain.ComplianceRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.baseline = r
}

// update applies fn to the state and notifies subscribers.
func (o *SyncOrchestrator) update(fn func(*domain.SyncState)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.state)
	snapshot := copyState(o.state)
	for _, ch := range o.subs {
		select {
		case ch <- snapshot:
		default:
			// Drop the oldest so the newest state is always delivered.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// persist saves the state and baseline. Failures are logged, not returned.
func (o *SyncOrchestrator) persist(ctx context.Context, sspID string) {
	if o.snapshots == nil {
		return
	}
	o.mu.RLock()
	snap := domain.Snapshot{
		State:    copyState(o.state),
		Baseline: o.baseline.Clone(),
		SavedAt:  o.now(),
	}
	o.mu.RUnlock()

	if err := o.snapshots.SaveSnapshot(ctx, sspID, snap); err != nil {
		logger.Warn("save snapshot %s: %v", sspID, err)
	}
}

func copyState(s domain.SyncState) domain.SyncState {
	if s.LastSyncedAt != nil {
		t := *s.LastSyncedAt
		s.LastSyncedAt = &t
	}
	return s
}

// applySections merges a document envelope's sections into record.
func applySections(record *domain.ComplianceRecord, sections map[string]any) {
	for key, content := range sections {
		switch c := content.(type) {
		case string:
			if c != "" {
				record.Set(key, c)
			}
		case map[string]any:
			if key == domain.ControlsKey {
				applyControls(record, c)
				continue
			}
			applyFields(record, c)
		}
	}
}

// applyFields copies the scalar values of body into record.
func applyFields(record *domain.ComplianceRecord, body map[string]any) {
	for k, v := range body {
		if k == "id" || k == "ssp_id" {
			continue
		}
		if s, ok := scalarString(v); ok && s != "" {
			record.Set(k, s)
		}
	}
}

func applyControls(record *domain.ComplianceRecord, controls map[string]any) {
	for id, v := range controls {
		switch c := v.(type) {
		case string:
			record.SetControl(id, domain.ControlEntry{Description: c})
		case map[string]any:
			status, _ := scalarString(c["status"])
			desc, _ := scalarString(c["description"])
			record.SetControl(id, domain.ControlEntry{Status: status, Description: desc})
		}
	}
}

// scalarString renders a decoded JSON scalar as a string.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	default:
		return "", false
	}
}

// toBody converts section content to a resource body.
func toBody(content any) map[string]any {
	switch c := content.(type) {
	case map[string]string:
		out := make(map[string]any, len(c))
		for k, v := range c {
			out[k] = v
		}
		return out
	case map[string]any:
		return c
	default:
		return map[string]any{}
	}
}

// Busy reports whether an operation holds the single-flight flag.
func (o *SyncOrchestrator) Busy() bool {
	return o.busy.Load()
}
