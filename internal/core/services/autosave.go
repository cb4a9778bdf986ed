package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ssp-cli/internal/logger"
)

// DefaultAutoSaveInterval is how often pending edits are pushed.
const DefaultAutoSaveInterval = 5 * time.Second

// RecordSource returns the current working record.
type RecordSource func(ctx context.Context) (*domain.ComplianceRecord, error)

// AutoSaver pushes pending local edits to the remote store on a fixed
// interval. Edits are signalled through the orchestrator's MarkDirty.
type AutoSaver struct {
	orch     driving.SyncOrchestrator
	source   RecordSource
	sspID    string
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewAutoSaver creates an autosaver for one document. A non-positive
// interval uses DefaultAutoSaveInterval.
func NewAutoSaver(orch driving.SyncOrchestrator, sspID string, source RecordSource, interval time.Duration) *AutoSaver {
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	return &AutoSaver{
		orch:     orch,
		source:   source,
		sspID:    sspID,
		interval: interval,
	}
}

// Start runs the save loop. It blocks until Stop is called or ctx ends.
func (a *AutoSaver) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = true
	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	stop, done := a.stopCh, a.doneCh
	a.mu.Unlock()
	defer close(done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.markStopped()
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			a.SaveIfPending(ctx)
		}
	}
}

// Stop ends the loop and waits for an in-flight save.
func (a *AutoSaver) Stop() error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	close(a.stopCh)
	done := a.doneCh
	a.mu.Unlock()

	<-done
	return nil
}

func (a *AutoSaver) markStopped() {
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
}

// SaveIfPending saves when the orchestrator reports unsaved edits and is
// online. It reports whether a save succeeded.
func (a *AutoSaver) SaveIfPending(ctx context.Context) bool {
	st := a.orch.State()
	if !st.PendingChanges {
		return false
	}
	switch st.Status {
	case domain.SyncOffline, domain.SyncSyncing:
		return false
	}

	record, err := a.source(ctx)
	if err != nil {
		logger.Warn("autosave: read record: %v", err)
		return false
	}
	if record == nil {
		return false
	}

	ok := a.orch.SaveToServer(ctx, a.sspID, record)
	if ok {
		logger.Debug("autosave: pushed %s", a.sspID)
	} else if msg := a.orch.State().Error; msg != "" {
		logger.Warn("autosave: %s", msg)
	}
	return ok
}

// String describes the autosaver for status output.
func (a *AutoSaver) String() string {
	return fmt.Sprintf("autosave %s every %s", a.sspID, a.interval)
}
