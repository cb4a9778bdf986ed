package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ssp-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/services"
)

type fakeSaver struct {
	calls int
	saved bool
}

func (f *fakeSaver) SaveIfPending(context.Context) bool {
	f.calls++
	return f.saved
}

func newTestApp(t *testing.T, saver Saver) (*App, *services.SyncOrchestrator) {
	t.Helper()
	orch := services.NewSyncOrchestrator(nil, nil)
	orch.SetCurrent("ssp-1", "Payroll")
	app, err := NewApp(&Ports{Sync: orch, Saver: saver})
	require.NoError(t, err)
	return app, orch
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewApp_RequiresSync(t *testing.T) {
	_, err := NewApp(&Ports{})
	assert.ErrorIs(t, err, ErrMissingSyncOrchestrator)

	_, err = NewApp(nil)
	assert.ErrorIs(t, err, ErrMissingSyncOrchestrator)
}

func TestApp_InitialView(t *testing.T) {
	app, _ := newTestApp(t, nil)

	view := app.View()
	assert.Contains(t, view, "SSP sync status")
	assert.Contains(t, view, "ssp-1")
	assert.Contains(t, view, "Payroll")
	assert.Contains(t, view, "never")
	assert.Contains(t, view, string(domain.SyncOffline))
}

func TestApp_ReceivesStateChanges(t *testing.T) {
	app, orch := newTestApp(t, nil)
	require.NotNil(t, app.Init())

	// The subscription delivers the current state first.
	msg := app.waitForState()()
	_, cmd := app.Update(msg)
	assert.NotNil(t, cmd)

	orch.SetOnline(true)
	orch.MarkDirty()
	for i := 0; i < 2; i++ {
		_, _ = app.Update(app.waitForState()())
	}
	assert.True(t, app.State().PendingChanges)
	assert.Contains(t, app.View(), "yes")

	_, _ = app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, messages.SubscriptionClosed{}, app.waitForState()())
}

func TestApp_ErrorAndDismiss(t *testing.T) {
	app, orch := newTestApp(t, nil)

	_, _ = app.Update(messages.StateChanged{State: domain.SyncState{
		Status: domain.SyncError, SSPID: "ssp-1", Error: "Server error (500): boom",
	}})
	assert.Contains(t, app.View(), "Server error (500): boom")

	_, _ = app.Update(keyMsg("x"))
	assert.Empty(t, orch.State().Error)
}

func TestApp_Save(t *testing.T) {
	saver := &fakeSaver{saved: true}
	app, _ := newTestApp(t, saver)

	_, cmd := app.Update(keyMsg("s"))
	require.NotNil(t, cmd)
	assert.Equal(t, "Saving...", app.bar.Message())

	_, _ = app.Update(cmd())
	assert.Equal(t, 1, saver.calls)
	assert.Equal(t, "Saved", app.bar.Message())

	_, _ = app.Update(messages.SaveCompleted{Saved: false})
	assert.Equal(t, "Nothing saved", app.bar.Message())
}

func TestApp_SaveUnavailable(t *testing.T) {
	app, _ := newTestApp(t, nil)

	_, cmd := app.Update(keyMsg("s"))
	assert.Nil(t, cmd)
	assert.Contains(t, app.bar.Message(), "not available")
}

func TestApp_HelpAndResize(t *testing.T) {
	app, _ := newTestApp(t, nil)

	_, _ = app.Update(keyMsg("?"))
	assert.Contains(t, app.View(), "dismiss error")
	_, _ = app.Update(keyMsg("?"))
	assert.NotContains(t, app.View(), "dismiss error")

	_, _ = app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, app.bar.Width())
}

func TestApp_LastSynced(t *testing.T) {
	app, _ := newTestApp(t, nil)
	synced := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	app.now = func() time.Time { return synced.Add(90 * time.Second) }

	_, _ = app.Update(messages.StateChanged{State: domain.SyncState{
		Status: domain.SyncSyncing, SSPID: "ssp-1", LastSyncedAt: &synced,
	}})
	view := app.View()
	assert.Contains(t, view, "1m30s ago")
	assert.Contains(t, view, string(domain.SyncSyncing))
}

func TestApp_Quit(t *testing.T) {
	app, _ := newTestApp(t, nil)
	app.Init()

	_, cmd := app.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
