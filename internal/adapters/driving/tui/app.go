package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ssp-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ssp-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ssp-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ssp-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// App is the sync status view following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	bar    *status.Bar
	help   help.Model

	spinner spinner.Model

	// state is the last snapshot received from the orchestrator.
	state domain.SyncState

	updates     <-chan domain.SyncState
	unsubscribe func()

	showHelp bool
	width    int
	now      func() time.Time
}

// NewApp creates the status view.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Spinner

	app := &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  s,
		keymap:  km,
		bar:     status.NewBar(s, km),
		help:    help.New(),
		spinner: sp,
		state:   ports.Sync.State(),
		width:   80,
		now:     time.Now,
	}
	app.bar.SetDocument(app.state.SSPID, app.state.Title)
	return app, nil
}

// WithContext sets the context used for saves.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init subscribes to orchestrator state and starts the spinner.
func (a *App) Init() tea.Cmd {
	a.updates, a.unsubscribe = a.ports.Sync.Subscribe()
	return tea.Batch(a.spinner.Tick, a.waitForState())
}

func (a *App) waitForState() tea.Cmd {
	ch := a.updates
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return messages.SubscriptionClosed{}
		}
		return messages.StateChanged{State: st}
	}
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.bar.SetWidth(msg.Width)
		a.help.Width = msg.Width
		return a, nil

	case messages.StateChanged:
		a.state = msg.State
		a.bar.SetDocument(msg.State.SSPID, msg.State.Title)
		return a, a.waitForState()

	case messages.SubscriptionClosed:
		a.updates = nil
		return a, nil

	case messages.SaveCompleted:
		if msg.Saved {
			a.bar.SetMessage("Saved")
		} else {
			a.bar.SetMessage("Nothing saved")
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		a.close()
		return a, tea.Quit

	case key.Matches(msg, a.keymap.Help):
		a.showHelp = !a.showHelp
		return a, nil

	case key.Matches(msg, a.keymap.Dismiss):
		a.ports.Sync.ClearError()
		a.bar.SetMessage("")
		return a, nil

	case key.Matches(msg, a.keymap.Save):
		if a.ports.Saver == nil {
			a.bar.SetMessage("Saving is not available here")
			return a, nil
		}
		a.bar.SetMessage("Saving...")
		saver, ctx := a.ports.Saver, a.ctx
		return a, func() tea.Msg {
			return messages.SaveCompleted{Saved: saver.SaveIfPending(ctx)}
		}
	}
	return a, nil
}

func (a *App) close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// View renders the status card, help and status bar.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("SSP sync status"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Panel.Render(a.renderCard()))
	b.WriteString("\n")

	if a.showHelp {
		b.WriteString(a.help.FullHelpView(a.keymap.FullHelp()))
		b.WriteString("\n")
	}

	b.WriteString(a.bar.View())
	return b.String()
}

func (a *App) renderCard() string {
	st := a.state
	rows := []string{
		a.row("Status", a.renderStatus()),
		a.row("Document", valueOr(st.SSPID, "none")),
	}
	if st.Title != "" {
		rows = append(rows, a.row("Title", st.Title))
	}
	rows = append(rows, a.row("Last synced", a.renderLastSynced()))

	pending := "no"
	if st.PendingChanges {
		pending = a.styles.Warning.Render("yes")
	}
	rows = append(rows, a.row("Pending edits", pending))

	if st.Error != "" {
		rows = append(rows, a.row("Error", a.styles.Error.Render(st.Error)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) row(label, value string) string {
	return a.styles.Label.Render(label) + value
}

func (a *App) renderStatus() string {
	badge := a.styles.ForStatus(a.state.Status).Render(string(a.state.Status))
	if a.state.Status == domain.SyncSyncing {
		return a.spinner.View() + " " + badge
	}
	return badge
}

func (a *App) renderLastSynced() string {
	if a.state.LastSyncedAt == nil {
		return a.styles.Muted.Render("never")
	}
	ago := a.now().Sub(*a.state.LastSyncedAt).Truncate(time.Second)
	return fmt.Sprintf("%s (%s ago)", a.state.LastSyncedAt.Local().Format(time.Kitchen), ago)
}

// State returns the last displayed sync state.
func (a *App) State() domain.SyncState {
	return a.state
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
