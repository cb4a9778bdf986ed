// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// Theme defines the colour palette and styling for the TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates a clean, synced document.
	Success lipgloss.Color

	// Warning indicates unsaved edits.
	Warning lipgloss.Color

	// Error indicates a failed sync.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#2563EB"), // Blue
		Secondary:  lipgloss.Color("#0EA5E9"), // Sky
		Foreground: lipgloss.Color("#E5E7EB"), // Light gray
		Muted:      lipgloss.Color("#6B7280"), // Medium gray
		Success:    lipgloss.Color("#22C55E"), // Green
		Warning:    lipgloss.Color("#EAB308"), // Amber
		Error:      lipgloss.Color("#EF4444"), // Red
		Border:     lipgloss.Color("#374151"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title     lipgloss.Style
	Label     lipgloss.Style
	Normal    lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Spinner   lipgloss.Style
	StatusBar lipgloss.Style
	Help      lipgloss.Style

	// Panel frames the status card.
	Panel lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(14),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Secondary),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// ForStatus returns the badge style for a sync status.
func (s *Styles) ForStatus(status domain.SyncStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch status {
	case domain.SyncSynced:
		return base.Foreground(s.theme.Success)
	case domain.SyncDirty:
		return base.Foreground(s.theme.Warning)
	case domain.SyncError:
		return base.Foreground(s.theme.Error)
	case domain.SyncSyncing:
		return base.Foreground(s.theme.Secondary)
	default:
		return base.Foreground(s.theme.Muted)
	}
}
