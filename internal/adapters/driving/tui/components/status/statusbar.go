// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ssp-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ssp-cli/internal/adapters/driving/tui/styles"
)

// Bar displays the open document and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	label   string
	message string
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		width:  80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	if b.message != "" {
		return b.styles.Normal.Render(b.message)
	}
	if b.label == "" {
		return b.styles.Muted.Render("No document")
	}
	return b.styles.Muted.Render(b.label)
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetDocument sets the document label from its id and title.
func (b *Bar) SetDocument(sspID, title string) {
	switch {
	case sspID == "":
		b.label = ""
	case title == "":
		b.label = sspID
	default:
		b.label = fmt.Sprintf("%s (%s)", title, sspID)
	}
}

// Label returns the document label.
func (b *Bar) Label() string {
	return b.label
}

// SetMessage sets a transient message that replaces the label.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}
