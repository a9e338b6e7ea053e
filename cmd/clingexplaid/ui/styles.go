// Package ui provides the interactive terminal interface for the
// explanation tools.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary = lipgloss.Color("#101F38") // dark blue
	ColorAccent  = lipgloss.Color("#8BC34A") // lime green
	ColorMuted   = lipgloss.Color("#6c7a89")
	ColorBorder  = lipgloss.Color("#2a3850")

	ColorError   = lipgloss.Color("#e53935")
	ColorSuccess = lipgloss.Color("#8BC34A")
	ColorWarning = lipgloss.Color("#FFC107")
)

// Styles holds all the styled components of the interface.
type Styles struct {
	Header    lipgloss.Style
	Footer    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Content   lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Banner    lipgloss.Style
	Spinner   lipgloss.Style
}

// NewStyles creates the default style set.
func NewStyles() Styles {
	accent := ColorAccent
	if os.Getenv("NO_COLOR") != "" {
		accent = lipgloss.Color("")
	}
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(ColorPrimary).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 2),

		Tab: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 2),

		ActiveTab: lipgloss.NewStyle().
			Foreground(accent).
			Padding(0, 2).
			Bold(true).
			Underline(true),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Muted: lipgloss.NewStyle().
			Foreground(ColorMuted),

		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),

		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(ColorPrimary).
			Padding(0, 1).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(accent),
	}
}

// RenderDivider returns a horizontal divider.
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return s.Muted.Render(strings.Repeat("─", width))
}
