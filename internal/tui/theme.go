package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/interlinear/internal/align"
)

// ────────────────────────────────────────────────────────────
// Color palette: GitHub dark
// ────────────────────────────────────────────────────────────
//
// All colors are defined here. No ad-hoc color literals anywhere.

var (
	// Base
	colorBgSurface = lipgloss.Color("#1c2128")

	// Text
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	// Accents
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")
	colorPurple = lipgloss.Color("#bc8cff")

	// Structural
	colorDivider   = lipgloss.Color("#30363d")
	colorHighlight = lipgloss.Color("#1f6feb")
	colorHover     = lipgloss.Color("#3b2e58")
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	headerPlayingStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	headerJumpStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)
)

// Panel chrome
var (
	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.Border{
			Top:    "─",
			Bottom: "",
			Left:   "",
			Right:  "",
		}).
		BorderForeground(colorDivider)

	panelActiveStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.Border{
			Top:    "─",
			Bottom: "",
			Left:   "",
			Right:  "",
		}).
		BorderForeground(colorBlue)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	panelTitleDimStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Bold(true)
)

// Tokens. Precedence is selected > locked > active; hover highlight is
// layered on top as a background.
var (
	tokenNormalStyle = lipgloss.NewStyle().
				Foreground(colorText)

	tokenSelectedStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(colorText).
				Bold(true)

	tokenLockedStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)

	tokenActiveStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	tokenUntimedStyle = lipgloss.NewStyle().
				Foreground(colorTextDim)
)

// Alignment list
var (
	alignIDStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	alignAudioStyle = lipgloss.NewStyle().
			Foreground(colorText)

	alignArrowStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	alignSourceStyle = lipgloss.NewStyle().
				Foreground(colorBlue)

	alignEmptySourceStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Italic(true)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Padding(1, 2)
)

// Footer / status bar
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Background(colorBgSurface).
				Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Background(colorBgSurface)
)

// tokenStyle resolves the presentation of one token.
func tokenStyle(st align.TokenState, untimed, cursor bool) lipgloss.Style {
	var s lipgloss.Style
	switch {
	case st.Selected:
		s = tokenSelectedStyle
	case st.Locked:
		s = tokenLockedStyle
	case st.Active:
		s = tokenActiveStyle
	case untimed:
		s = tokenUntimedStyle
	default:
		s = tokenNormalStyle
	}
	if st.Highlighted && !st.Selected {
		s = s.Background(colorHover).Foreground(colorPurple)
	}
	if cursor {
		s = s.Underline(true).Bold(true)
	}
	return s
}

// hoverRowStyle marks the highlighted alignment-list entry.
var hoverRowStyle = lipgloss.NewStyle().
	Background(colorHover)

// cursorRowStyle marks the alignment-list cursor.
var cursorRowStyle = lipgloss.NewStyle().
	Background(colorHighlight).
	Foreground(colorText)
