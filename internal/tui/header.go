package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/interlinear/internal/align"
	"github.com/Mr-Dark-debug/interlinear/pkg/timeutil"
)

// renderHeader produces the top bar:
//
//	INTERLINEAR  │  ▶ 0:03.120  │  select  │  audio 4/14  source 2/7  │  mark01.mp3
func renderHeader(m *Model) string {
	brand := headerBrandStyle.Render("INTERLINEAR")
	sep := headerSepStyle.Render(" │ ")

	parts := []string{brand, sep}

	if m.player.Playing() {
		parts = append(parts, headerPlayingStyle.Render("▶ "+timeutil.FormatClock(m.session.Position())))
	} else {
		parts = append(parts, headerMetaStyle.Render("⏸ "+timeutil.FormatClock(m.session.Position())))
	}

	parts = append(parts, sep)
	if m.session.Mode() == align.ModeJump {
		parts = append(parts, headerJumpStyle.Render("jump"))
	} else {
		parts = append(parts, headerMetaStyle.Render("select"))
	}

	parts = append(parts, sep)
	parts = append(parts, headerMetaStyle.Render(fmt.Sprintf("audio %d/%d  source %d/%d",
		m.session.LockedCount(align.SideAudio), len(m.audio),
		m.session.LockedCount(align.SideSource), len(m.source))))

	if m.opts.Title != "" {
		parts = append(parts, sep)
		parts = append(parts, headerMetaStyle.Render(truncate(m.opts.Title, 40)))
	}

	return headerBarStyle.Width(m.width).Render(strings.Join(parts, ""))
}

// renderFooter produces the bottom status bar with keyboard hints.
func renderFooter(m *Model) string {
	var left string
	if m.statusMsg != "" {
		if m.statusErr {
			left = statusErrorStyle.Render(m.statusMsg)
		} else {
			left = statusStyle.Render(m.statusMsg)
		}
	}

	if m.help.ShowAll {
		return footerStyle.Width(m.width).Render(
			lipgloss.JoinVertical(lipgloss.Left, left, m.help.View(keys)))
	}

	right := m.help.ShortHelpView(keys.ShortHelp())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		right = ""
		gap = maxInt(m.width-lipgloss.Width(left), 0)
	}

	bar := left + strings.Repeat(" ", gap) + right
	return footerStyle.Width(m.width).Render(bar)
}
