package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/interlinear/internal/align"
)

// words returns the layout words of a token pane.
func (m *Model) words(p Pane) []word {
	switch p {
	case PaneAudio:
		out := make([]word, len(m.audio))
		for i, t := range m.audio {
			out[i] = word{text: t.Value, joinAfter: t.SkipSpaceAfter}
		}
		return out
	case PaneSource:
		out := make([]word, len(m.source))
		for i, t := range m.source {
			out[i] = word{text: t.Text}
		}
		return out
	}
	return nil
}

// renderTokenPanel draws the audio or source tokens as flowing text.
func renderTokenPanel(m *Model, p Pane, width, height int) string {
	side, title := align.SideAudio, "AUDIO"
	if p == PaneSource {
		side, title = align.SideSource, "SOURCE"
	}

	style, titleStyle := panelStyle, panelTitleDimStyle
	if m.focus == p {
		style, titleStyle = panelActiveStyle, panelTitleStyle
	}

	selected := len(m.session.Selection(side))
	header := titleStyle.Render(title)
	if selected > 0 {
		header += headerMetaStyle.Render(fmt.Sprintf("  %d selected", selected))
	}

	bodyHeight := maxInt(height-2, 1)
	words := m.words(p)
	var body string
	if len(words) == 0 {
		body = emptyStateStyle.Render("No tokens")
	} else {
		lines := flowLines(words, m.tokenPaneInnerWidth())
		cur := -1
		if m.focus == p {
			cur = m.cursor[p]
		}
		curRow, _ := locate(lines, m.cursor[p])
		start := windowStart(curRow, bodyHeight)
		end := minInt(start+bodyHeight, len(lines))

		rendered := make([]string, 0, end-start)
		for _, line := range lines[start:end] {
			rendered = append(rendered, renderTokenLine(m, p, side, words, line, cur))
		}
		body = strings.Join(rendered, "\n")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, header, body)
	return style.Width(width).Height(height - 1).Render(content)
}

func renderTokenLine(m *Model, p Pane, side align.Side, words []word, line []int, cur int) string {
	var b strings.Builder
	for n, i := range line {
		var id align.TokenID
		untimed := false
		if p == PaneAudio {
			id = m.audio[i].ID
			untimed = !m.audio[i].Timed()
		} else {
			id = m.source[i].ID
		}
		st := m.session.TokenState(id, side)
		b.WriteString(tokenStyle(st, untimed, i == cur).Render(words[i].text))
		if n < len(line)-1 && !words[i].joinAfter {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// renderAlignmentPanel draws the alignment list: "#id audio → source".
func renderAlignmentPanel(m *Model, width, height int) string {
	style, titleStyle := panelStyle, panelTitleDimStyle
	if m.focus == PaneAlignments {
		style, titleStyle = panelActiveStyle, panelTitleStyle
	}

	alignments := m.session.Alignments()
	header := titleStyle.Render(fmt.Sprintf("ALIGNMENTS (%d)", len(alignments)))

	rows := maxInt(height-2, 1)
	var body string
	if len(alignments) == 0 {
		body = emptyStateStyle.Render("No alignments yet. Select tokens on both sides and press enter.")
	} else {
		offset := clamp(m.listOffset, 0, maxInt(len(alignments)-rows, 0))
		end := minInt(offset+rows, len(alignments))
		inner := maxInt(width-2, 10)

		lines := make([]string, 0, end-offset)
		for i := offset; i < end; i++ {
			lines = append(lines, renderAlignmentRow(m, alignments[i], i, inner))
		}
		body = strings.Join(lines, "\n")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, header, body)
	return style.Width(width).Height(height - 1).Render(content)
}

func renderAlignmentRow(m *Model, a align.Alignment, i, width int) string {
	id := alignIDStyle.Render(fmt.Sprintf("#%-3d", a.ID))
	audio := alignAudioStyle.Render(truncate(a.AudioText(), width/2-4))
	arrow := alignArrowStyle.Render(" → ")
	var source string
	if len(a.SourceTokens) == 0 {
		source = alignEmptySourceStyle.Render("(no source)")
	} else {
		source = alignSourceStyle.Render(truncate(a.SourceText(), width/2-4))
	}
	row := id + " " + audio + arrow + source

	switch {
	case m.focus == PaneAlignments && m.cursor[PaneAlignments] == i:
		return cursorRowStyle.Width(width).Render(row)
	case m.session.IsHighlightedAlignment(a.ID):
		return hoverRowStyle.Width(width).Render(row)
	default:
		return row
	}
}
