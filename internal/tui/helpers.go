package tui

import "github.com/charmbracelet/lipgloss"

// ────────────────────────────────────────────────────────────
// Token flow layout
// ────────────────────────────────────────────────────────────

// word is one token as laid out in a panel.
type word struct {
	text      string
	joinAfter bool // no space before the next word
}

// flowLines wraps words greedily into lines of at most width cells and
// returns the word indices of each line. A word wider than the panel gets a
// line of its own.
func flowLines(words []word, width int) [][]int {
	if len(words) == 0 {
		return nil
	}
	width = maxInt(width, 1)

	var lines [][]int
	var line []int
	used := 0
	for i, w := range words {
		ww := lipgloss.Width(w.text)
		gap := 0
		if len(line) > 0 && !words[line[len(line)-1]].joinAfter {
			gap = 1
		}
		if len(line) > 0 && used+gap+ww > width {
			lines = append(lines, line)
			line, used, gap = nil, 0, 0
		}
		line = append(line, i)
		used += gap + ww
	}
	return append(lines, line)
}

// locate returns the line and column of word i.
func locate(lines [][]int, i int) (row, col int) {
	for r, line := range lines {
		if len(line) > 0 && i >= line[0] && i <= line[len(line)-1] {
			return r, i - line[0]
		}
	}
	return 0, 0
}

// verticalMove returns the word on the line delta lines away from word i,
// keeping the column where possible.
func verticalMove(lines [][]int, i, delta int) int {
	if len(lines) == 0 {
		return i
	}
	row, col := locate(lines, i)
	row = clamp(row+delta, 0, len(lines)-1)
	line := lines[row]
	return line[minInt(col, len(line)-1)]
}

// windowStart returns the first visible line so that line cur is shown in a
// window of height lines.
func windowStart(cur, height int) int {
	if height <= 0 || cur < height {
		return 0
	}
	return cur - height + 1
}

// scrollToEdge moves offset the minimum distance needed to show index i in
// a window of height rows.
func scrollToEdge(offset, i, height int) int {
	if height <= 0 {
		return offset
	}
	if i < offset {
		return i
	}
	if i >= offset+height {
		return i - height + 1
	}
	return offset
}

// ────────────────────────────────────────────────────────────
// String helpers
// ────────────────────────────────────────────────────────────

// truncate cuts a string to maxLen and appends "..." if truncated.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// clamp restricts val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// maxInt returns the larger of a and b.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// minInt returns the smaller of a and b.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
