// Package analysis computes deterministic coverage statistics for an
// annotation session.
//
// Key capabilities:
//   - Token coverage on both sides, live or from the journal
//   - Group shape distribution (how many audio words per source word)
//   - Longest unaligned stretches of the recording
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/interlinear/internal/align"
	"github.com/Mr-Dark-debug/interlinear/internal/database"
	"github.com/Mr-Dark-debug/interlinear/pkg/timeutil"
)

// MaxGaps bounds the number of unaligned stretches a report lists.
const MaxGaps = 5

// Analyzer builds reports from journaled sessions.
type Analyzer struct {
	store database.Store
}

// NewAnalyzer creates a new analysis engine backed by the given store.
func NewAnalyzer(store database.Store) *Analyzer {
	return &Analyzer{store: store}
}

// ============================================================
// Report model
// ============================================================

// Coverage counts aligned tokens on each side.
type Coverage struct {
	AudioTokens    int     `json:"audio_tokens"`
	SourceTokens   int     `json:"source_tokens"`
	UntimedAudio   int     `json:"untimed_audio"`
	AlignedAudio   int     `json:"aligned_audio"`
	AlignedSource  int     `json:"aligned_source"`
	Alignments     int     `json:"alignments"`
	AudioOnly      int     `json:"audio_only"`
	AudioPercent   float64 `json:"audio_percent"`
	SourcePercent  float64 `json:"source_percent"`
	AlignedAudioMs int64   `json:"aligned_audio_ms"`
}

// GroupShape counts alignments with the same member counts, e.g. 2 audio
// tokens to 1 source token.
type GroupShape struct {
	Audio  int `json:"audio"`
	Source int `json:"source"`
	Count  int `json:"count"`
}

func (g GroupShape) String() string {
	return fmt.Sprintf("%d:%d", g.Audio, g.Source)
}

// Gap is a run of consecutive unaligned audio tokens.
type Gap struct {
	FromIdx int    `json:"from_idx"`
	ToIdx   int    `json:"to_idx"`
	StartMs *int64 `json:"start_ms,omitempty"`
	EndMs   *int64 `json:"end_ms,omitempty"`
	Tokens  int    `json:"tokens"`
	Text    string `json:"text"`
}

// DurationMs returns the playback span of the gap, or 0 when no member is
// timed.
func (g Gap) DurationMs() int64 {
	if g.StartMs == nil || g.EndMs == nil {
		return 0
	}
	return *g.EndMs - *g.StartMs
}

// Report is the full coverage report of one session.
type Report struct {
	SessionID   string       `json:"session_id,omitempty"`
	GeneratedAt string       `json:"generated_at"`
	Coverage    Coverage     `json:"coverage"`
	Shapes      []GroupShape `json:"shapes"`
	Gaps        []Gap        `json:"gaps,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`
}

// ============================================================
// Live sessions
// ============================================================

// FromSession computes a report from the in-memory session state.
func FromSession(s *align.Session) *Report {
	audio := s.AudioTokens()
	alignments := s.Alignments()

	cov := Coverage{
		AudioTokens:  len(audio),
		SourceTokens: len(s.SourceTokens()),
		Alignments:   len(alignments),
	}
	for _, t := range audio {
		if !t.Timed() {
			cov.UntimedAudio++
		}
	}

	shapes := make(map[GroupShape]int)
	for _, a := range alignments {
		cov.AlignedAudio += len(a.AudioTokens)
		cov.AlignedSource += len(a.SourceTokens)
		if len(a.SourceTokens) == 0 {
			cov.AudioOnly++
		}
		for _, t := range a.AudioTokens {
			if start, end, ok := span(t); ok {
				cov.AlignedAudioMs += end - start
			}
		}
		shapes[GroupShape{Audio: len(a.AudioTokens), Source: len(a.SourceTokens)}]++
	}
	finishCoverage(&cov)

	report := &Report{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Coverage:    cov,
		Shapes:      sortShapes(shapes),
		Gaps:        findGaps(audio, func(id align.TokenID) bool { return s.IsLocked(id, align.SideAudio) }),
	}
	report.Warnings = warnings(report)
	return report
}

// span returns the earliest start and latest end of a token's ranges.
func span(t align.AudioToken) (start, end int64, ok bool) {
	if !t.Timed() {
		return 0, 0, false
	}
	start, end = t.AudioRanges[0].Start, t.AudioRanges[0].End
	for _, r := range t.AudioRanges[1:] {
		start = min(start, r.Start)
		end = max(end, r.End)
	}
	return start, end, true
}

// findGaps collects runs of unaligned tokens and keeps the MaxGaps longest,
// by duration and then by token count.
func findGaps(audio []align.AudioToken, aligned func(align.TokenID) bool) []Gap {
	var gaps []Gap
	var cur *Gap
	var words []string

	flush := func() {
		if cur != nil {
			cur.Text = strings.Join(words, " ")
			gaps = append(gaps, *cur)
		}
		cur, words = nil, nil
	}

	for _, t := range audio {
		if aligned(t.ID) {
			flush()
			continue
		}
		if cur == nil {
			cur = &Gap{FromIdx: t.Idx}
		}
		cur.ToIdx = t.Idx
		cur.Tokens++
		words = append(words, t.Value)
		if start, end, ok := span(t); ok {
			if cur.StartMs == nil || start < *cur.StartMs {
				cur.StartMs = &start
			}
			if cur.EndMs == nil || end > *cur.EndMs {
				cur.EndMs = &end
			}
		}
	}
	flush()

	sort.SliceStable(gaps, func(i, j int) bool {
		di, dj := gaps[i].DurationMs(), gaps[j].DurationMs()
		if di != dj {
			return di > dj
		}
		return gaps[i].Tokens > gaps[j].Tokens
	})
	if len(gaps) > MaxGaps {
		gaps = gaps[:MaxGaps]
	}
	return gaps
}

// ============================================================
// Journaled sessions
// ============================================================

// SessionReport computes a report for a journaled session. Token lists are
// not journaled, so the report has no gaps and no untimed count.
func (a *Analyzer) SessionReport(sessionID string) (*Report, error) {
	stats, err := a.store.GetSessionStats(sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading stats for report: %w", err)
	}
	records, err := a.store.QueryAlignments(sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading alignments for report: %w", err)
	}

	cov := Coverage{
		AudioTokens:   stats.AudioTokenCount,
		SourceTokens:  stats.SourceTokenCount,
		AlignedAudio:  stats.AlignedAudio,
		AlignedSource: stats.AlignedSource,
		Alignments:    stats.Alignments,
		AudioOnly:     stats.AudioOnly,
	}

	shapes := make(map[GroupShape]int)
	for _, rec := range records {
		for _, m := range rec.AudioMembers {
			if m.StartMs != nil && m.EndMs != nil {
				cov.AlignedAudioMs += *m.EndMs - *m.StartMs
			}
		}
		shapes[GroupShape{Audio: len(rec.AudioMembers), Source: len(rec.SourceMembers)}]++
	}
	finishCoverage(&cov)

	report := &Report{
		SessionID:   sessionID,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Coverage:    cov,
		Shapes:      sortShapes(shapes),
	}
	report.Warnings = warnings(report)
	return report, nil
}

// ============================================================
// Helpers
// ============================================================

func finishCoverage(c *Coverage) {
	c.AudioPercent = percent(c.AlignedAudio, c.AudioTokens)
	c.SourcePercent = percent(c.AlignedSource, c.SourceTokens)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

// sortShapes orders shapes by count descending, then by size.
func sortShapes(m map[GroupShape]int) []GroupShape {
	shapes := make([]GroupShape, 0, len(m))
	for s, n := range m {
		s.Count = n
		shapes = append(shapes, s)
	}
	sort.Slice(shapes, func(i, j int) bool {
		if shapes[i].Count != shapes[j].Count {
			return shapes[i].Count > shapes[j].Count
		}
		if shapes[i].Audio != shapes[j].Audio {
			return shapes[i].Audio < shapes[j].Audio
		}
		return shapes[i].Source < shapes[j].Source
	})
	return shapes
}

func warnings(r *Report) []string {
	var out []string
	c := r.Coverage
	if c.AudioOnly > 0 {
		out = append(out, fmt.Sprintf("%d alignment(s) have no source tokens", c.AudioOnly))
	}
	if c.UntimedAudio > 0 {
		out = append(out, fmt.Sprintf("%d audio token(s) have no time ranges and never highlight during playback", c.UntimedAudio))
	}
	if c.AudioTokens > 0 && c.AlignedAudio < c.AudioTokens {
		out = append(out, fmt.Sprintf("%d audio token(s) are not aligned yet", c.AudioTokens-c.AlignedAudio))
	}
	if c.SourceTokens > 0 && c.AlignedSource < c.SourceTokens {
		out = append(out, fmt.Sprintf("%d source token(s) are not aligned yet", c.SourceTokens-c.AlignedSource))
	}
	return out
}

// FormatReport generates a human-readable markdown report.
func FormatReport(report *Report) string {
	var b strings.Builder
	c := report.Coverage

	b.WriteString("# Interlinear Coverage Report\n\n")
	if report.SessionID != "" {
		b.WriteString(fmt.Sprintf("**Session ID:** `%s`\n", report.SessionID))
	}
	b.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt))

	b.WriteString("## Coverage\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	b.WriteString(fmt.Sprintf("| Alignments | %d |\n", c.Alignments))
	b.WriteString(fmt.Sprintf("| Audio Tokens Aligned | %d / %d (%.1f%%) |\n", c.AlignedAudio, c.AudioTokens, c.AudioPercent))
	b.WriteString(fmt.Sprintf("| Source Tokens Aligned | %d / %d (%.1f%%) |\n", c.AlignedSource, c.SourceTokens, c.SourcePercent))
	b.WriteString(fmt.Sprintf("| Audio-only Alignments | %d |\n", c.AudioOnly))
	b.WriteString(fmt.Sprintf("| Aligned Speech | %s |\n\n", timeutil.FormatDuration(c.AlignedAudioMs)))

	if len(report.Shapes) > 0 {
		b.WriteString("## Group Shapes\n\n")
		b.WriteString("| Audio:Source | Alignments |\n")
		b.WriteString("|--------------|------------|\n")
		for _, s := range report.Shapes {
			b.WriteString(fmt.Sprintf("| %s | %d |\n", s, s.Count))
		}
		b.WriteString("\n")
	}

	if len(report.Gaps) > 0 {
		b.WriteString("## Longest Unaligned Stretches\n\n")
		b.WriteString("| Tokens | Span | Text |\n")
		b.WriteString("|--------|------|------|\n")
		for _, g := range report.Gaps {
			where := "untimed"
			if g.StartMs != nil {
				where = timeutil.FormatRange(*g.StartMs, *g.EndMs)
			}
			b.WriteString(fmt.Sprintf("| %d–%d | %s | %s |\n", g.FromIdx, g.ToIdx, where, g.Text))
		}
		b.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", w))
		}
		b.WriteString("\n")
	}

	return b.String()
}
