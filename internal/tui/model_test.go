package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/interlinear/internal/align"
	"github.com/Mr-Dark-debug/interlinear/internal/media"
)

type frozenClock struct{ t time.Time }

func (f *frozenClock) now() time.Time { return f.t }

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, ks ...string) Model {
	t.Helper()
	for _, k := range ks {
		next, _ := m.Update(keyMsg(k))
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func resize(m Model, w, h int) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return next.(Model)
}

func newTestModel(t *testing.T, policy align.Policy) (Model, *align.Session, *media.Clock) {
	t.Helper()
	clock := media.NewClock(media.WithNow((&frozenClock{t: time.Unix(0, 0)}).now))
	s := align.NewSession(align.Options{Policy: policy, Transport: clock})
	require.NoError(t, s.LoadTokens(
		[]align.AudioToken{
			{ID: "1", Idx: 0, Value: "Christ", AudioRanges: []align.TimeRange{{Start: 0, End: 400}}},
			{ID: "2", Idx: 1, Value: "Jesus", AudioRanges: []align.TimeRange{{Start: 400, End: 900}}},
			{ID: "3", Idx: 2, Value: ",", SkipSpaceAfter: true},
			{ID: "4", Idx: 3, Value: "Lord", AudioRanges: []align.TimeRange{{Start: 1000, End: 1300}}},
		},
		[]align.SourceToken{
			{ID: "a", Idx: 0, Text: "Ἰησοῦ"},
			{ID: "b", Idx: 1, Text: "Χριστοῦ"},
		},
	))
	m := resize(NewModel(s, clock, Options{Title: "mark01.mp3"}), 100, 30)
	return m, s, clock
}

func TestSelectAndCommit(t *testing.T) {
	m, s, _ := newTestModel(t, align.PolicyStrict)

	m = press(t, m, "space", "right", "space")
	assert.Equal(t, []align.TokenID{"1", "2"}, s.Selection(align.SideAudio))

	// Commit is disabled until the source side has a selection.
	m = press(t, m, "enter")
	assert.Empty(t, s.Alignments())
	assert.Contains(t, m.statusMsg, "Select audio and source tokens")

	m = press(t, m, "tab", "right", "space", "enter")
	require.Len(t, s.Alignments(), 1)
	a := s.Alignments()[0]
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, []align.TokenID{"1", "2"}, a.AudioIDs())
	assert.Equal(t, []align.TokenID{"b"}, a.SourceIDs())
	assert.Equal(t, "Created alignment #1", m.statusMsg)

	assert.True(t, s.IsLocked("b", align.SideSource))
	assert.Empty(t, s.Selection(align.SideAudio))

	// The pointer is still on "b", so the new alignment highlights.
	assert.True(t, s.IsHighlightedAlignment(1))
	assert.True(t, s.TokenState("1", align.SideAudio).Highlighted)

	// Clicking a locked token changes nothing.
	m = press(t, m, "space")
	assert.Empty(t, s.Selection(align.SideSource))
	assert.Equal(t, "Token already aligned", m.statusMsg)

	m = press(t, m, "esc")
	_, ok := s.Highlighted()
	assert.False(t, ok)
}

func TestAudioOnlyPolicy(t *testing.T) {
	m, s, _ := newTestModel(t, align.PolicyAllowAudioOnly)
	m = press(t, m, "enter")
	assert.Equal(t, "Select at least one audio token", m.statusMsg)

	m = press(t, m, "right", "right", "space", "enter")
	require.Len(t, s.Alignments(), 1)
	assert.Empty(t, s.Alignments()[0].SourceTokens)
	assert.Contains(t, m.View(), "(no source)")
}

func TestClearSelections(t *testing.T) {
	m, s, _ := newTestModel(t, align.PolicyStrict)
	m = press(t, m, "space", "tab", "space")
	require.Len(t, s.Selection(align.SideSource), 1)

	m = press(t, m, "x")
	assert.Empty(t, s.Selection(align.SideAudio))
	assert.Empty(t, s.Selection(align.SideSource))
	assert.Equal(t, "Selections cleared", m.statusMsg)
}

func TestJumpMode(t *testing.T) {
	m, s, clock := newTestModel(t, align.PolicyStrict)

	m = press(t, m, "m")
	assert.Equal(t, align.ModeJump, s.Mode())

	m = press(t, m, "right", "space")
	assert.EqualValues(t, 400, clock.Position())
	assert.True(t, clock.Playing())
	assert.True(t, s.IsActive("2"))
	assert.Empty(t, s.Selection(align.SideAudio), "jump clicks never select")

	// Untimed tokens are not seekable.
	m = press(t, m, "right", "space")
	assert.EqualValues(t, 400, clock.Position())
	assert.Equal(t, "Token has no audio", m.statusMsg)

	// Source clicks still select in jump mode.
	m = press(t, m, "tab", "space")
	assert.Equal(t, []align.TokenID{"a"}, s.Selection(align.SideSource))

	m = press(t, m, "m")
	assert.Equal(t, align.ModeSelect, s.Mode())
}

func TestTransportKeys(t *testing.T) {
	m, s, clock := newTestModel(t, align.PolicyStrict)

	m = press(t, m, "p")
	assert.True(t, clock.Playing())
	m = press(t, m, "]")
	assert.EqualValues(t, 5000, clock.Position())
	assert.EqualValues(t, 5000, s.Position())
	m = press(t, m, "[", "[")
	assert.EqualValues(t, 0, clock.Position())
	m = press(t, m, "p")
	assert.False(t, clock.Playing())
}

func TestTickUpdatesActiveTokens(t *testing.T) {
	m, s, clock := newTestModel(t, align.PolicyStrict)
	require.NoError(t, clock.SeekTo(1100))

	next, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd, "ticks reschedule themselves")
	_ = next

	assert.EqualValues(t, 1100, s.Position())
	assert.Equal(t, []align.AudioToken{s.AudioTokens()[3]}, s.ActiveAudioTokens())
}

func TestHoverScrollsAlignmentList(t *testing.T) {
	clock := media.NewClock()
	s := align.NewSession(align.Options{Transport: clock})
	var audio []align.AudioToken
	var source []align.SourceToken
	for i := 0; i < 30; i++ {
		audio = append(audio, align.AudioToken{ID: align.TokenID(fmt.Sprint(i)), Idx: i, Value: fmt.Sprintf("w%d", i)})
		source = append(source, align.SourceToken{ID: align.TokenID(fmt.Sprintf("s%d", i)), Idx: i, Text: fmt.Sprintf("x%d", i)})
	}
	require.NoError(t, s.LoadTokens(audio, source))
	for i := 0; i < 30; i++ {
		_, err := s.OnTokenClick(audio[i].ID, align.SideAudio)
		require.NoError(t, err)
		_, err = s.OnTokenClick(source[i].ID, align.SideSource)
		require.NoError(t, err)
		_, err = s.OnCommitRequested()
		require.NoError(t, err)
	}

	m := resize(NewModel(s, clock, Options{}), 100, 24)
	rows := m.listHeight()
	require.Greater(t, rows, 0)

	for i := 0; i < 25; i++ {
		m = press(t, m, "right")
	}
	assert.True(t, s.IsHighlightedAlignment(26))
	assert.Equal(t, 25-rows+1, m.listOffset, "scrolls to the bottom edge")
	assert.Contains(t, m.View(), "#26")

	for i := 0; i < 25; i++ {
		m = press(t, m, "left")
	}
	assert.Equal(t, 0, m.listOffset, "scrolls to the top edge")
}

func TestAlignmentPaneHovers(t *testing.T) {
	m, s, _ := newTestModel(t, align.PolicyStrict)
	m = press(t, m, "space", "tab", "space", "enter")
	require.Len(t, s.Alignments(), 1)

	m = press(t, m, "esc", "tab")
	assert.Equal(t, PaneAlignments, m.focus)
	assert.True(t, s.IsHighlightedAlignment(1))

	m = press(t, m, "tab")
	assert.Equal(t, PaneAudio, m.focus)
}

func TestView(t *testing.T) {
	m, _, _ := newTestModel(t, align.PolicyStrict)
	out := m.View()
	for _, want := range []string{"INTERLINEAR", "AUDIO", "SOURCE", "ALIGNMENTS (0)", "Christ", "Χριστοῦ", "mark01.mp3", "0:00.000"} {
		assert.Contains(t, out, want)
	}

	m = press(t, m, "?")
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "create alignment")

	narrow := resize(m, 40, 20)
	assert.NotContains(t, narrow.View(), "SOURCE")

	assert.Equal(t, "Initializing...", NewModel(align.NewSession(align.Options{}), media.NewClock(), Options{}).View())
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t, align.PolicyStrict)
	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestStatusNotWrapped(t *testing.T) {
	m, _, _ := newTestModel(t, align.PolicyStrict)
	footer := renderFooter(&m)
	assert.Equal(t, 1, strings.Count(footer, "\n")+1)
}
