package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/interlinear/internal/align"
	"github.com/Mr-Dark-debug/interlinear/internal/media"
)

// ────────────────────────────────────────────────────────────
// Pane focuses
// ────────────────────────────────────────────────────────────

// Pane represents which UI pane currently has keyboard focus.
type Pane int

const (
	PaneAudio Pane = iota
	PaneSource
	PaneAlignments
	paneCount
)

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Options tunes the annotator.
type Options struct {
	// TickInterval is how often the playback position is sampled.
	TickInterval time.Duration
	// SkipMs is the distance of the skip keys.
	SkipMs int64
	// Title is shown in the header, e.g. the audio file name.
	Title  string
	Logger *slog.Logger
}

// Model is the root BubbleTea model for the annotator. The keyboard cursor
// of the focused pane acts as the pointer: moving it hovers the token
// underneath.
type Model struct {
	session *align.Session
	player  media.Player
	logger  *slog.Logger
	opts    Options

	// Immutable after load
	audio  []align.AudioToken
	source []align.SourceToken

	// UI state
	focus      Pane
	cursor     [paneCount]int
	hovering   bool
	listOffset int
	width      int
	height     int
	help       help.Model

	// Status
	statusMsg string
	statusErr bool
}

// NewModel creates the annotator over a session whose tokens are loaded.
func NewModel(session *align.Session, player media.Player, opts Options) Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 50 * time.Millisecond
	}
	if opts.SkipMs <= 0 {
		opts.SkipMs = 5000
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return Model{
		session:   session,
		player:    player,
		logger:    opts.Logger,
		opts:      opts,
		audio:     session.AudioTokens(),
		source:    session.SourceTokens(),
		help:      help.New(),
		statusMsg: fmt.Sprintf("%d audio tokens, %d source tokens", len(session.AudioTokens()), len(session.SourceTokens())),
	}
}

// ────────────────────────────────────────────────────────────
// Messages
// ────────────────────────────────────────────────────────────

type tickMsg time.Time

// ────────────────────────────────────────────────────────────
// Init
// ────────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.session.OnPlaybackPosition(m.player.Position())
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, keys.Tab):
		m.focus = (m.focus + 1) % paneCount
		m.hoverCursor()

	case key.Matches(msg, keys.ShiftTab):
		m.focus = (m.focus + paneCount - 1) % paneCount
		m.hoverCursor()

	case key.Matches(msg, keys.Left):
		m.moveCursor(-1)

	case key.Matches(msg, keys.Right):
		m.moveCursor(1)

	case key.Matches(msg, keys.Up):
		m.moveLine(-1)

	case key.Matches(msg, keys.Down):
		m.moveLine(1)

	case key.Matches(msg, keys.Leave):
		m.session.OnTokenHoverLeave()
		m.hovering = false

	case key.Matches(msg, keys.Click):
		m.click()

	case key.Matches(msg, keys.Commit):
		m.commit()

	case key.Matches(msg, keys.Clear):
		m.session.ClearSelections()
		m.setStatus("Selections cleared")

	case key.Matches(msg, keys.Mode):
		if m.session.Mode() == align.ModeSelect {
			m.session.SetMode(align.ModeJump)
		} else {
			m.session.SetMode(align.ModeSelect)
		}
		m.setStatus(fmt.Sprintf("Audio clicks: %s", m.session.Mode()))

	case key.Matches(msg, keys.PlayPause):
		var err error
		if m.player.Playing() {
			err = m.player.Pause()
		} else {
			err = m.player.Play()
		}
		m.playerResult(err)

	case key.Matches(msg, keys.SkipBack):
		m.playerResult(m.player.Skip(-m.opts.SkipMs))

	case key.Matches(msg, keys.SkipFwd):
		m.playerResult(m.player.Skip(m.opts.SkipMs))
	}

	return m, nil
}

// ────────────────────────────────────────────────────────────
// Actions
// ────────────────────────────────────────────────────────────

func (m *Model) paneLen(p Pane) int {
	switch p {
	case PaneAudio:
		return len(m.audio)
	case PaneSource:
		return len(m.source)
	default:
		return len(m.session.Alignments())
	}
}

func (m *Model) moveCursor(delta int) {
	n := m.paneLen(m.focus)
	if n == 0 {
		return
	}
	m.cursor[m.focus] = clamp(m.cursor[m.focus]+delta, 0, n-1)
	if m.focus == PaneAlignments {
		m.listOffset = scrollToEdge(m.listOffset, m.cursor[m.focus], m.listHeight())
	}
	m.hoverCursor()
}

func (m *Model) moveLine(delta int) {
	if m.focus == PaneAlignments || m.paneLen(m.focus) == 0 {
		m.moveCursor(delta)
		return
	}
	lines := flowLines(m.words(m.focus), m.tokenPaneInnerWidth())
	m.cursor[m.focus] = verticalMove(lines, m.cursor[m.focus], delta)
	m.hoverCursor()
}

// pointed returns the token under the focused cursor.
func (m *Model) pointed() (align.TokenID, align.Side, bool) {
	i := m.cursor[m.focus]
	switch m.focus {
	case PaneAudio:
		if i < len(m.audio) {
			return m.audio[i].ID, align.SideAudio, true
		}
	case PaneSource:
		if i < len(m.source) {
			return m.source[i].ID, align.SideSource, true
		}
	case PaneAlignments:
		as := m.session.Alignments()
		if i < len(as) && len(as[i].AudioTokens) > 0 {
			return as[i].AudioTokens[0].ID, align.SideAudio, true
		}
	}
	return "", 0, false
}

// hoverCursor moves the pointer onto the token under the cursor.
func (m *Model) hoverCursor() {
	id, side, ok := m.pointed()
	if !ok {
		m.session.OnTokenHoverLeave()
		m.hovering = false
		return
	}
	res := m.session.OnTokenHoverEnter(id, side)
	m.hovering = true
	if res.ScrollTo != nil {
		m.scrollIntoView(res.ScrollTo.AlignmentID)
	}
}

// scrollIntoView brings an alignment-list entry into view by the nearest
// edge.
func (m *Model) scrollIntoView(alignmentID int) {
	for i, a := range m.session.Alignments() {
		if a.ID == alignmentID {
			m.listOffset = scrollToEdge(m.listOffset, i, m.listHeight())
			return
		}
	}
}

func (m *Model) click() {
	if m.focus == PaneAlignments {
		return
	}
	id, side, ok := m.pointed()
	if !ok {
		return
	}
	changed, err := m.session.OnTokenClick(id, side)
	if err != nil {
		m.logger.Warn("token click failed", slog.String("token_id", string(id)), slog.String("error", err.Error()))
		m.setError(err)
		return
	}
	switch {
	case side == align.SideAudio && m.session.Mode() == align.ModeJump:
		if changed {
			m.setStatus(fmt.Sprintf("Jumped to %q", m.audio[m.cursor[PaneAudio]].Value))
		} else {
			m.setStatus("Token has no audio")
		}
	case m.session.IsLocked(id, side):
		m.setStatus("Token already aligned")
	default:
		m.setStatus(fmt.Sprintf("Selected %d audio, %d source",
			len(m.session.Selection(align.SideAudio)), len(m.session.Selection(align.SideSource))))
	}
}

func (m *Model) commit() {
	if !m.session.CanCommit() {
		if m.session.Policy() == align.PolicyAllowAudioOnly {
			m.setStatus("Select at least one audio token")
		} else {
			m.setStatus("Select audio and source tokens first")
		}
		return
	}
	a, err := m.session.OnCommitRequested()
	if err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("Created alignment #%d", a.ID))
	m.scrollIntoView(a.ID)
	// Re-resolve so the new alignment highlights under the pointer.
	if m.hovering {
		m.hoverCursor()
	}
}

func (m *Model) playerResult(err error) {
	if err != nil {
		m.logger.Warn("player command failed", slog.String("error", err.Error()))
		m.setError(err)
		return
	}
	m.session.OnPlaybackPosition(m.player.Position())
}

func (m *Model) setStatus(s string) {
	m.statusMsg = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.statusMsg = fmt.Sprintf("Error: %v", err)
	m.statusErr = true
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := renderHeader(&m)
	footer := renderFooter(&m)

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	topHeight, bottomHeight := m.splitHeights(bodyHeight)

	var top string
	if m.width < 60 {
		// Narrow terminals show only the focused token pane.
		p := m.focus
		if p == PaneAlignments {
			p = PaneAudio
		}
		top = renderTokenPanel(&m, p, m.width, topHeight)
	} else {
		leftWidth := m.width / 2
		top = lipgloss.JoinHorizontal(lipgloss.Top,
			renderTokenPanel(&m, PaneAudio, leftWidth, topHeight),
			renderTokenPanel(&m, PaneSource, m.width-leftWidth, topHeight),
		)
	}
	bottom := renderAlignmentPanel(&m, m.width, bottomHeight)

	return lipgloss.JoinVertical(lipgloss.Left, header, top, bottom, footer)
}

// splitHeights divides the body between token panes and the alignment list.
func (m *Model) splitHeights(body int) (top, bottom int) {
	body = maxInt(body, 4)
	top = body * 60 / 100
	return top, body - top
}

// listHeight is the number of alignment rows visible.
func (m *Model) listHeight() int {
	footer := lipgloss.Height(renderFooter(m))
	_, bottom := m.splitHeights(m.height - 1 - footer)
	return maxInt(bottom-2, 1)
}

// tokenPaneInnerWidth is the wrap width of the token panes.
func (m *Model) tokenPaneInnerWidth() int {
	if m.width < 60 {
		return maxInt(m.width-2, 1)
	}
	return maxInt(m.width/2-2, 1)
}
