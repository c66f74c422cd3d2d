package align

import (
	"fmt"
	"log/slog"
)

// ClickMode decides what clicking an audio token does.
type ClickMode int

const (
	// ModeSelect toggles the token in the selection.
	ModeSelect ClickMode = iota
	// ModeJump seeks playback to the token and starts playing.
	ModeJump
)

func (m ClickMode) String() string {
	if m == ModeJump {
		return "jump"
	}
	return "select"
}

// ParseClickMode converts "select" or "jump" into a ClickMode.
func ParseClickMode(s string) (ClickMode, error) {
	switch s {
	case "", "select":
		return ModeSelect, nil
	case "jump":
		return ModeJump, nil
	default:
		return 0, Validation(fmt.Sprintf("unknown click mode %q", s))
	}
}

// Transport is the media collaborator's command surface. The session only
// issues commands; the transport owns the playback clock.
type Transport interface {
	SeekTo(ms int64) error
	Play() error
	Pause() error
	Playing() bool
}

// CommitListener is told about every alignment the session creates.
type CommitListener interface {
	AlignmentCreated(a Alignment)
}

// CommitListenerFunc adapts a function to CommitListener.
type CommitListenerFunc func(Alignment)

// AlignmentCreated calls f(a).
func (f CommitListenerFunc) AlignmentCreated(a Alignment) { f(a) }

// TokenState is everything the presentation layer needs to style a token.
type TokenState struct {
	Selected    bool
	Locked      bool
	Active      bool
	Highlighted bool
}

// Options configures a Session.
type Options struct {
	Policy    Policy
	Mode      ClickMode
	Transport Transport
	Logger    *slog.Logger
}

// Session owns the whole annotation state for one pair of token lists and
// exposes it through event handlers and queries.
type Session struct {
	logger    *slog.Logger
	transport Transport
	mode      ClickMode

	audio       []AudioToken
	source      []SourceToken
	audioByID   map[TokenID]int
	sourceByID  map[TokenID]int
	loaded      bool
	index       *IntervalIndex
	position    int64
	active      []AudioToken
	activeIDs   map[TokenID]struct{}
	tracker     *Tracker
	registry    *Registry
	highlighter *Highlighter
	listeners   []CommitListener
}

// NewSession creates an empty session.
func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	registry := NewRegistry(opts.Policy)
	return &Session{
		logger:      logger,
		transport:   opts.Transport,
		mode:        opts.Mode,
		audioByID:   make(map[TokenID]int),
		sourceByID:  make(map[TokenID]int),
		index:       NewIntervalIndex(nil),
		activeIDs:   make(map[TokenID]struct{}),
		tracker:     NewTracker(),
		registry:    registry,
		highlighter: NewHighlighter(registry),
	}
}

// LoadTokens installs the token lists. It may be called once; tokens are
// treated as immutable afterwards.
func (s *Session) LoadTokens(audio []AudioToken, source []SourceToken) error {
	if s.loaded {
		return Conflict("tokens already loaded")
	}
	audioByID := make(map[TokenID]int, len(audio))
	for i, t := range audio {
		if _, dup := audioByID[t.ID]; dup {
			return Validation(fmt.Sprintf("duplicate audio token id %q", t.ID))
		}
		audioByID[t.ID] = i
	}
	sourceByID := make(map[TokenID]int, len(source))
	for i, t := range source {
		if _, dup := sourceByID[t.ID]; dup {
			return Validation(fmt.Sprintf("duplicate source token id %q", t.ID))
		}
		sourceByID[t.ID] = i
	}

	s.audio = append([]AudioToken(nil), audio...)
	s.source = append([]SourceToken(nil), source...)
	s.audioByID = audioByID
	s.sourceByID = sourceByID
	s.index = NewIntervalIndex(s.audio)
	s.loaded = true
	s.OnPlaybackPosition(s.position)

	s.logger.Info("tokens loaded",
		slog.Int("audio_tokens", len(audio)),
		slog.Int("source_tokens", len(source)),
		slog.Int("audio_ranges", s.index.Len()))
	return nil
}

// OnPlaybackPosition recomputes the active token set for t milliseconds.
// Repeated or skipped ticks are harmless.
func (s *Session) OnPlaybackPosition(t int64) {
	s.position = t
	s.active = s.index.Active(t)
	s.activeIDs = make(map[TokenID]struct{}, len(s.active))
	for _, tok := range s.active {
		s.activeIDs[tok.ID] = struct{}{}
	}
}

// Position returns the last playback position seen.
func (s *Session) Position() int64 {
	return s.position
}

// ActiveAudioTokens returns the tokens sounding at the last position.
func (s *Session) ActiveAudioTokens() []AudioToken {
	return append([]AudioToken(nil), s.active...)
}

// IsActive reports whether the audio token is sounding.
func (s *Session) IsActive(id TokenID) bool {
	_, ok := s.activeIDs[id]
	return ok
}

// OnTokenClick handles a click on a token. It reports whether any state
// changed. Clicking a locked token is a silent no-op.
func (s *Session) OnTokenClick(id TokenID, side Side) (bool, error) {
	if !s.known(id, side) {
		return false, NotFound(id, side)
	}
	if side == SideAudio && s.mode == ModeJump {
		return s.jumpTo(s.audio[s.audioByID[id]])
	}
	return s.tracker.Toggle(id, side), nil
}

// jumpTo seeks to the token's first range and starts playback if paused.
// Untimed tokens are not seekable.
func (s *Session) jumpTo(tok AudioToken) (bool, error) {
	start, ok := FirstStart(tok)
	if !ok || s.transport == nil {
		return false, nil
	}
	if err := s.transport.SeekTo(start); err != nil {
		return false, fmt.Errorf("seeking to token %s: %w", tok.ID, err)
	}
	if !s.transport.Playing() {
		if err := s.transport.Play(); err != nil {
			return false, fmt.Errorf("starting playback: %w", err)
		}
	}
	s.OnPlaybackPosition(start)
	return true, nil
}

// OnTokenHoverEnter resolves the hovered token to its alignment.
func (s *Session) OnTokenHoverEnter(id TokenID, side Side) HoverResult {
	return s.highlighter.Enter(id, side)
}

// OnTokenHoverLeave clears the highlight.
func (s *Session) OnTokenHoverLeave() {
	s.highlighter.Leave()
}

// CanCommit mirrors the "Create Alignment" button state: both selections
// must be non-empty, or only the audio one when audio-only alignments are
// allowed.
func (s *Session) CanCommit() bool {
	if s.tracker.SelectionLen(SideAudio) == 0 {
		return false
	}
	return s.registry.Policy() == PolicyAllowAudioOnly || s.tracker.SelectionLen(SideSource) > 0
}

// OnCommitRequested turns the current selections into an alignment, locks
// its members and clears both selections. A rejection leaves everything as
// it was.
func (s *Session) OnCommitRequested() (Alignment, error) {
	audioIDs := s.tracker.Selection(SideAudio)
	sourceIDs := s.tracker.Selection(SideSource)

	audio := make([]AudioToken, 0, len(audioIDs))
	for _, id := range audioIDs {
		audio = append(audio, s.audio[s.audioByID[id]])
	}
	source := make([]SourceToken, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		source = append(source, s.source[s.sourceByID[id]])
	}

	a, err := s.registry.Commit(audio, source)
	if err != nil {
		s.logger.Debug("commit rejected",
			slog.String("reason", err.Error()),
			slog.Int("audio_selected", len(audio)),
			slog.Int("source_selected", len(source)))
		return Alignment{}, err
	}

	s.tracker.Lock(a.AudioIDs(), SideAudio)
	s.tracker.Lock(a.SourceIDs(), SideSource)
	s.tracker.Clear()

	s.logger.Info("alignment created",
		slog.Int("alignment_id", a.ID),
		slog.Int("audio_members", len(a.AudioTokens)),
		slog.Int("source_members", len(a.SourceTokens)))

	for _, l := range s.listeners {
		l.AlignmentCreated(a.clone())
	}
	return a, nil
}

// ClearSelections empties both selections.
func (s *Session) ClearSelections() {
	s.tracker.Clear()
}

// AddCommitListener registers l for future commits.
func (s *Session) AddCommitListener(l CommitListener) {
	s.listeners = append(s.listeners, l)
}

// SetScrollListener forwards hover scroll requests to l.
func (s *Session) SetScrollListener(l ScrollListener) {
	s.highlighter.SetScrollListener(l)
}

// SetMode switches the audio click mode.
func (s *Session) SetMode(m ClickMode) {
	s.mode = m
}

// Mode returns the audio click mode.
func (s *Session) Mode() ClickMode {
	return s.mode
}

// Policy returns the empty-source policy.
func (s *Session) Policy() Policy {
	return s.registry.Policy()
}

// Selection returns the selected ids for side in click order.
func (s *Session) Selection(side Side) []TokenID {
	return s.tracker.Selection(side)
}

// IsSelected reports whether id is selected on side.
func (s *Session) IsSelected(id TokenID, side Side) bool {
	return s.tracker.IsSelected(id, side)
}

// IsLocked reports whether id belongs to an alignment.
func (s *Session) IsLocked(id TokenID, side Side) bool {
	return s.tracker.IsLocked(id, side)
}

// Alignments returns every alignment in creation order.
func (s *Session) Alignments() []Alignment {
	return s.registry.Alignments()
}

// ResolveHover returns the alignment containing id on side without
// changing the highlight.
func (s *Session) ResolveHover(id TokenID, side Side) (Alignment, bool) {
	return s.highlighter.Resolve(id, side)
}

// Highlighted returns the hovered alignment, if any.
func (s *Session) Highlighted() (Alignment, bool) {
	return s.highlighter.Current()
}

// IsHighlightedAlignment reports whether the alignment is hovered.
func (s *Session) IsHighlightedAlignment(id int) bool {
	return s.highlighter.IsHighlightedAlignment(id)
}

// TokenState reports how a token should be presented.
func (s *Session) TokenState(id TokenID, side Side) TokenState {
	st := TokenState{
		Selected:    s.tracker.IsSelected(id, side),
		Locked:      s.tracker.IsLocked(id, side),
		Highlighted: s.highlighter.IsHighlighted(id, side),
	}
	if side == SideAudio {
		st.Active = s.IsActive(id)
	}
	return st
}

// AudioTokens returns the loaded audio tokens in load order.
func (s *Session) AudioTokens() []AudioToken {
	return append([]AudioToken(nil), s.audio...)
}

// SourceTokens returns the loaded source tokens in load order.
func (s *Session) SourceTokens() []SourceToken {
	return append([]SourceToken(nil), s.source...)
}

// AudioToken looks up a loaded audio token.
func (s *Session) AudioToken(id TokenID) (AudioToken, bool) {
	i, ok := s.audioByID[id]
	if !ok {
		return AudioToken{}, false
	}
	return s.audio[i], true
}

// SourceToken looks up a loaded source token.
func (s *Session) SourceToken(id TokenID) (SourceToken, bool) {
	i, ok := s.sourceByID[id]
	if !ok {
		return SourceToken{}, false
	}
	return s.source[i], true
}

// LockedCount returns how many tokens on side are aligned.
func (s *Session) LockedCount(side Side) int {
	return s.tracker.LockedCount(side)
}

func (s *Session) known(id TokenID, side Side) bool {
	switch side {
	case SideAudio:
		_, ok := s.audioByID[id]
		return ok
	case SideSource:
		_, ok := s.sourceByID[id]
		return ok
	default:
		return false
	}
}
