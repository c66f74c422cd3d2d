package align

// ScrollRequest asks the presentation layer to bring an alignment-list entry
// into view, scrolling to the nearest edge. The engine never scrolls itself.
type ScrollRequest struct {
	AlignmentID int
}

// ScrollListener receives scroll requests as hovers resolve.
type ScrollListener interface {
	ScrollIntoView(req ScrollRequest)
}

// ScrollListenerFunc adapts a function to ScrollListener.
type ScrollListenerFunc func(ScrollRequest)

// ScrollIntoView calls f(req).
func (f ScrollListenerFunc) ScrollIntoView(req ScrollRequest) { f(req) }

// HoverResult is the outcome of hovering a token.
type HoverResult struct {
	Matched   bool
	Alignment Alignment
	// ScrollTo is set only when Matched.
	ScrollTo *ScrollRequest
}

// Members holds the ids of an alignment on each side.
type Members struct {
	Audio  map[TokenID]struct{}
	Source map[TokenID]struct{}
}

// Has reports whether id is a member on side.
func (m Members) Has(id TokenID, side Side) bool {
	var set map[TokenID]struct{}
	switch side {
	case SideAudio:
		set = m.Audio
	case SideSource:
		set = m.Source
	}
	_, ok := set[id]
	return ok
}

// HighlightedMembers returns the member ids of a on both sides.
func HighlightedMembers(a Alignment) Members {
	m := Members{
		Audio:  make(map[TokenID]struct{}, len(a.AudioTokens)),
		Source: make(map[TokenID]struct{}, len(a.SourceTokens)),
	}
	for _, t := range a.AudioTokens {
		m.Audio[t.ID] = struct{}{}
	}
	for _, t := range a.SourceTokens {
		m.Source[t.ID] = struct{}{}
	}
	return m
}

// Highlighter tracks the single hovered alignment.
//
// States: idle, or resolved(alignment). Hovering re-runs resolution from
// whatever state it is in; leaving always returns to idle.
type Highlighter struct {
	registry *Registry
	listener ScrollListener

	current *Alignment
	members Members
}

// NewHighlighter resolves hovers against registry.
func NewHighlighter(registry *Registry) *Highlighter {
	return &Highlighter{registry: registry}
}

// SetScrollListener installs l; nil removes it.
func (h *Highlighter) SetScrollListener(l ScrollListener) {
	h.listener = l
}

// Resolve returns the alignment containing id on side. It depends only on
// the registry and its arguments.
//
// The reverse index returns the first alignment in insertion order that
// holds the id; the registry refuses commits that would make a second one.
func (h *Highlighter) Resolve(id TokenID, side Side) (Alignment, bool) {
	return h.registry.Lookup(id, side)
}

// Enter handles the pointer entering a token.
func (h *Highlighter) Enter(id TokenID, side Side) HoverResult {
	a, ok := h.Resolve(id, side)
	if !ok {
		h.Leave()
		return HoverResult{}
	}

	h.current = &a
	h.members = HighlightedMembers(a)

	req := ScrollRequest{AlignmentID: a.ID}
	if h.listener != nil {
		h.listener.ScrollIntoView(req)
	}
	return HoverResult{Matched: true, Alignment: a, ScrollTo: &req}
}

// Leave clears the highlight.
func (h *Highlighter) Leave() {
	h.current = nil
	h.members = Members{}
}

// Current returns the highlighted alignment, if any.
func (h *Highlighter) Current() (Alignment, bool) {
	if h.current == nil {
		return Alignment{}, false
	}
	return h.current.clone(), true
}

// IsHighlighted reports whether id on side belongs to the highlighted
// alignment.
func (h *Highlighter) IsHighlighted(id TokenID, side Side) bool {
	if h.current == nil {
		return false
	}
	return h.members.Has(id, side)
}

// IsHighlightedAlignment reports whether alignmentID is the one hovered.
func (h *Highlighter) IsHighlightedAlignment(alignmentID int) bool {
	return h.current != nil && h.current.ID == alignmentID
}
