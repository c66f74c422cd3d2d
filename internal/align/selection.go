package align

// idSet is an id-keyed set that remembers insertion order.
type idSet struct {
	order []TokenID
	index map[TokenID]int
}

func newIDSet() *idSet {
	return &idSet{index: make(map[TokenID]int)}
}

func (s *idSet) has(id TokenID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *idSet) add(id TokenID) {
	if s.has(id) {
		return
	}
	s.index[id] = len(s.order)
	s.order = append(s.order, id)
}

func (s *idSet) remove(id TokenID) {
	pos, ok := s.index[id]
	if !ok {
		return
	}
	s.order = append(s.order[:pos], s.order[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.order); i++ {
		s.index[s.order[i]] = i
	}
}

func (s *idSet) list() []TokenID {
	return append([]TokenID(nil), s.order...)
}

func (s *idSet) len() int {
	return len(s.order)
}

func (s *idSet) reset() {
	s.order = nil
	s.index = make(map[TokenID]int)
}

// Tracker holds the per-side selection sets and the lock sets.
//
// A locked id can never be selected: Toggle ignores it, and Lock drops it
// from the selection if it was somehow still there.
type Tracker struct {
	selected [2]*idSet
	locked   [2]map[TokenID]struct{}
}

// NewTracker returns a tracker with empty selections and no locks.
func NewTracker() *Tracker {
	t := &Tracker{}
	for _, side := range []Side{SideAudio, SideSource} {
		t.selected[side] = newIDSet()
		t.locked[side] = make(map[TokenID]struct{})
	}
	return t
}

// Toggle selects id on side, or deselects it if already selected. Locked ids
// are left alone. It reports whether the selection changed.
func (t *Tracker) Toggle(id TokenID, side Side) bool {
	if !validSide(side) || t.IsLocked(id, side) {
		return false
	}
	sel := t.selected[side]
	if sel.has(id) {
		sel.remove(id)
	} else {
		sel.add(id)
	}
	return true
}

// IsLocked reports whether id already belongs to an alignment.
func (t *Tracker) IsLocked(id TokenID, side Side) bool {
	if !validSide(side) {
		return false
	}
	_, ok := t.locked[side][id]
	return ok
}

// IsSelected reports whether id is in the selection for side.
func (t *Tracker) IsSelected(id TokenID, side Side) bool {
	if !validSide(side) {
		return false
	}
	return t.selected[side].has(id)
}

// Selection returns the selected ids for side in click order.
func (t *Tracker) Selection(side Side) []TokenID {
	if !validSide(side) {
		return nil
	}
	return t.selected[side].list()
}

// SelectionLen returns the size of the selection for side.
func (t *Tracker) SelectionLen(side Side) int {
	if !validSide(side) {
		return 0
	}
	return t.selected[side].len()
}

// Clear empties both selections. Locks are untouched.
func (t *Tracker) Clear() {
	t.selected[SideAudio].reset()
	t.selected[SideSource].reset()
}

// Lock adds ids to the lock set for side. Locks never shrink.
func (t *Tracker) Lock(ids []TokenID, side Side) {
	if !validSide(side) {
		return
	}
	for _, id := range ids {
		t.locked[side][id] = struct{}{}
		t.selected[side].remove(id)
	}
}

// LockedCount returns how many ids are locked on side.
func (t *Tracker) LockedCount(side Side) int {
	if !validSide(side) {
		return 0
	}
	return len(t.locked[side])
}

func validSide(s Side) bool {
	return s == SideAudio || s == SideSource
}
