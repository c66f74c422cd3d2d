package align

import (
	"fmt"
	"sort"
)

// Policy decides whether an alignment may have no source members.
type Policy int

const (
	// PolicyStrict requires both sides to be non-empty.
	PolicyStrict Policy = iota
	// PolicyAllowAudioOnly accepts alignments without source members, e.g.
	// to mark a filler word.
	PolicyAllowAudioOnly
)

func (p Policy) String() string {
	if p == PolicyAllowAudioOnly {
		return "allow-audio-only"
	}
	return "strict"
}

// Registry is the append-only log of alignments.
//
// It allocates ids 1, 2, 3, … in commit order and keeps a reverse index from
// member id to log position so hover lookups do not scan the log.
type Registry struct {
	policy  Policy
	log     []Alignment
	lastID  int
	members [2]map[TokenID]int
}

// NewRegistry returns an empty registry using policy.
func NewRegistry(policy Policy) *Registry {
	return &Registry{
		policy: policy,
		members: [2]map[TokenID]int{
			make(map[TokenID]int),
			make(map[TokenID]int),
		},
	}
}

// Policy returns the registry's empty-source policy.
func (r *Registry) Policy() Policy {
	return r.policy
}

// Commit turns a pair of selections into a new Alignment.
//
// A rejected commit returns a *Error with CodeValidation or CodeConflict and
// leaves the registry unchanged. On success members are sorted by Idx and
// the returned Alignment is a copy the caller may keep.
func (r *Registry) Commit(audio []AudioToken, source []SourceToken) (Alignment, error) {
	if len(audio) == 0 {
		return Alignment{}, Validation("select at least one audio token")
	}
	if len(source) == 0 && r.policy == PolicyStrict {
		return Alignment{}, Validation("select at least one source token")
	}
	if err := r.checkMembers(audio, source); err != nil {
		return Alignment{}, err
	}

	a := Alignment{
		ID:           r.lastID + 1,
		AudioTokens:  append([]AudioToken(nil), audio...),
		SourceTokens: append([]SourceToken(nil), source...),
	}
	sort.SliceStable(a.AudioTokens, func(i, j int) bool {
		return a.AudioTokens[i].Idx < a.AudioTokens[j].Idx
	})
	sort.SliceStable(a.SourceTokens, func(i, j int) bool {
		return a.SourceTokens[i].Idx < a.SourceTokens[j].Idx
	})

	pos := len(r.log)
	r.log = append(r.log, a)
	r.lastID = a.ID
	for _, t := range a.AudioTokens {
		r.members[SideAudio][t.ID] = pos
	}
	for _, t := range a.SourceTokens {
		r.members[SideSource][t.ID] = pos
	}

	return a.clone(), nil
}

// checkMembers rejects members that are repeated or already aligned.
func (r *Registry) checkMembers(audio []AudioToken, source []SourceToken) error {
	seen := make(map[TokenID]struct{}, len(audio))
	for _, t := range audio {
		if _, dup := seen[t.ID]; dup {
			return Conflict(fmt.Sprintf("audio token %q selected twice", t.ID))
		}
		seen[t.ID] = struct{}{}
		if id, ok := r.owner(t.ID, SideAudio); ok {
			return Conflict(fmt.Sprintf("audio token %q already in alignment #%d", t.ID, id))
		}
	}
	seen = make(map[TokenID]struct{}, len(source))
	for _, t := range source {
		if _, dup := seen[t.ID]; dup {
			return Conflict(fmt.Sprintf("source token %q selected twice", t.ID))
		}
		seen[t.ID] = struct{}{}
		if id, ok := r.owner(t.ID, SideSource); ok {
			return Conflict(fmt.Sprintf("source token %q already in alignment #%d", t.ID, id))
		}
	}
	return nil
}

func (r *Registry) owner(id TokenID, side Side) (int, bool) {
	if !validSide(side) {
		return 0, false
	}
	pos, ok := r.members[side][id]
	if !ok {
		return 0, false
	}
	return r.log[pos].ID, true
}

// Lookup returns the alignment containing id on side.
func (r *Registry) Lookup(id TokenID, side Side) (Alignment, bool) {
	if !validSide(side) {
		return Alignment{}, false
	}
	pos, ok := r.members[side][id]
	if !ok {
		return Alignment{}, false
	}
	return r.log[pos].clone(), true
}

// Get returns the alignment with the given id.
func (r *Registry) Get(id int) (Alignment, bool) {
	// Ids are dense from 1, so the id doubles as a log position.
	if id < 1 || id > len(r.log) {
		return Alignment{}, false
	}
	return r.log[id-1].clone(), true
}

// Alignments returns the log in insertion order.
func (r *Registry) Alignments() []Alignment {
	out := make([]Alignment, len(r.log))
	for i, a := range r.log {
		out[i] = a.clone()
	}
	return out
}

// Len returns the number of alignments.
func (r *Registry) Len() int {
	return len(r.log)
}

// LastID returns the id of the newest alignment, or 0.
func (r *Registry) LastID() int {
	return r.lastID
}
