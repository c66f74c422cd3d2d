package align

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func srcTok(id string, idx int) SourceToken {
	return SourceToken{ID: TokenID(id), Idx: idx, Text: id}
}

func TestRegistry_CommitSortsMembersByIdx(t *testing.T) {
	r := NewRegistry(PolicyStrict)

	a, err := r.Commit(
		[]AudioToken{audioTok("c", 2), audioTok("a", 0), audioTok("b", 1)},
		[]SourceToken{srcTok("y", 5), srcTok("x", 4)},
	)
	require.NoError(t, err)

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, []TokenID{"a", "b", "c"}, a.AudioIDs())
	assert.Equal(t, []TokenID{"x", "y"}, a.SourceIDs())
}

func TestRegistry_IDsAreDenseAndIncreasing(t *testing.T) {
	r := NewRegistry(PolicyStrict)

	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		a, err := r.Commit([]AudioToken{audioTok(id, i)}, []SourceToken{srcTok(id, i)})
		require.NoError(t, err)
		assert.Equal(t, i+1, a.ID)
	}

	// A rejection does not consume an id.
	_, err := r.Commit(nil, nil)
	require.Error(t, err)

	a, err := r.Commit([]AudioToken{audioTok("z", 9)}, []SourceToken{srcTok("z", 9)})
	require.NoError(t, err)
	assert.Equal(t, 6, a.ID)
	assert.Equal(t, 6, r.LastID())
	assert.Equal(t, 6, r.Len())
}

func TestRegistry_StrictPolicyRejectsEmptySource(t *testing.T) {
	r := NewRegistry(PolicyStrict)

	_, err := r.Commit([]AudioToken{audioTok("a", 0)}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, IsRejection(err))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_AudioOnlyPolicy(t *testing.T) {
	r := NewRegistry(PolicyAllowAudioOnly)

	a, err := r.Commit([]AudioToken{audioTok("um", 3)}, nil)
	require.NoError(t, err)
	assert.Empty(t, a.SourceTokens)
	assert.Equal(t, "allow-audio-only", r.Policy().String())
}

func TestRegistry_EmptyAudioAlwaysRejected(t *testing.T) {
	for _, p := range []Policy{PolicyStrict, PolicyAllowAudioOnly} {
		r := NewRegistry(p)
		_, err := r.Commit(nil, []SourceToken{srcTok("x", 0)})
		assert.ErrorIs(t, err, ErrValidation, "policy %s", p)
	}
}

func TestRegistry_RejectsAlreadyAlignedMembers(t *testing.T) {
	r := NewRegistry(PolicyStrict)
	_, err := r.Commit([]AudioToken{audioTok("a", 0)}, []SourceToken{srcTok("x", 0)})
	require.NoError(t, err)

	_, err = r.Commit([]AudioToken{audioTok("a", 0), audioTok("b", 1)}, []SourceToken{srcTok("y", 1)})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = r.Commit([]AudioToken{audioTok("b", 1)}, []SourceToken{srcTok("x", 0)})
	assert.ErrorIs(t, err, ErrConflict)

	assert.Equal(t, 1, r.Len(), "rejections leave the log unchanged")
	_, ok := r.Lookup("b", SideAudio)
	assert.False(t, ok)
}

func TestRegistry_RejectsDuplicateMembers(t *testing.T) {
	r := NewRegistry(PolicyStrict)
	_, err := r.Commit([]AudioToken{audioTok("a", 0), audioTok("a", 0)}, []SourceToken{srcTok("x", 0)})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegistry_MembersDisjointAcrossAlignments(t *testing.T) {
	r := NewRegistry(PolicyStrict)
	_, err := r.Commit([]AudioToken{audioTok("a", 0), audioTok("b", 1)}, []SourceToken{srcTok("x", 0)})
	require.NoError(t, err)
	_, err = r.Commit([]AudioToken{audioTok("c", 2)}, []SourceToken{srcTok("y", 1), srcTok("z", 2)})
	require.NoError(t, err)

	seen := map[Side]map[TokenID]int{SideAudio: {}, SideSource: {}}
	for _, a := range r.Alignments() {
		for _, id := range a.AudioIDs() {
			seen[SideAudio][id]++
		}
		for _, id := range a.SourceIDs() {
			seen[SideSource][id]++
		}
	}
	for side, counts := range seen {
		for id, n := range counts {
			assert.Equal(t, 1, n, "%s token %s in %d alignments", side, id, n)
		}
	}
}

func TestRegistry_AlignmentsAreCopies(t *testing.T) {
	r := NewRegistry(PolicyStrict)
	_, err := r.Commit([]AudioToken{audioTok("a", 0)}, []SourceToken{srcTok("x", 0)})
	require.NoError(t, err)

	list := r.Alignments()
	list[0].AudioTokens[0].Value = "mutated"

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, "a", got.AudioTokens[0].Value)

	_, ok = r.Get(2)
	assert.False(t, ok)
	_, ok = r.Get(0)
	assert.False(t, ok)
}
