package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func audioTok(id string, idx int, ranges ...TimeRange) AudioToken {
	return AudioToken{ID: TokenID(id), Idx: idx, Value: id, AudioRanges: ranges}
}

func ids(tokens []AudioToken) []TokenID {
	out := make([]TokenID, len(tokens))
	for i, t := range tokens {
		out[i] = t.ID
	}
	return out
}

func TestIntervalIndex_Active(t *testing.T) {
	tokens := []AudioToken{
		audioTok("a", 0, TimeRange{0, 500}),
		audioTok("b", 1, TimeRange{500, 1200}),
		audioTok("c", 2),
		audioTok("d", 3, TimeRange{1300, 1400}, TimeRange{2000, 2500}),
		audioTok("e", 4, TimeRange{1000, 2100}),
	}
	idx := NewIntervalIndex(tokens)

	tests := []struct {
		name string
		t    int64
		want []TokenID
	}{
		{"before everything", -1, nil},
		{"start boundary", 0, []TokenID{"a"}},
		{"shared boundary", 500, []TokenID{"a", "b"}},
		{"inside one", 700, []TokenID{"b"}},
		{"overlap", 1100, []TokenID{"b", "e"}},
		{"gap in d", 1500, []TokenID{"e"}},
		{"second range of d", 2050, []TokenID{"d", "e"}},
		{"end boundary", 2500, []TokenID{"d"}},
		{"after everything", 2501, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Active(tt.t)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestIntervalIndex_MatchesBruteForce(t *testing.T) {
	tokens := []AudioToken{
		audioTok("1", 0, TimeRange{0, 300}),
		audioTok("2", 1, TimeRange{0, 5000}),
		audioTok("3", 2, TimeRange{250, 260}, TimeRange{900, 950}),
		audioTok("4", 3),
		audioTok("5", 4, TimeRange{300, 300}),
		audioTok("6", 5, TimeRange{4000, 4200}),
	}
	idx := NewIntervalIndex(tokens)

	for ms := int64(-10); ms <= 5100; ms += 5 {
		var want []TokenID
		for _, tok := range tokens {
			for _, r := range tok.AudioRanges {
				if r.Contains(ms) {
					want = append(want, tok.ID)
					break
				}
			}
		}
		got := idx.Active(ms)
		if len(want) == 0 {
			require.Empty(t, got, "t=%d", ms)
			continue
		}
		require.Equal(t, want, ids(got), "t=%d", ms)
	}
}

func TestIntervalIndex_TouchingRangesReportTokenOnce(t *testing.T) {
	idx := NewIntervalIndex([]AudioToken{
		audioTok("x", 0, TimeRange{0, 100}, TimeRange{100, 200}),
	})
	assert.Equal(t, []TokenID{"x"}, ids(idx.Active(100)))
}

func TestIntervalIndex_Idempotent(t *testing.T) {
	idx := NewIntervalIndex([]AudioToken{audioTok("a", 0, TimeRange{10, 20})})
	first := idx.Active(15)
	second := idx.Active(15)
	assert.Equal(t, first, second)
}

func TestIntervalIndex_Empty(t *testing.T) {
	idx := NewIntervalIndex(nil)
	assert.Empty(t, idx.Active(0))
	assert.Equal(t, 0, idx.Len())
}

func TestFirstStart(t *testing.T) {
	start, ok := FirstStart(audioTok("a", 0, TimeRange{400, 500}, TimeRange{100, 200}))
	require.True(t, ok)
	assert.Equal(t, int64(400), start)

	_, ok = FirstStart(audioTok("b", 1))
	assert.False(t, ok)
}
