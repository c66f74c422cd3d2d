package align

import "sort"

// rangeEntry is one audio range flattened out of its token.
type rangeEntry struct {
	start int64
	end   int64
	token int // position in IntervalIndex.tokens
}

// IntervalIndex answers "which audio tokens are sounding at time t".
//
// Ranges are flattened and sorted by start. maxEnd[i] holds the largest end
// among entries[0..i], which bounds the backward scan: once maxEnd drops
// below t no earlier entry can contain t.
type IntervalIndex struct {
	tokens  []AudioToken
	entries []rangeEntry
	maxEnd  []int64
}

// NewIntervalIndex builds an index over tokens. The slice order is the order
// results are reported in.
func NewIntervalIndex(tokens []AudioToken) *IntervalIndex {
	idx := &IntervalIndex{tokens: append([]AudioToken(nil), tokens...)}

	for i, tok := range idx.tokens {
		for _, r := range tok.AudioRanges {
			idx.entries = append(idx.entries, rangeEntry{start: r.Start, end: r.End, token: i})
		}
	}
	sort.SliceStable(idx.entries, func(a, b int) bool {
		return idx.entries[a].start < idx.entries[b].start
	})

	idx.maxEnd = make([]int64, len(idx.entries))
	for i, e := range idx.entries {
		idx.maxEnd[i] = e.end
		if i > 0 && idx.maxEnd[i-1] > e.end {
			idx.maxEnd[i] = idx.maxEnd[i-1]
		}
	}
	return idx
}

// Active returns every token with a range containing t, boundaries included,
// in load order. Tokens without ranges never appear. Calling Active has no
// side effects.
func (x *IntervalIndex) Active(t int64) []AudioToken {
	// First entry whose start is beyond t.
	hi := sort.Search(len(x.entries), func(i int) bool {
		return x.entries[i].start > t
	})

	var hits []int
	for i := hi - 1; i >= 0; i-- {
		if x.maxEnd[i] < t {
			break
		}
		if x.entries[i].end >= t {
			hits = append(hits, x.entries[i].token)
		}
	}
	if len(hits) == 0 {
		return nil
	}

	// A token whose ranges touch at t matches twice.
	sort.Ints(hits)
	out := make([]AudioToken, 0, len(hits))
	for i, h := range hits {
		if i > 0 && hits[i-1] == h {
			continue
		}
		out = append(out, x.tokens[h])
	}
	return out
}

// Len returns the number of indexed ranges.
func (x *IntervalIndex) Len() int {
	return len(x.entries)
}

// FirstStart returns the start of the token's first range, the position a
// click on the token seeks to.
func FirstStart(tok AudioToken) (int64, bool) {
	if len(tok.AudioRanges) == 0 {
		return 0, false
	}
	return tok.AudioRanges[0].Start, true
}
