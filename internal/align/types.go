// Package align is the alignment annotation engine.
//
// It resolves the playback position to the audio tokens currently sounding,
// tracks which tokens the annotator has selected or already aligned, turns
// selections into immutable Alignment records, and maps a hovered token back
// to the alignment that contains it.
//
// Component architecture:
//
//	types.go     tokens, ranges, alignments, sides
//	index.go     interval index over audio ranges
//	selection.go selection and lock sets
//	registry.go  alignment log, id allocation, reverse index
//	highlight.go hover resolution and scroll-into-view signals
//	session.go   the aggregate driven by UI and media events
//
// Nothing in this package is safe for concurrent use. Events are expected to
// arrive serialized, one at a time, from a single event loop.
package align

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TokenID identifies a token within its side.
//
// Source data carries ids either as JSON numbers or as strings; both decode
// into the same textual form.
type TokenID string

// UnmarshalJSON accepts a JSON string or number.
func (id *TokenID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return fmt.Errorf("token id must not be null")
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return fmt.Errorf("decoding token id: %w", err)
		}
		*id = TokenID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decoding token id %s: %w", s, err)
	}
	*id = TokenID(n.String())
	return nil
}

// Side says which panel a token belongs to.
type Side int

const (
	SideAudio Side = iota
	SideSource
)

func (s Side) String() string {
	switch s {
	case SideAudio:
		return "audio"
	case SideSource:
		return "source"
	default:
		return "side(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseSide converts "audio" or "source" into a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "audio":
		return SideAudio, nil
	case "source":
		return SideSource, nil
	default:
		return 0, Validation(fmt.Sprintf("unknown side %q", s))
	}
}

// TimeRange is a closed interval of playback time in milliseconds.
type TimeRange struct {
	Start int64 `json:"start" validate:"gte=0"`
	End   int64 `json:"end" validate:"gtefield=Start"`
}

// Contains reports whether t lies in [Start, End].
func (r TimeRange) Contains(t int64) bool {
	return r.Start <= t && t <= r.End
}

// AudioToken is a transcript word with the time ranges in which it is spoken.
type AudioToken struct {
	ID             TokenID     `json:"id" validate:"required"`
	Idx            int         `json:"idx" validate:"gte=0"`
	Value          string      `json:"value"`
	SkipSpaceAfter bool        `json:"skipSpaceAfter"`
	AudioRanges    []TimeRange `json:"audioRanges" validate:"dive"`
}

// Timed reports whether the token has at least one range.
func (t AudioToken) Timed() bool {
	return len(t.AudioRanges) > 0
}

// SourceToken is an untimed word from the parallel source text.
type SourceToken struct {
	ID   TokenID `json:"id" validate:"required"`
	Idx  int     `json:"idx" validate:"gte=0"`
	Text string  `json:"text"`
}

// Alignment links a group of audio tokens to a group of source tokens.
// Member lists are ordered by Idx.
type Alignment struct {
	ID           int           `json:"id"`
	AudioTokens  []AudioToken  `json:"audioTokens"`
	SourceTokens []SourceToken `json:"sourceTokens"`
}

// AudioIDs returns the ids of the audio members in order.
func (a Alignment) AudioIDs() []TokenID {
	ids := make([]TokenID, len(a.AudioTokens))
	for i, t := range a.AudioTokens {
		ids[i] = t.ID
	}
	return ids
}

// SourceIDs returns the ids of the source members in order.
func (a Alignment) SourceIDs() []TokenID {
	ids := make([]TokenID, len(a.SourceTokens))
	for i, t := range a.SourceTokens {
		ids[i] = t.ID
	}
	return ids
}

// AudioText joins the audio members for display, honoring SkipSpaceAfter.
func (a Alignment) AudioText() string {
	var b strings.Builder
	for i, t := range a.AudioTokens {
		b.WriteString(t.Value)
		if i < len(a.AudioTokens)-1 && !t.SkipSpaceAfter {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// SourceText joins the source members for display.
func (a Alignment) SourceText() string {
	parts := make([]string, len(a.SourceTokens))
	for i, t := range a.SourceTokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

func (a Alignment) clone() Alignment {
	out := Alignment{ID: a.ID}
	out.AudioTokens = append([]AudioToken(nil), a.AudioTokens...)
	out.SourceTokens = append([]SourceToken(nil), a.SourceTokens...)
	return out
}
