package tokens

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/interlinear/internal/align"
)

func TestLoadFiles(t *testing.T) {
	l := NewLoader()
	audio, source, err := l.LoadFiles(
		filepath.Join("testdata", "audio.json"),
		filepath.Join("testdata", "source.json"),
	)
	require.NoError(t, err)

	require.Len(t, audio, 2)
	assert.Equal(t, align.TokenID("1"), audio[0].ID, "sorted by idx")
	assert.Equal(t, "Christ", audio[1].Value)
	assert.Equal(t, []align.TimeRange{{Start: 500, End: 1200}}, audio[1].AudioRanges)

	require.Len(t, source, 2)
	assert.Equal(t, align.TokenID("11"), source[1].ID)
	assert.Equal(t, "מָשִׁיחַ", source[1].Text)
}

func TestLoadFilesMissing(t *testing.T) {
	_, _, err := NewLoader().LoadFiles("testdata/nope.json", "testdata/source.json")
	assert.Error(t, err)
}

func TestDecodeAudioValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing id",
			body: `[{"idx": 0, "value": "x", "audioRanges": []}]`,
			want: "id is required",
		},
		{
			name: "negative idx",
			body: `[{"id": 1, "idx": -1, "value": "x"}]`,
			want: "idx must be at least 0",
		},
		{
			name: "inverted range",
			body: `[{"id": 1, "idx": 0, "value": "x", "audioRanges": [{"start": 900, "end": 100}]}]`,
			want: "audioRanges[0].end must not be before start",
		},
		{
			name: "duplicate id",
			body: `[{"id": 1, "idx": 0, "value": "a"}, {"id": "1", "idx": 1, "value": "b"}]`,
			want: "duplicate id",
		},
		{
			name: "not an array",
			body: `{"id": 1}`,
			want: "decoding audio tokens",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().DecodeAudio(strings.NewReader(tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDecodeAudioAcceptsUntimedTokens(t *testing.T) {
	toks, err := NewLoader().DecodeAudio(strings.NewReader(
		`[{"id": 9, "idx": 0, "value": ",", "skipSpaceAfter": true}]`))
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.False(t, toks[0].Timed())
	assert.True(t, toks[0].SkipSpaceAfter)
}

func TestDecodeSourceValidation(t *testing.T) {
	_, err := NewLoader().DecodeSource(strings.NewReader(`[{"idx": 0, "text": "λόγος"}]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, align.ErrValidation)

	// Text content is never checked.
	toks, err := NewLoader().DecodeSource(strings.NewReader(`[{"id": "a", "idx": 0, "text": ""}]`))
	require.NoError(t, err)
	assert.Len(t, toks, 1)
}
