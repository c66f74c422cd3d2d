package database

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/interlinear/internal/align"
)

func TestNewSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id, err := NewSessionID()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "ses-"), id)
		assert.Len(t, id, len("ses-")+21)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestRecordFromAlignment(t *testing.T) {
	a := align.Alignment{
		ID: 4,
		AudioTokens: []align.AudioToken{
			{ID: "7", Idx: 6, Value: "Jesus", AudioRanges: []align.TimeRange{{Start: 2000, End: 2300}, {Start: 1800, End: 1900}}},
			{ID: "8", Idx: 7, Value: ","},
		},
		SourceTokens: []align.SourceToken{{ID: "n3", Idx: 2, Text: "Ἰησοῦ"}},
	}

	rec := RecordFromAlignment("ses-x", a, 42)
	assert.Equal(t, 4, rec.AlignmentID)
	assert.EqualValues(t, 42, rec.CreatedAt)
	require.Len(t, rec.AudioMembers, 2)
	assert.Equal(t, "audio", rec.AudioMembers[0].Side)
	assert.EqualValues(t, 1800, *rec.AudioMembers[0].StartMs)
	assert.EqualValues(t, 2300, *rec.AudioMembers[0].EndMs)
	assert.Nil(t, rec.AudioMembers[1].StartMs)
	require.Len(t, rec.SourceMembers, 1)
	assert.Equal(t, "source", rec.SourceMembers[0].Side)
	assert.Equal(t, "Ἰησοῦ", rec.SourceMembers[0].Text)
}

func TestJournalRecordsCommits(t *testing.T) {
	svc := newTestStore(t)
	j, err := NewJournal(svc, SessionInfo{
		AudioTokensPath:  "a.json",
		SourceTokensPath: "s.json",
		Policy:           align.PolicyAllowAudioOnly,
		AudioTokenCount:  3,
		SourceTokenCount: 1,
	}, nil)
	require.NoError(t, err)

	sess := align.NewSession(align.Options{Policy: align.PolicyAllowAudioOnly})
	sess.AddCommitListener(j)
	require.NoError(t, sess.LoadTokens(
		[]align.AudioToken{
			{ID: "1", Idx: 0, Value: "In", AudioRanges: []align.TimeRange{{Start: 0, End: 100}}},
			{ID: "2", Idx: 1, Value: "the"},
			{ID: "3", Idx: 2, Value: "beginning"},
		},
		[]align.SourceToken{{ID: "s1", Idx: 0, Text: "Ἐν"}},
	))

	_, err = sess.OnTokenClick("1", align.SideAudio)
	require.NoError(t, err)
	_, err = sess.OnTokenClick("s1", align.SideSource)
	require.NoError(t, err)
	_, err = sess.OnCommitRequested()
	require.NoError(t, err)

	_, err = sess.OnTokenClick("3", align.SideAudio)
	require.NoError(t, err)
	_, err = sess.OnCommitRequested()
	require.NoError(t, err)

	require.NoError(t, j.Close())

	got, err := svc.GetSession(j.SessionID())
	require.NoError(t, err)
	assert.Equal(t, "allow-audio-only", got.Policy)
	assert.NotNil(t, got.EndedAt)

	recs, err := svc.QueryAlignments(j.SessionID())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].AlignmentID)
	assert.Equal(t, "s1", recs[0].SourceMembers[0].TokenID)
	assert.Equal(t, "3", recs[1].AudioMembers[0].TokenID)
	assert.Empty(t, recs[1].SourceMembers)
}

func TestJournalLogsWriteFailures(t *testing.T) {
	svc := newTestStore(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	j, err := NewJournal(svc, SessionInfo{}, logger)
	require.NoError(t, err)

	a := align.Alignment{ID: 1, AudioTokens: []align.AudioToken{{ID: "1"}}}
	j.AlignmentCreated(a)
	// Same id again violates the primary key.
	j.AlignmentCreated(a)

	assert.Contains(t, buf.String(), "journal write failed")
	assert.Contains(t, buf.String(), "alignment_id=1")

	recs, err := svc.QueryAlignments(j.SessionID())
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
