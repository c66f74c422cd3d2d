package database

import (
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/Mr-Dark-debug/interlinear/internal/align"
	"github.com/Mr-Dark-debug/interlinear/pkg/timeutil"
)

// SessionIDPrefix prefixes every journal session id, e.g. "ses-V1StGXR8_Z5jdHi6B-myT".
const SessionIDPrefix = "ses"

// NewSessionID returns a prefixed NanoID for a journal session.
func NewSessionID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return SessionIDPrefix + "-" + id, nil
}

// SessionInfo describes the session being journaled.
type SessionInfo struct {
	AudioTokensPath  string
	SourceTokensPath string
	AudioFile        string
	Policy           align.Policy
	AudioTokenCount  int
	SourceTokenCount int
}

// Journal records committed alignments of one annotation session.
//
// It implements align.CommitListener. Write failures are logged and never
// propagated: the in-memory session remains the source of truth.
type Journal struct {
	store     Store
	sessionID string
	logger    *slog.Logger
	now       func() int64
}

// NewJournal creates a journal session in store.
func NewJournal(store Store, info SessionInfo, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sessionID, err := NewSessionID()
	if err != nil {
		return nil, err
	}

	j := &Journal{
		store:     store,
		sessionID: sessionID,
		logger:    logger.With(slog.String("session_id", sessionID)),
		now:       timeutil.NowNano,
	}

	err = store.CreateSession(&Session{
		SessionID:        sessionID,
		AudioTokensPath:  info.AudioTokensPath,
		SourceTokensPath: info.SourceTokensPath,
		AudioFile:        info.AudioFile,
		Policy:           info.Policy.String(),
		AudioTokenCount:  info.AudioTokenCount,
		SourceTokenCount: info.SourceTokenCount,
		StartedAt:        j.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("starting journal session: %w", err)
	}
	j.logger.Info("journal session started")
	return j, nil
}

// SessionID returns the journal session id.
func (j *Journal) SessionID() string {
	return j.sessionID
}

// AlignmentCreated writes a. Failures are logged at warn.
func (j *Journal) AlignmentCreated(a align.Alignment) {
	rec := RecordFromAlignment(j.sessionID, a, j.now())
	if err := j.store.InsertAlignment(rec); err != nil {
		j.logger.Warn("journal write failed",
			slog.Int("alignment_id", a.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	j.logger.Debug("alignment journaled", slog.Int("alignment_id", a.ID))
}

// Close stamps the session end time. The store is left open.
func (j *Journal) Close() error {
	if err := j.store.EndSession(j.sessionID, j.now()); err != nil {
		return fmt.Errorf("ending journal session: %w", err)
	}
	return nil
}

// RecordFromAlignment converts a committed alignment into its journal form.
// Audio members carry the span of their ranges; untimed members have none.
func RecordFromAlignment(sessionID string, a align.Alignment, createdAt int64) *AlignmentRecord {
	rec := &AlignmentRecord{
		SessionID:     sessionID,
		AlignmentID:   a.ID,
		CreatedAt:     createdAt,
		AudioMembers:  make([]Member, 0, len(a.AudioTokens)),
		SourceMembers: make([]Member, 0, len(a.SourceTokens)),
	}
	for _, t := range a.AudioTokens {
		m := Member{
			Side:    align.SideAudio.String(),
			TokenID: string(t.ID),
			Idx:     t.Idx,
			Text:    t.Value,
		}
		if t.Timed() {
			start, end := t.AudioRanges[0].Start, t.AudioRanges[0].End
			for _, r := range t.AudioRanges[1:] {
				start = min(start, r.Start)
				end = max(end, r.End)
			}
			m.StartMs, m.EndMs = &start, &end
		}
		rec.AudioMembers = append(rec.AudioMembers, m)
	}
	for _, t := range a.SourceTokens {
		rec.SourceMembers = append(rec.SourceMembers, Member{
			Side:    align.SideSource.String(),
			TokenID: string(t.ID),
			Idx:     t.Idx,
			Text:    t.Text,
		})
	}
	return rec
}
