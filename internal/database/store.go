// Package database provides the alignment journal.
//
// Every alignment committed during an annotation session is written to
// SQLite so it can be listed, exported and reported on later. The journal
// is write-only from the annotator's point of view: a new session always
// starts empty and never reads previous alignments back.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store defines the interface for journal persistence.
type Store interface {
	// CreateSession records the start of an annotation session.
	CreateSession(session *Session) error
	// EndSession stamps the session's end time.
	EndSession(sessionID string, endedAt int64) error
	// InsertAlignment persists an alignment and its members atomically.
	InsertAlignment(rec *AlignmentRecord) error

	// QuerySessions returns sessions matching the filter, newest first.
	QuerySessions(filter SessionFilter) ([]*Session, error)
	// GetSession returns one session.
	GetSession(sessionID string) (*Session, error)
	// QueryAlignments returns a session's alignments ordered by id, with
	// members ordered by idx.
	QueryAlignments(sessionID string) ([]*AlignmentRecord, error)
	// GetSessionStats returns aggregated counts for a session.
	GetSessionStats(sessionID string) (*SessionStats, error)

	// Close gracefully shuts down the database connection.
	Close() error
}

// ────────────────────────────────────────────────────────────
// Models
// ────────────────────────────────────────────────────────────

// Session is one run of the annotator over a pair of token files.
type Session struct {
	SessionID        string `json:"session_id"`
	AudioTokensPath  string `json:"audio_tokens_path"`
	SourceTokensPath string `json:"source_tokens_path"`
	AudioFile        string `json:"audio_file,omitempty"`
	Policy           string `json:"policy"`
	AudioTokenCount  int    `json:"audio_token_count"`
	SourceTokenCount int    `json:"source_token_count"`
	StartedAt        int64  `json:"started_at"`
	EndedAt          *int64 `json:"ended_at,omitempty"`
}

// Member is one token of a journaled alignment.
type Member struct {
	Side    string `json:"side"`
	TokenID string `json:"token_id"`
	Idx     int    `json:"idx"`
	Text    string `json:"text"`
	StartMs *int64 `json:"start_ms,omitempty"`
	EndMs   *int64 `json:"end_ms,omitempty"`
}

// AlignmentRecord is a journaled alignment.
type AlignmentRecord struct {
	SessionID     string   `json:"session_id"`
	AlignmentID   int      `json:"alignment_id"`
	CreatedAt     int64    `json:"created_at"`
	AudioMembers  []Member `json:"audio_members"`
	SourceMembers []Member `json:"source_members"`
}

// SessionFilter defines query parameters for session listing.
type SessionFilter struct {
	Since  *int64 `json:"since,omitempty"` // Unix nanoseconds
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// SessionStats holds aggregated counts for a session.
type SessionStats struct {
	SessionID        string `json:"session_id"`
	Alignments       int    `json:"alignments"`
	AlignedAudio     int    `json:"aligned_audio"`
	AlignedSource    int    `json:"aligned_source"`
	AudioOnly        int    `json:"audio_only"`
	AudioTokenCount  int    `json:"audio_token_count"`
	SourceTokenCount int    `json:"source_token_count"`
	FirstAlignmentAt *int64 `json:"first_alignment_at,omitempty"`
	LastAlignmentAt  *int64 `json:"last_alignment_at,omitempty"`
}

// ────────────────────────────────────────────────────────────
// DBService
// ────────────────────────────────────────────────────────────

// DBService implements Store on SQLite.
type DBService struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	stmtInsertSession   *sql.Stmt
	stmtEndSession      *sql.Stmt
	stmtInsertAlignment *sql.Stmt
	stmtInsertMember    *sql.Stmt
}

// NewDBService opens the journal at path, applies the schema and prepares
// the insert statements. Use ":memory:" in tests.
func NewDBService(path string) (*DBService, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// One writer; also keeps a :memory: database on a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{
		db:   db,
		path: path,
	}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if err := svc.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}

	return svc, nil
}

func (s *DBService) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

func (s *DBService) prepareStatements() error {
	var err error

	s.stmtInsertSession, err = s.db.Prepare(`
		INSERT INTO sessions (session_id, audio_tokens_path, source_tokens_path, audio_file,
			policy, audio_token_count, source_token_count, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertSession: %w", err)
	}

	s.stmtEndSession, err = s.db.Prepare(`
		UPDATE sessions SET ended_at = ? WHERE session_id = ?
	`)
	if err != nil {
		return fmt.Errorf("preparing EndSession: %w", err)
	}

	s.stmtInsertAlignment, err = s.db.Prepare(`
		INSERT INTO alignments (session_id, alignment_id, created_at) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertAlignment: %w", err)
	}

	s.stmtInsertMember, err = s.db.Prepare(`
		INSERT INTO alignment_members (session_id, alignment_id, side, token_id, idx, text, start_ms, end_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertMember: %w", err)
	}

	return nil
}

// CreateSession records a new session.
func (s *DBService) CreateSession(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var audioFile *string
	if session.AudioFile != "" {
		audioFile = &session.AudioFile
	}

	_, err := s.stmtInsertSession.Exec(
		session.SessionID, session.AudioTokensPath, session.SourceTokensPath, audioFile,
		session.Policy, session.AudioTokenCount, session.SourceTokenCount,
		session.StartedAt, session.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", session.SessionID, err)
	}
	return nil
}

// EndSession stamps the end time of a session.
func (s *DBService) EndSession(sessionID string, endedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.stmtEndSession.Exec(endedAt, sessionID)
	if err != nil {
		return fmt.Errorf("ending session %s: %w", sessionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ending session %s: %w", sessionID, sql.ErrNoRows)
	}
	return nil
}

// InsertAlignment writes an alignment and its members in one transaction.
func (s *DBService) InsertAlignment(rec *AlignmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning alignment transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.Stmt(s.stmtInsertAlignment).Exec(rec.SessionID, rec.AlignmentID, rec.CreatedAt); err != nil {
		return fmt.Errorf("inserting alignment %s/%d: %w", rec.SessionID, rec.AlignmentID, err)
	}

	stmt := tx.Stmt(s.stmtInsertMember)
	members := append(append([]Member(nil), rec.AudioMembers...), rec.SourceMembers...)
	for _, m := range members {
		_, err := stmt.Exec(
			rec.SessionID, rec.AlignmentID, m.Side, m.TokenID, m.Idx, m.Text, m.StartMs, m.EndMs,
		)
		if err != nil {
			return fmt.Errorf("inserting %s member %s of alignment %d: %w", m.Side, m.TokenID, rec.AlignmentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing alignment transaction: %w", err)
	}
	return nil
}

// QuerySessions returns sessions ordered by start time descending.
func (s *DBService) QuerySessions(filter SessionFilter) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT session_id, audio_tokens_path, source_tokens_path, audio_file, policy,
		audio_token_count, source_token_count, started_at, ended_at FROM sessions WHERE 1=1`
	args := make([]any, 0)

	if filter.Since != nil {
		query += ` AND started_at >= ?`
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY started_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else {
		query += ` LIMIT 100`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// GetSession returns one session or an error wrapping sql.ErrNoRows.
func (s *DBService) GetSession(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT session_id, audio_tokens_path, source_tokens_path, audio_file, policy,
		audio_token_count, source_token_count, started_at, ended_at FROM sessions WHERE session_id = ?`, sessionID)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", sessionID, err)
	}
	return sess, nil
}

// QueryAlignments returns the alignments of a session in id order.
func (s *DBService) QueryAlignments(sessionID string) ([]*AlignmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT a.alignment_id, a.created_at, m.side, m.token_id, m.idx, m.text, m.start_ms, m.end_ms
		FROM alignments a
		INNER JOIN alignment_members m
			ON m.session_id = a.session_id AND m.alignment_id = a.alignment_id
		WHERE a.session_id = ?
		ORDER BY a.alignment_id ASC, m.side ASC, m.idx ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying alignments for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var records []*AlignmentRecord
	var cur *AlignmentRecord
	for rows.Next() {
		var (
			id        int
			createdAt int64
			m         Member
		)
		if err := rows.Scan(&id, &createdAt, &m.Side, &m.TokenID, &m.Idx, &m.Text, &m.StartMs, &m.EndMs); err != nil {
			return nil, fmt.Errorf("scanning alignment member row: %w", err)
		}
		if cur == nil || cur.AlignmentID != id {
			cur = &AlignmentRecord{SessionID: sessionID, AlignmentID: id, CreatedAt: createdAt}
			records = append(records, cur)
		}
		if m.Side == "audio" {
			cur.AudioMembers = append(cur.AudioMembers, m)
		} else {
			cur.SourceMembers = append(cur.SourceMembers, m)
		}
	}
	return records, rows.Err()
}

// GetSessionStats returns aggregated counts for a session.
func (s *DBService) GetSessionStats(sessionID string) (*SessionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &SessionStats{SessionID: sessionID}

	err := s.db.QueryRow(`
		SELECT audio_token_count, source_token_count FROM sessions WHERE session_id = ?
	`, sessionID).Scan(&stats.AudioTokenCount, &stats.SourceTokenCount)
	if err != nil {
		return nil, fmt.Errorf("querying session stats for %s: %w", sessionID, err)
	}

	err = s.db.QueryRow(`
		SELECT
			COUNT(*),
			MIN(created_at),
			MAX(created_at)
		FROM alignments
		WHERE session_id = ?
	`, sessionID).Scan(&stats.Alignments, &stats.FirstAlignmentAt, &stats.LastAlignmentAt)
	if err != nil {
		return nil, fmt.Errorf("counting alignments for session %s: %w", sessionID, err)
	}

	err = s.db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN side = 'audio' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN side = 'source' THEN 1 ELSE 0 END), 0)
		FROM alignment_members
		WHERE session_id = ?
	`, sessionID).Scan(&stats.AlignedAudio, &stats.AlignedSource)
	if err != nil {
		return nil, fmt.Errorf("counting members for session %s: %w", sessionID, err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*) FROM alignments a
		WHERE a.session_id = ? AND NOT EXISTS (
			SELECT 1 FROM alignment_members m
			WHERE m.session_id = a.session_id AND m.alignment_id = a.alignment_id AND m.side = 'source'
		)
	`, sessionID).Scan(&stats.AudioOnly)
	if err != nil {
		return nil, fmt.Errorf("counting audio-only alignments for session %s: %w", sessionID, err)
	}

	return stats, nil
}

// Close closes the prepared statements and the connection pool.
func (s *DBService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmts := []*sql.Stmt{
		s.stmtInsertSession, s.stmtEndSession, s.stmtInsertAlignment, s.stmtInsertMember,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}

	return s.db.Close()
}

// ────────────────────────────────────────────────────────────
// Scan helpers
// ────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var audioFile *string
	if err := row.Scan(
		&sess.SessionID, &sess.AudioTokensPath, &sess.SourceTokensPath, &audioFile,
		&sess.Policy, &sess.AudioTokenCount, &sess.SourceTokenCount,
		&sess.StartedAt, &sess.EndedAt,
	); err != nil {
		return nil, fmt.Errorf("scanning session row: %w", err)
	}
	if audioFile != nil {
		sess.AudioFile = *audioFile
	}
	return sess, nil
}
