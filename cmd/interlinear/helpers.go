package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Mr-Dark-debug/interlinear/internal/database"
)

const latestSession = "latest"

// resolveSession looks up a session by id. "latest" names the most
// recently started session.
func resolveSession(store database.Store, id string) (*database.Session, error) {
	if id == latestSession {
		sessions, err := store.QuerySessions(database.SessionFilter{Limit: 1})
		if err != nil {
			return nil, err
		}
		if len(sessions) == 0 {
			return nil, errors.New("no sessions recorded")
		}
		return sessions[0], nil
	}

	sess, err := store.GetSession(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return sess, err
}
