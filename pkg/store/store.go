package store

import (
	"errors"
	"time"

	"flocksnap/pkg/models"
)

var (
	// ErrSessionNotFound is returned when no session exists for the given id
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionFinalized is returned when a terminal session is finalized again
	ErrSessionFinalized = errors.New("session already finalized")
)

// Store abstracts archive persistence. Snapshot and edge inserts are
// idempotent per (session, account) so the two fetch pipelines may
// report the same account without conflict.
type Store interface {
	// CreateSession inserts a new session row in the started state and
	// returns its id
	CreateSession(start time.Time) (int64, error)

	// InsertSnapshot stores one profile snapshot under the session.
	// Inserting the same (session, account) twice keeps the first row.
	InsertSnapshot(sessionID int64, snapshot *models.UserSnapshot) error

	// InsertFollowerEdge records that the account was observed as a follower
	InsertFollowerEdge(sessionID, accountID int64) error

	// InsertFollowingEdge records that the account was observed as followed
	InsertFollowingEdge(sessionID, accountID int64) error

	// FinalizeSession moves a started session to finished, recording the
	// finish time and the distinct account counts per pipeline
	FinalizeSession(sessionID int64, finish time.Time, followerCount, followingCount int) error

	// FailSession moves a started session to failed, recording the finish time
	FailSession(sessionID int64, finish time.Time) error

	// GetSession loads one session row
	GetSession(sessionID int64) (*models.Session, error)

	// ListSessions returns all sessions, newest first
	ListSessions() ([]*models.Session, error)

	// Close releases the underlying database handle
	Close() error
}
