package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"flocksnap/pkg/errors"
	"flocksnap/pkg/models"

	_ "modernc.org/sqlite"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    start           INTEGER NOT NULL,
    finish          INTEGER,
    state           TEXT NOT NULL DEFAULT 'started',
    follower_count  INTEGER NOT NULL DEFAULT 0,
    following_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start);

CREATE TABLE IF NOT EXISTS snapshots (
    session_id      INTEGER NOT NULL REFERENCES sessions(id),
    account_id      INTEGER NOT NULL,
    snapshot_at     INTEGER NOT NULL,
    created_at      INTEGER,
    screen_name     TEXT NOT NULL,
    location        TEXT,
    description     TEXT,
    url             TEXT,
    follower_count  INTEGER NOT NULL DEFAULT 0,
    following_count INTEGER NOT NULL DEFAULT 0,
    status_count    INTEGER NOT NULL DEFAULT 0,
    verified        INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (session_id, account_id)
);
CREATE INDEX IF NOT EXISTS idx_snapshots_account ON snapshots(account_id);

CREATE TABLE IF NOT EXISTS follower_edges (
    session_id INTEGER NOT NULL REFERENCES sessions(id),
    account_id INTEGER NOT NULL,
    PRIMARY KEY (session_id, account_id)
);

CREATE TABLE IF NOT EXISTS following_edges (
    session_id INTEGER NOT NULL REFERENCES sessions(id),
    account_id INTEGER NOT NULL,
    PRIMARY KEY (session_id, account_id)
);
`

// SQLiteStore implements Store backed by a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the archive database at dbPath and ensures
// the schema exists
func Open(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.NewStorage(err, "create database directory")
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewStorage(err, "open database")
	}

	// WAL mode keeps reads cheap while the persistence worker writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.NewStorage(err, "set WAL mode")
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, errors.NewStorage(err, "create tables")
	}

	return &SQLiteStore{db: db}, nil
}

// CreateSession inserts a new session row in the started state
func (s *SQLiteStore) CreateSession(start time.Time) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO sessions (start, state) VALUES (?, ?)`,
		start.Unix(), string(models.SessionStarted),
	)
	if err != nil {
		return 0, errors.NewStorage(err, "create session")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.NewStorage(err, "create session")
	}
	return id, nil
}

// InsertSnapshot stores one profile snapshot under the session. A
// duplicate (session, account) insert keeps the first row.
func (s *SQLiteStore) InsertSnapshot(sessionID int64, snapshot *models.UserSnapshot) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO snapshots
			(session_id, account_id, snapshot_at, created_at, screen_name,
			 location, description, url,
			 follower_count, following_count, status_count, verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		snapshot.AccountID,
		snapshot.SnapshotAt.Unix(),
		nullEpoch(snapshot.CreatedAt),
		snapshot.ScreenName,
		nullString(snapshot.Location),
		nullString(snapshot.Description),
		nullString(snapshot.URL),
		snapshot.FollowerCount,
		snapshot.FollowingCount,
		snapshot.StatusCount,
		snapshot.Verified,
	)
	if err != nil {
		return errors.NewStorage(err, "insert snapshot")
	}
	return nil
}

// InsertFollowerEdge records that the account was observed as a follower
func (s *SQLiteStore) InsertFollowerEdge(sessionID, accountID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO follower_edges (session_id, account_id) VALUES (?, ?)`,
		sessionID, accountID,
	)
	if err != nil {
		return errors.NewStorage(err, "insert follower edge")
	}
	return nil
}

// InsertFollowingEdge records that the account was observed as followed
func (s *SQLiteStore) InsertFollowingEdge(sessionID, accountID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO following_edges (session_id, account_id) VALUES (?, ?)`,
		sessionID, accountID,
	)
	if err != nil {
		return errors.NewStorage(err, "insert following edge")
	}
	return nil
}

// FinalizeSession moves a started session to finished. Terminal
// sessions are left untouched and the call reports ErrSessionFinalized.
func (s *SQLiteStore) FinalizeSession(sessionID int64, finish time.Time, followerCount, followingCount int) error {
	result, err := s.db.Exec(
		`UPDATE sessions
		 SET finish = ?, state = ?, follower_count = ?, following_count = ?
		 WHERE id = ? AND state = ?`,
		finish.Unix(), string(models.SessionFinished), followerCount, followingCount,
		sessionID, string(models.SessionStarted),
	)
	if err != nil {
		return errors.NewStorage(err, "finalize session")
	}
	return s.checkTransition(result, sessionID, "finalize session")
}

// FailSession moves a started session to failed, recording the finish
// time only
func (s *SQLiteStore) FailSession(sessionID int64, finish time.Time) error {
	result, err := s.db.Exec(
		`UPDATE sessions SET finish = ?, state = ? WHERE id = ? AND state = ?`,
		finish.Unix(), string(models.SessionFailed),
		sessionID, string(models.SessionStarted),
	)
	if err != nil {
		return errors.NewStorage(err, "fail session")
	}
	return s.checkTransition(result, sessionID, "fail session")
}

// checkTransition distinguishes a missing session from one already in a
// terminal state when a guarded update matched no row
func (s *SQLiteStore) checkTransition(result sql.Result, sessionID int64, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewStorage(err, op)
	}
	if n > 0 {
		return nil
	}

	var state string
	err = s.db.QueryRow(`SELECT state FROM sessions WHERE id = ?`, sessionID).Scan(&state)
	if err == sql.ErrNoRows {
		return errors.NewStorage(ErrSessionNotFound, op)
	}
	if err != nil {
		return errors.NewStorage(err, op)
	}
	return errors.NewStorage(ErrSessionFinalized, op)
}

// GetSession loads one session row
func (s *SQLiteStore) GetSession(sessionID int64) (*models.Session, error) {
	row := s.db.QueryRow(
		`SELECT id, start, finish, state, follower_count, following_count
		 FROM sessions WHERE id = ?`, sessionID,
	)

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewStorage(ErrSessionNotFound, "get session")
	}
	if err != nil {
		return nil, errors.NewStorage(err, "get session")
	}
	return session, nil
}

// ListSessions returns all sessions, newest first
func (s *SQLiteStore) ListSessions() ([]*models.Session, error) {
	rows, err := s.db.Query(
		`SELECT id, start, finish, state, follower_count, following_count
		 FROM sessions ORDER BY start DESC, id DESC`,
	)
	if err != nil {
		return nil, errors.NewStorage(err, "list sessions")
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, errors.NewStorage(err, "scan session")
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage(err, "list sessions")
	}
	return sessions, nil
}

// CountSnapshots returns the number of snapshot rows stored for the session
func (s *SQLiteStore) CountSnapshots(sessionID int64) (int, error) {
	return s.countRows(`SELECT COUNT(*) FROM snapshots WHERE session_id = ?`, sessionID)
}

// CountFollowerEdges returns the number of follower edges stored for the session
func (s *SQLiteStore) CountFollowerEdges(sessionID int64) (int, error) {
	return s.countRows(`SELECT COUNT(*) FROM follower_edges WHERE session_id = ?`, sessionID)
}

// CountFollowingEdges returns the number of following edges stored for the session
func (s *SQLiteStore) CountFollowingEdges(sessionID int64) (int, error) {
	return s.countRows(`SELECT COUNT(*) FROM following_edges WHERE session_id = ?`, sessionID)
}

func (s *SQLiteStore) countRows(query string, sessionID int64) (int, error) {
	var n int
	if err := s.db.QueryRow(query, sessionID).Scan(&n); err != nil {
		return 0, errors.NewStorage(err, "count rows")
	}
	return n, nil
}

// Close releases the underlying database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (*models.Session, error) {
	var session models.Session
	var start int64
	var finish sql.NullInt64
	var state string

	err := row.Scan(&session.ID, &start, &finish, &state,
		&session.FollowerCount, &session.FollowingCount)
	if err != nil {
		return nil, err
	}

	session.Start = time.Unix(start, 0)
	if finish.Valid {
		t := time.Unix(finish.Int64, 0)
		session.Finish = &t
	}
	session.State = models.SessionState(state)
	return &session, nil
}

// nullString maps an absent optional field to NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullEpoch maps the zero time to NULL, everything else to epoch seconds
func nullEpoch(t time.Time) sql.NullInt64 {
	return sql.NullInt64{Int64: t.Unix(), Valid: !t.IsZero()}
}
