package models

import "time"

// SessionState is the lifecycle state of an archive session
type SessionState string

const (
	// SessionStarted is the initial state, set when the session row is created
	SessionStarted SessionState = "started"
	// SessionFinished marks a run that completed both pipelines without failure
	SessionFinished SessionState = "finished"
	// SessionFailed marks a run where fetching or persistence failed
	SessionFailed SessionState = "failed"
)

// IsTerminal reports whether the state is final. Terminal sessions are
// never re-finalized.
func (s SessionState) IsTerminal() bool {
	return s == SessionFinished || s == SessionFailed
}

// Session is one end-to-end collection run
type Session struct {
	ID    int64     `json:"id"`
	Start time.Time `json:"start"`
	// Finish is nil until the session reaches a terminal state
	Finish *time.Time   `json:"finish,omitempty"`
	State  SessionState `json:"state"`

	// Counts of distinct accounts observed per pipeline, filled at
	// finalize time
	FollowerCount  int `json:"follower_count"`
	FollowingCount int `json:"following_count"`
}

// Duration returns how long the session ran, or zero while it is still open
func (s *Session) Duration() time.Duration {
	if s.Finish == nil {
		return 0
	}
	return s.Finish.Sub(s.Start)
}
