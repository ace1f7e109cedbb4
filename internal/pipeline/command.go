package pipeline

import "flocksnap/pkg/models"

// CommandKind identifies what a Command asks the writer to do.
type CommandKind int

const (
	// StoreSnapshot persists a profile snapshot for the current session.
	StoreSnapshot CommandKind = iota
	// StoreFollower records that the account was seen in the followers list.
	StoreFollower
	// StoreFollowing records that the account was seen in the following list.
	StoreFollowing
	// FailedSession signals that a fetch pipeline failed. It carries no
	// payload and causes no storage write on its own.
	FailedSession
)

// String returns the kind's log-friendly name
func (k CommandKind) String() string {
	switch k {
	case StoreSnapshot:
		return "store_snapshot"
	case StoreFollower:
		return "store_follower"
	case StoreFollowing:
		return "store_following"
	case FailedSession:
		return "failed_session"
	default:
		return "unknown"
	}
}

// Command is one persistence instruction sent from a fetch pipeline to the
// writer. Commands are immutable after construction and consumed exactly
// once, in per-sender order; commands from the two pipelines interleave
// arbitrarily on the shared channel.
type Command struct {
	Kind CommandKind

	// Snapshot is set for StoreSnapshot commands.
	Snapshot *models.UserSnapshot

	// AccountID is set for StoreFollower and StoreFollowing commands.
	AccountID int64
}
