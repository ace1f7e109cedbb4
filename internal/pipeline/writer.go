package pipeline

import (
	"fmt"

	errs "flocksnap/pkg/errors"
	"flocksnap/pkg/logger"
	"flocksnap/pkg/store"
)

// Outcome reports what the writer observed while draining the channel.
type Outcome struct {
	// Failed is set when any pipeline reported failure via FailedSession.
	Failed bool
	// Applied counts commands written to storage.
	Applied int
	// Discarded counts commands dropped after a storage failure.
	Discarded int
}

// Writer is the single consumer of the command channel and the only
// component that touches storage while a session runs.
type Writer struct {
	store     store.Store
	sessionID int64
	logger    logger.Logger
}

// NewWriter creates a writer that applies commands under the given session.
func NewWriter(st store.Store, sessionID int64, log logger.Logger) *Writer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Writer{
		store:     st,
		sessionID: sessionID,
		logger:    log,
	}
}

// Run receives commands one at a time until the channel is closed and
// drained. The first storage failure stops all further writes; remaining
// commands are still received and dropped so senders are never left blocked,
// and the failure is returned once the channel is exhausted.
func (w *Writer) Run(commands <-chan Command) (Outcome, error) {
	var (
		outcome  Outcome
		applyErr error
	)

	for cmd := range commands {
		if applyErr != nil {
			outcome.Discarded++
			continue
		}

		if cmd.Kind == FailedSession {
			outcome.Failed = true
			w.logger.WarnWithFields("pipeline failure reported", map[string]interface{}{
				"session_id": w.sessionID,
			})
			continue
		}

		if err := w.apply(cmd); err != nil {
			applyErr = err
			w.logger.ErrorWithFields("storage write failed, dropping remaining commands", map[string]interface{}{
				"session_id": w.sessionID,
				"kind":       cmd.Kind.String(),
				"error":      err.Error(),
			})
			continue
		}
		outcome.Applied++
	}

	w.logger.DebugWithFields("command channel drained", map[string]interface{}{
		"session_id": w.sessionID,
		"applied":    outcome.Applied,
		"discarded":  outcome.Discarded,
		"failed":     outcome.Failed,
	})
	return outcome, applyErr
}

// apply executes one storage command.
func (w *Writer) apply(cmd Command) error {
	switch cmd.Kind {
	case StoreSnapshot:
		return w.store.InsertSnapshot(w.sessionID, cmd.Snapshot)
	case StoreFollower:
		return w.store.InsertFollowerEdge(w.sessionID, cmd.AccountID)
	case StoreFollowing:
		return w.store.InsertFollowingEdge(w.sessionID, cmd.AccountID)
	default:
		return errs.NewStorage(nil, fmt.Sprintf("unknown command kind %d", cmd.Kind))
	}
}
