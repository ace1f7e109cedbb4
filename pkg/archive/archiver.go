package archive

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"flocksnap/internal/pipeline"
	"flocksnap/pkg/config"
	"flocksnap/pkg/logger"
	"flocksnap/pkg/models"
	"flocksnap/pkg/ratelimit"
	"flocksnap/pkg/store"
	"flocksnap/pkg/twitter"
)

// Archiver coordinates one collection run end to end: session creation, the
// two fetch pipelines, the persistence writer, and the terminal session
// transition.
type Archiver struct {
	client  pipeline.Fetcher
	limiter ratelimit.Limiter
	config  *config.Config
	logger  logger.Logger
}

// Result summarizes a finished run.
type Result struct {
	SessionID  int64
	ScreenName string
	State      models.SessionState
	Followers  int
	Following  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall-clock span of the run.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// New creates an Archiver from configuration. The bearer token must already
// be set on the configuration before calling.
func New(cfg *config.Config) (*Archiver, error) {
	log := logger.GetLogger()

	client := twitter.NewClient(cfg, log)

	var limiter ratelimit.Limiter
	if cfg.RateLimit.RequestsPerWindow > 0 {
		limiter = ratelimit.NewSlidingWindow(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window)
	} else {
		limiter = ratelimit.NewSlidingWindow(15, 15*time.Minute) // API default window
	}

	return &Archiver{
		client:  client,
		limiter: limiter,
		config:  cfg,
		logger:  log,
	}, nil
}

// Run archives the followers and following lists of the given account into
// one new session. The session always reaches a terminal state: Finished
// when both pipelines and every storage write succeed, Failed otherwise.
// The returned Result is non-nil whenever a session was created, so callers
// can report partial outcomes alongside the error.
func (a *Archiver) Run(screenName string) (*Result, error) {
	name := twitter.SanitizeScreenName(screenName)
	if !twitter.IsValidScreenName(name) {
		return nil, fmt.Errorf("invalid screen name: %q", screenName)
	}

	a.logger.InfoWithFields("Starting archive run", map[string]interface{}{
		"screen_name": name,
		"database":    a.config.Database.Path,
	})

	st, err := store.Open(a.config.Database.Path)
	if err != nil {
		a.logger.WithError(err).WithField("path", a.config.Database.Path).Error("Failed to open archive database")
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			a.logger.WithError(err).Warn("Failed to close archive database")
		}
	}()

	start := time.Now()
	sessionID, err := st.CreateSession(start)
	if err != nil {
		a.logger.WithError(err).Error("Failed to create session")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	logger.LogSessionStart(sessionID, name)

	capacity := a.config.Archive.ChannelCapacity
	if capacity <= 0 {
		capacity = 32
	}
	commands := make(chan pipeline.Command, capacity)

	collector := pipeline.NewCollector(a.client, a.limiter, name, a.logger)
	writer := pipeline.NewWriter(st, sessionID, a.logger)

	// The writer drains in the background; the collector closes the channel
	// once both pipelines are done, so the writer exits on its own.
	var (
		wg       sync.WaitGroup
		outcome  pipeline.Outcome
		writeErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		outcome, writeErr = writer.Run(commands)
	}()

	summary, collectErr := collector.Run(commands)
	wg.Wait()

	finish := time.Now()
	runErr := errors.Join(collectErr, writeErr)

	state := models.SessionFinished
	if runErr != nil || outcome.Failed {
		state = models.SessionFailed
	}

	if state == models.SessionFailed {
		if err := st.FailSession(sessionID, finish); err != nil {
			a.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to mark session failed")
			runErr = errors.Join(runErr, err)
		}
	} else if err := st.FinalizeSession(sessionID, finish, summary.Followers, summary.Following); err != nil {
		a.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to finalize session")
		state = models.SessionFailed
		runErr = err
		if failErr := st.FailSession(sessionID, finish); failErr != nil {
			a.logger.WithError(failErr).WithField("session_id", sessionID).Error("Failed to mark session failed")
		}
	}

	logger.LogSessionEnd(sessionID, string(state), summary.Followers, summary.Following)

	result := &Result{
		SessionID:  sessionID,
		ScreenName: name,
		State:      state,
		Followers:  summary.Followers,
		Following:  summary.Following,
		StartedAt:  start,
		FinishedAt: finish,
	}
	return result, runErr
}
