package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flocksnap/pkg/archive"
	"flocksnap/pkg/logger"
)

// Report is the JSON summary of one archive run
type Report struct {
	SessionID  int64     `json:"session_id"`
	ScreenName string    `json:"screen_name"`
	State      string    `json:"state"`
	Followers  int       `json:"followers"`
	Following  int       `json:"following"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Version    int       `json:"version"`
}

// FromResult converts an archive run result to a report. runErr, when
// non-nil, is recorded as the run's error text.
func FromResult(res *archive.Result, runErr error) *Report {
	if res == nil {
		return nil
	}

	r := &Report{
		SessionID:  res.SessionID,
		ScreenName: res.ScreenName,
		State:      string(res.State),
		Followers:  res.Followers,
		Following:  res.Following,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		DurationMS: res.Duration().Milliseconds(),
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}

	return r
}

// Manager writes run reports into one directory
type Manager struct {
	dir    string
	logger logger.Logger
}

// NewManager creates a report manager for the given directory,
// creating it if needed
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		return nil, fmt.Errorf("report directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	return &Manager{
		dir:    dir,
		logger: logger.GetLogger(),
	}, nil
}

// Path returns the file path a report is saved under
func (m *Manager) Path(r *Report) string {
	return filepath.Join(m.dir, fmt.Sprintf("%s-%d.json", r.ScreenName, r.SessionID))
}

// Save writes the report to disk atomically and returns the written path
func (m *Manager) Save(r *Report) (string, error) {
	r.CreatedAt = time.Now()
	r.Version = 1

	path := m.Path(r)

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary report file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		file.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	// Ensure data is on disk before the rename
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to sync report file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to close report file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to replace report file: %w", err)
	}

	m.logger.InfoWithFields("Run report saved", map[string]interface{}{
		"path":       path,
		"session_id": r.SessionID,
		"state":      r.State,
	})

	return path, nil
}

// Load reads a report back from disk
func Load(path string) (*Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	defer file.Close()

	var r Report
	if err := json.NewDecoder(file).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}

	return &r, nil
}
