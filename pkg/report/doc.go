// Package report writes the JSON summary of an archive run.
//
// A report carries the session id, target screen name, terminal state,
// distinct account counts, timings, and the run error when there was
// one. Reports are written atomically (temporary file, fsync, rename)
// so a crash mid-write never leaves a truncated file behind, named
// <screen_name>-<session_id>.json inside the configured directory.
//
// Usage:
//
//	mgr, err := report.NewManager(cfg.Archive.ReportDir)
//	if err != nil {
//		return err
//	}
//	path, err := mgr.Save(report.FromResult(result, runErr))
package report
