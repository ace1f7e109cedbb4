// Package archive drives one full collection run against the Twitter API.
//
// The Archiver is the top-level coordinator. For each run it:
//   - Opens the SQLite archive database and creates a session row
//   - Walks the followers and following lists concurrently, one pipeline
//     each, sharing a single rate-limit budget
//   - Streams persistence commands through a bounded channel to a single
//     writer goroutine that owns the database for the run's lifetime
//   - Applies exactly one terminal transition: Finished with the distinct
//     account counts, or Failed when any pipeline or storage write broke
//
// A failure in one list never interrupts the other; both always run to
// completion so that already-fetched accounts are kept. Everything written
// before a failure stays in the database, and because snapshot and edge
// inserts are idempotent per session, re-running after a failure is safe.
//
// Usage:
//
//	cfg := config.DefaultConfig()
//	cfg.Twitter.BearerToken = token
//
//	archiver, err := archive.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := archiver.Run("jack")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("session %d: %d followers, %d following\n",
//	    result.SessionID, result.Followers, result.Following)
//
// Rate limiting:
//
// Both pipelines draw from one sliding window sized by the rate limit
// configuration (15 requests per 15 minutes by default, matching the API's
// cursored list endpoints). When the remote reports 429 despite the pacing,
// the run fails with a rate-limit error carrying the reset time; it is never
// retried automatically.
package archive
