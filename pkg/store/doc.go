// Package store persists archive sessions, profile snapshots, and
// follower/following edges in SQLite.
//
// The schema keeps one row per session, one snapshot row per
// (session, account) pair, and one edge row per observation direction.
// Snapshot and edge inserts use INSERT OR IGNORE so the concurrent
// fetch pipelines can both report an account without conflict; session
// finalization is guarded so a terminal session is never moved again.
//
// Timestamps are stored as epoch seconds. Optional profile fields map
// to NULL when absent.
//
// The database driver is modernc.org/sqlite, a pure Go build of
// SQLite, so no cgo toolchain is required.
package store
