package models

import (
	"time"

	"flocksnap/pkg/twitter"
)

// UserSnapshot is a point-in-time copy of one account's public profile
// as observed during a session
type UserSnapshot struct {
	// Core identifiers
	AccountID  int64  `json:"account_id"`
	ScreenName string `json:"screen_name"`

	// Timestamps
	SnapshotAt time.Time `json:"snapshot_at"`
	CreatedAt  time.Time `json:"created_at"`

	// Profile
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`

	// Counts
	FollowerCount  int `json:"follower_count"`
	FollowingCount int `json:"following_count"`
	StatusCount    int `json:"status_count"`

	Verified bool `json:"verified"`
}

// NewUserSnapshot captures u's profile as observed right now. Counts and
// flags are copied verbatim; an unparseable account creation timestamp
// leaves CreatedAt as the zero time.
func NewUserSnapshot(u twitter.User) *UserSnapshot {
	snapshot := &UserSnapshot{
		AccountID:      u.ID,
		ScreenName:     u.ScreenName,
		SnapshotAt:     time.Now(),
		Location:       u.Location,
		Description:    u.Description,
		URL:            u.URL,
		FollowerCount:  u.FollowersCount,
		FollowingCount: u.FriendsCount,
		StatusCount:    u.StatusesCount,
		Verified:       u.Verified,
	}

	if created, err := u.CreatedAtTime(); err == nil {
		snapshot.CreatedAt = created
	}

	return snapshot
}
