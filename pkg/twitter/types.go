package twitter

import "time"

// User represents an account as returned by the v1.1 user endpoints
type User struct {
	ID             int64  `json:"id"`
	IDStr          string `json:"id_str"`
	ScreenName     string `json:"screen_name"`
	Name           string `json:"name"`
	CreatedAt      string `json:"created_at"`
	Location       string `json:"location"`
	Description    string `json:"description"`
	URL            string `json:"url"`
	FollowersCount int    `json:"followers_count"`
	FriendsCount   int    `json:"friends_count"`
	StatusesCount  int    `json:"statuses_count"`
	Verified       bool   `json:"verified"`
	Protected      bool   `json:"protected"`
}

// CreatedAtTime parses the account creation timestamp, which the API
// reports in Ruby date format ("Mon Jan 02 15:04:05 -0700 2006")
func (u User) CreatedAtTime() (time.Time, error) {
	return time.Parse(time.RubyDate, u.CreatedAt)
}

// UserPage is one page of a cursored user list response
type UserPage struct {
	Users             []User `json:"users"`
	NextCursor        int64  `json:"next_cursor"`
	NextCursorStr     string `json:"next_cursor_str"`
	PreviousCursor    int64  `json:"previous_cursor"`
	PreviousCursorStr string `json:"previous_cursor_str"`
}
