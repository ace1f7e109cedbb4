package twitter

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// BaseURL is the default base URL for the Twitter API
	BaseURL = "https://api.twitter.com"

	// FollowersEndpoint is the cursored endpoint listing accounts that follow a user
	FollowersEndpoint = "/1.1/followers/list.json"

	// FollowingEndpoint is the cursored endpoint listing accounts a user follows
	FollowingEndpoint = "/1.1/friends/list.json"

	// FirstCursor is the cursor value that requests the first page of a list
	FirstCursor = "-1"

	// DefaultPageSize is the number of users requested per page
	DefaultPageSize = 200

	// MaxPageSize is the maximum page size the list endpoints accept
	MaxPageSize = 200
)

// FollowersPageURL constructs the URL for one page of a user's followers
func FollowersPageURL(baseURL, screenName, cursor string, count int) string {
	return listPageURL(baseURL, FollowersEndpoint, screenName, cursor, count)
}

// FollowingPageURL constructs the URL for one page of the accounts a user follows
func FollowingPageURL(baseURL, screenName, cursor string, count int) string {
	return listPageURL(baseURL, FollowingEndpoint, screenName, cursor, count)
}

// listPageURL constructs a cursored list request. An empty cursor maps to
// FirstCursor and the count is clamped to the endpoint's limits.
func listPageURL(baseURL, endpoint, screenName, cursor string, count int) string {
	if cursor == "" {
		cursor = FirstCursor
	}
	if count <= 0 {
		count = DefaultPageSize
	} else if count > MaxPageSize {
		count = MaxPageSize
	}

	params := url.Values{}
	params.Set("screen_name", screenName)
	params.Set("cursor", cursor)
	params.Set("count", strconv.Itoa(count))
	params.Set("skip_status", "true")
	params.Set("include_user_entities", "false")

	return fmt.Sprintf("%s%s?%s", baseURL, endpoint, params.Encode())
}

// IsValidScreenName checks if a screen name is valid according to Twitter rules
func IsValidScreenName(screenName string) bool {
	if screenName == "" || len(screenName) > 15 {
		return false
	}

	// Screen names can only contain letters, numbers, and underscores
	for _, char := range screenName {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}

	return true
}

// SanitizeScreenName removes decoration commonly pasted along with a screen name
func SanitizeScreenName(screenName string) string {
	if screenName == "" {
		return ""
	}

	// Remove @ symbol if present at the beginning
	if screenName[0] == '@' {
		screenName = screenName[1:]
	}

	// Remove any trailing slashes or spaces
	for len(screenName) > 0 && (screenName[len(screenName)-1] == '/' || screenName[len(screenName)-1] == ' ') {
		screenName = screenName[:len(screenName)-1]
	}

	return screenName
}
