// Package twitter provides a client for the Twitter v1.1 user list API.
//
// This package includes:
//   - A bearer-token HTTP client with transient retry and error classification
//   - Type-safe models for cursored user list responses
//   - Helper functions for constructing list endpoints
//   - A pager that walks a cursored list to completion
//
// Example usage:
//
//	client := twitter.NewClient(cfg, log)
//	client.SetBearerToken(token)
//
//	pager := twitter.NewPager(client.FetchFollowersPage, limiter, log)
//	err := pager.Walk("screenname", func(u twitter.User) {
//	    // Handle one discovered account
//	})
//	if err != nil {
//	    if errors.IsRateLimited(err) {
//	        retryAt, _ := errors.RetryAt(err)
//	        // Tell the operator when the API accepts calls again
//	    }
//	}
//
// A 429 response is never retried by the client; it surfaces as a
// rate-limit error carrying the reset instant from the
// x-rate-limit-reset header. Network failures and 5xx responses are
// retried with exponential backoff before giving up.
package twitter
