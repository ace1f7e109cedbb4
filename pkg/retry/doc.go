// Package retry provides bounded retries with backoff for transient
// failures in Twitter API calls.
//
// Features:
//   - Exponential and constant backoff strategies
//   - Jitter to avoid retrying in lockstep
//   - Context support for cancellation
//   - Configurable retry predicates
//   - Integration with the run's error classification
//
// Basic usage:
//
//	err := retry.Do(func() error {
//		return client.GetJSON(url, &page)
//	}, &retry.Config{
//		MaxAttempts: 4,
//		Backoff: &retry.ExponentialBackoff{
//			BaseDelay:    2 * time.Second,
//			MaxDelay:     60 * time.Second,
//			Multiplier:   2.0,
//			JitterFactor: 0.1,
//		},
//		RetryIf: retry.DefaultRetryIf,
//		Logger:  logger.GetLogger(),
//	})
//
// Retry decisions:
//
// The default predicate retries network failures and 5xx responses
// only. Rate-limit errors are returned immediately with their reset
// instant, and auth or not-found responses are returned as-is because
// repeating them cannot change the outcome.
package retry
