package twitter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"flocksnap/pkg/config"
	"flocksnap/pkg/errors"
	"flocksnap/pkg/logger"
	"flocksnap/pkg/retry"
)

// Client performs authenticated requests against the Twitter API
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	pageSize   int
	maxRetries int
	rateWindow time.Duration
	backoff    retry.BackoffStrategy
	logger     logger.Logger
}

// NewClient creates a new API client from the given configuration
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	// Use default logger if none provided
	if log == nil {
		log = logger.GetLogger()
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Twitter.RequestTimeout,
		},
		headers: map[string]string{
			"User-Agent": cfg.Twitter.UserAgent,
			"Accept":     "application/json",
		},
		baseURL:    cfg.Twitter.BaseURL,
		pageSize:   cfg.Twitter.PageSize,
		maxRetries: cfg.RateLimit.MaxRetries,
		rateWindow: cfg.RateLimit.Window,
		backoff: &retry.ExponentialBackoff{
			BaseDelay:    cfg.RateLimit.RetryDelay,
			MaxDelay:     60 * time.Second,
			Multiplier:   cfg.RateLimit.BackoffMultiplier,
			JitterFactor: 0.1,
		},
		logger: log,
	}

	if cfg.Twitter.BearerToken != "" {
		client.SetBearerToken(cfg.Twitter.BearerToken)
	}

	return client
}

// SetBearerToken sets the OAuth 2.0 bearer token used on every request
func (c *Client) SetBearerToken(token string) {
	c.headers["Authorization"] = "Bearer " + token
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHeaders sets multiple headers at once
func (c *Client) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		c.headers[key] = value
	}
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	// Set all headers
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.NewTransport(err, "network error")
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// doRequestWithRetry performs an HTTP request, retrying transient
// transport failures. A 429 response is returned immediately as a
// rate-limit error carrying the reset instant; callers decide when to
// call again.
func (c *Client) doRequestWithRetry(req *http.Request, maxRetries int) (*http.Response, error) {
	var resp *http.Response

	op := func() error {
		r, err := c.doRequest(req)
		if err != nil {
			return err
		}

		if r.StatusCode == http.StatusTooManyRequests {
			err := c.rateLimitError(r)
			r.Body.Close()
			return err
		}

		if r.StatusCode >= 500 {
			r.Body.Close()
			return errors.NewTransportCode(r.StatusCode, "server error")
		}

		resp = r
		return nil
	}

	err := retry.Do(op, &retry.Config{
		MaxAttempts: maxRetries + 1,
		Backoff:     c.backoff,
		RetryIf:     errors.IsRetryable,
		Logger: c.logger.WithFields(map[string]interface{}{
			"method": req.Method,
			"url":    req.URL.String(),
		}),
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Get performs a GET request to the specified URL
func (c *Client) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, errors.NewTransport(err, "failed to create request")
	}

	return c.doRequestWithRetry(req, c.maxRetries)
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(url string, target interface{}) error {
	resp, err := c.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponse(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewTransport(err, "failed to read response body")
	}

	if err := json.Unmarshal(body, target); err != nil {
		// Create a preview of the body for debugging
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errors.NewTransportCode(resp.StatusCode, fmt.Sprintf("failed to parse JSON: %v", err))
	}

	return nil
}

// checkResponse classifies a non-200 response into the run's error taxonomy
func (c *Client) checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.WarnWithFields("authentication rejected", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.NewTransportCode(resp.StatusCode, "authentication rejected")
	case resp.StatusCode == http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.NewTransportCode(resp.StatusCode, "resource not found")
	case resp.StatusCode == http.StatusTooManyRequests:
		return c.rateLimitError(resp)
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.NewTransportCode(resp.StatusCode, "server error")
	case resp.StatusCode >= 400:
		c.logger.ErrorWithFields("unexpected API error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errors.NewTransportCode(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	default:
		return nil
	}
}

// rateLimitError builds a rate-limit error from a 429 response. The
// x-rate-limit-reset header carries the reset instant as epoch seconds;
// when it is missing or unreadable, one full rate window from now is
// assumed.
func (c *Client) rateLimitError(resp *http.Response) error {
	retryAt := time.Now().Add(c.rateWindow)
	if v := resp.Header.Get("x-rate-limit-reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			retryAt = time.Unix(epoch, 0)
		}
	}

	c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
		"status":   resp.StatusCode,
		"url":      resp.Request.URL.String(),
		"retry_at": retryAt.UTC().Format(time.RFC3339),
	})

	return errors.NewRateLimited(retryAt, "rate limit exceeded")
}

// FetchFollowersPage fetches one page of the accounts following screenName.
// An empty cursor requests the first page.
func (c *Client) FetchFollowersPage(screenName, cursor string) (*UserPage, error) {
	return c.fetchListPage(FollowersEndpoint, screenName, cursor)
}

// FetchFollowingPage fetches one page of the accounts screenName follows.
// An empty cursor requests the first page.
func (c *Client) FetchFollowingPage(screenName, cursor string) (*UserPage, error) {
	return c.fetchListPage(FollowingEndpoint, screenName, cursor)
}

func (c *Client) fetchListPage(endpoint, screenName, cursor string) (*UserPage, error) {
	url := listPageURL(c.baseURL, endpoint, screenName, cursor, c.pageSize)

	c.logger.DebugWithFields("fetching user list page", map[string]interface{}{
		"endpoint":    endpoint,
		"screen_name": screenName,
		"cursor":      cursor,
	})

	var page UserPage
	if err := c.GetJSON(url, &page); err != nil {
		c.logger.ErrorWithFields("failed to fetch user list page", map[string]interface{}{
			"endpoint":    endpoint,
			"screen_name": screenName,
			"cursor":      cursor,
			"error":       err.Error(),
		})
		return nil, err
	}

	c.logger.DebugWithFields("fetched user list page", map[string]interface{}{
		"endpoint":    endpoint,
		"screen_name": screenName,
		"users":       len(page.Users),
		"next_cursor": page.NextCursorStr,
	})

	return &page, nil
}
