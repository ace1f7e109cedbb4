package twitter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flocksnap/pkg/config"
	"flocksnap/pkg/errors"
	"flocksnap/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a config pointed at the given server with retry
// delays short enough for tests
func testConfig(baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Twitter.BaseURL = baseURL
	cfg.Twitter.BearerToken = "test-bearer-token"
	cfg.RateLimit.RetryDelay = 5 * time.Millisecond
	cfg.RateLimit.BackoffMultiplier = 1.5
	return cfg
}

func TestNewClient(t *testing.T) {
	log := logger.NewTestLogger()

	t.Run("applies configuration", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Twitter.BearerToken = "token123"
		cfg.Twitter.PageSize = 50

		client := NewClient(cfg, log)

		assert.NotNil(t, client.httpClient)
		assert.NotNil(t, client.backoff)
		assert.Equal(t, cfg.Twitter.BaseURL, client.baseURL)
		assert.Equal(t, 50, client.pageSize)
		assert.Equal(t, "Bearer token123", client.headers["Authorization"])
		assert.Equal(t, cfg.Twitter.UserAgent, client.headers["User-Agent"])
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		client := NewClient(nil, log)

		assert.Equal(t, BaseURL, client.baseURL)
		assert.Equal(t, DefaultPageSize, client.pageSize)
		assert.Empty(t, client.headers["Authorization"])
	})
}

func TestSetHeaders(t *testing.T) {
	client := NewClient(nil, logger.NewTestLogger())

	t.Run("SetHeader", func(t *testing.T) {
		client.SetHeader("X-Custom-Header", "test-value")
		assert.Equal(t, "test-value", client.headers["X-Custom-Header"])
	})

	t.Run("SetHeaders", func(t *testing.T) {
		headers := map[string]string{
			"X-Header-1": "value1",
			"X-Header-2": "value2",
		}
		client.SetHeaders(headers)
		assert.Equal(t, "value1", client.headers["X-Header-1"])
		assert.Equal(t, "value2", client.headers["X-Header-2"])
	})

	t.Run("SetBearerToken", func(t *testing.T) {
		client.SetBearerToken("secret")
		assert.Equal(t, "Bearer secret", client.headers["Authorization"])
	})
}

func TestDoRequest(t *testing.T) {
	log := logger.NewTestLogger()

	t.Run("successful request sends configured headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-bearer-token", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("success"))
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), log)

		req, err := http.NewRequest("GET", server.URL, nil)
		require.NoError(t, err)

		resp, err := client.doRequest(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "success", string(body))
		resp.Body.Close()
	})

	t.Run("network error is classified as transport", func(t *testing.T) {
		client := NewClient(testConfig("http://example.com"), log)

		req, err := http.NewRequest("GET", "http://invalid-domain-that-does-not-exist.example", nil)
		require.NoError(t, err)

		resp, err := client.doRequest(req)
		assert.Nil(t, resp)
		assert.Error(t, err)

		assert.Equal(t, errors.ErrorTypeTransport, errors.TypeOf(err))
		assert.True(t, errors.IsRetryable(err))
	})
}

func TestCheckResponse(t *testing.T) {
	client := NewClient(nil, logger.NewTestLogger())

	tests := []struct {
		name         string
		statusCode   int
		expectedType errors.ErrorType
	}{
		{
			name:       "200 OK",
			statusCode: http.StatusOK,
		},
		{
			name:         "401 Unauthorized",
			statusCode:   http.StatusUnauthorized,
			expectedType: errors.ErrorTypeTransport,
		},
		{
			name:         "404 Not Found",
			statusCode:   http.StatusNotFound,
			expectedType: errors.ErrorTypeTransport,
		},
		{
			name:         "429 Too Many Requests",
			statusCode:   http.StatusTooManyRequests,
			expectedType: errors.ErrorTypeRateLimit,
		},
		{
			name:         "500 Internal Server Error",
			statusCode:   http.StatusInternalServerError,
			expectedType: errors.ErrorTypeTransport,
		},
		{
			name:         "503 Service Unavailable",
			statusCode:   http.StatusServiceUnavailable,
			expectedType: errors.ErrorTypeTransport,
		},
		{
			name:         "400 Bad Request",
			statusCode:   http.StatusBadRequest,
			expectedType: errors.ErrorTypeTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "http://example.com", nil)
			resp := &http.Response{
				StatusCode: tt.statusCode,
				Request:    req,
				Header:     make(http.Header),
			}

			err := client.checkResponse(resp)
			if tt.expectedType == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedType, errors.TypeOf(err))

				if tt.expectedType == errors.ErrorTypeTransport {
					var apiErr *errors.Error
					require.ErrorAs(t, err, &apiErr)
					assert.Equal(t, tt.statusCode, apiErr.Code)
				}
			}
		})
	}
}

func TestRateLimitError(t *testing.T) {
	log := logger.NewTestLogger()
	client := NewClient(nil, log)

	newRateLimitedResponse := func(reset string) *http.Response {
		req, _ := http.NewRequest("GET", "http://example.com", nil)
		resp := &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Request:    req,
			Header:     make(http.Header),
		}
		if reset != "" {
			resp.Header.Set("x-rate-limit-reset", reset)
		}
		return resp
	}

	t.Run("reset header carries the retry instant", func(t *testing.T) {
		reset := time.Now().Add(10 * time.Minute).Unix()
		err := client.rateLimitError(newRateLimitedResponse(fmt.Sprintf("%d", reset)))

		assert.True(t, errors.IsRateLimited(err))
		retryAt, ok := errors.RetryAt(err)
		require.True(t, ok)
		assert.Equal(t, time.Unix(reset, 0), retryAt)
	})

	t.Run("missing header falls back to one rate window", func(t *testing.T) {
		err := client.rateLimitError(newRateLimitedResponse(""))

		retryAt, ok := errors.RetryAt(err)
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(client.rateWindow), retryAt, 2*time.Second)
	})

	t.Run("unreadable header falls back to one rate window", func(t *testing.T) {
		err := client.rateLimitError(newRateLimitedResponse("not-a-number"))

		retryAt, ok := errors.RetryAt(err)
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(client.rateWindow), retryAt, 2*time.Second)
	})
}

func TestGet(t *testing.T) {
	log := logger.NewTestLogger()

	t.Run("successful GET", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "GET", r.Method)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("test response"))
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), log)

		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "test response", string(body))
		resp.Body.Close()
	})

	t.Run("invalid URL", func(t *testing.T) {
		client := NewClient(nil, log)

		resp, err := client.Get("://invalid-url")
		assert.Nil(t, resp)
		assert.Error(t, err)
		assert.Equal(t, errors.ErrorTypeTransport, errors.TypeOf(err))
	})
}

func TestGetJSON(t *testing.T) {
	log := logger.NewTestLogger()

	type testData struct {
		Message string `json:"message"`
		Value   int    `json:"value"`
	}

	t.Run("successful JSON decode", func(t *testing.T) {
		expected := testData{Message: "test", Value: 42}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(expected)
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), log)

		var result testData
		err := client.GetJSON(server.URL, &result)
		require.NoError(t, err)
		assert.Equal(t, expected, result)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("invalid json"))
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), log)

		var result testData
		err := client.GetJSON(server.URL, &result)
		assert.Error(t, err)
		assert.Equal(t, errors.ErrorTypeTransport, errors.TypeOf(err))
		assert.True(t, log.HasMessage("failed to parse JSON response"))
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), log)

		var result testData
		err := client.GetJSON(server.URL, &result)
		assert.Error(t, err)

		var apiErr *errors.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, errors.ErrorTypeTransport, apiErr.Type)
		assert.Equal(t, http.StatusNotFound, apiErr.Code)
	})
}

func TestDoRequestWithRetry(t *testing.T) {
	log := logger.NewTestLogger()

	t.Run("retries server errors", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				w.WriteHeader(http.StatusInternalServerError)
			} else {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("success after retries"))
			}
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), log)

		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 3, attempts)
		resp.Body.Close()
	})

	t.Run("never retries rate limits", func(t *testing.T) {
		attempts := 0
		reset := time.Now().Add(15 * time.Minute).Unix()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.Header().Set("x-rate-limit-reset", fmt.Sprintf("%d", reset))
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), log)

		resp, err := client.Get(server.URL)
		assert.Nil(t, resp)
		require.Error(t, err)
		assert.Equal(t, 1, attempts)

		assert.True(t, errors.IsRateLimited(err))
		retryAt, ok := errors.RetryAt(err)
		require.True(t, ok)
		assert.Equal(t, time.Unix(reset, 0), retryAt)
		assert.True(t, log.HasMessage("rate limit exceeded"))
	})

	t.Run("does not retry auth rejections", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), log)

		var result map[string]interface{}
		err := client.GetJSON(server.URL, &result)
		assert.Error(t, err)
		assert.Equal(t, 1, attempts)

		var apiErr *errors.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Code)
	})

	t.Run("surfaces the last error when retries run out", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		cfg := testConfig(server.URL)
		cfg.RateLimit.MaxRetries = 2
		client := NewClient(cfg, log)

		resp, err := client.Get(server.URL)
		assert.Nil(t, resp)
		require.Error(t, err)
		assert.Equal(t, 3, attempts) // initial call plus two retries

		var apiErr *errors.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.Code)
		assert.True(t, log.HasMessage("max retries exceeded"))
	})
}

func TestFetchFollowersPage(t *testing.T) {
	log := logger.NewTestLogger()

	t.Run("returns the decoded page", func(t *testing.T) {
		var gotCursor, gotScreenName, gotCount string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, FollowersEndpoint, r.URL.Path)
			gotCursor = r.URL.Query().Get("cursor")
			gotScreenName = r.URL.Query().Get("screen_name")
			gotCount = r.URL.Query().Get("count")

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(UserPage{
				Users: []User{
					{ID: 101, ScreenName: "alpha"},
					{ID: 102, ScreenName: "beta"},
				},
				NextCursor:    1593874429502741990,
				NextCursorStr: "1593874429502741990",
			})
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), log)

		page, err := client.FetchFollowersPage("testuser", "")
		require.NoError(t, err)
		require.NotNil(t, page)

		assert.Len(t, page.Users, 2)
		assert.Equal(t, int64(101), page.Users[0].ID)
		assert.Equal(t, "1593874429502741990", page.NextCursorStr)

		// An empty cursor must be sent as the API's first-page cursor
		assert.Equal(t, FirstCursor, gotCursor)
		assert.Equal(t, "testuser", gotScreenName)
		assert.Equal(t, "200", gotCount)
	})

	t.Run("propagates rate limit", func(t *testing.T) {
		reset := time.Now().Add(5 * time.Minute).Unix()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("x-rate-limit-reset", fmt.Sprintf("%d", reset))
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL), log)

		page, err := client.FetchFollowersPage("testuser", "")
		assert.Nil(t, page)
		assert.True(t, errors.IsRateLimited(err))
	})
}

func TestFetchFollowingPage(t *testing.T) {
	log := logger.NewTestLogger()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, FollowingEndpoint, r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(UserPage{
			Users:         []User{{ID: 201, ScreenName: "gamma"}},
			NextCursorStr: "0",
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), log)

	page, err := client.FetchFollowingPage("testuser", "-1")
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Len(t, page.Users, 1)
	assert.Equal(t, "gamma", page.Users[0].ScreenName)
}
