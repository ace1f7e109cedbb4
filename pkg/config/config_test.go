package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Twitter.PageSize != 200 {
		t.Errorf("Expected default page size to be 200, got %d", config.Twitter.PageSize)
	}

	if config.RateLimit.RequestsPerWindow != 15 {
		t.Errorf("Expected default requests per window to be 15, got %d", config.RateLimit.RequestsPerWindow)
	}

	if config.RateLimit.Window != 15*time.Minute {
		t.Errorf("Expected default window to be 15m, got %s", config.RateLimit.Window)
	}

	if config.Database.Path != "followers.sqlite" {
		t.Errorf("Expected default database path to be followers.sqlite, got %s", config.Database.Path)
	}

	if config.Archive.ChannelCapacity != 32 {
		t.Errorf("Expected default channel capacity to be 32, got %d", config.Archive.ChannelCapacity)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("FLOCKSNAP_SCREEN_NAME", "some_account")
	os.Setenv("FLOCKSNAP_BEARER_TOKEN", "AAAA-test-token")
	os.Setenv("FLOCKSNAP_PAGE_SIZE", "50")
	os.Setenv("FLOCKSNAP_DB_PATH", "/tmp/flocksnap-test.sqlite")
	os.Setenv("FLOCKSNAP_REQUESTS_PER_WINDOW", "30")
	os.Setenv("FLOCKSNAP_LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("FLOCKSNAP_SCREEN_NAME")
		os.Unsetenv("FLOCKSNAP_BEARER_TOKEN")
		os.Unsetenv("FLOCKSNAP_PAGE_SIZE")
		os.Unsetenv("FLOCKSNAP_DB_PATH")
		os.Unsetenv("FLOCKSNAP_REQUESTS_PER_WINDOW")
		os.Unsetenv("FLOCKSNAP_LOG_LEVEL")
	}()

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Twitter.ScreenName != "some_account" {
		t.Errorf("Expected screen name some_account, got %s", config.Twitter.ScreenName)
	}

	if config.Twitter.BearerToken != "AAAA-test-token" {
		t.Errorf("Expected bearer token from env, got %s", config.Twitter.BearerToken)
	}

	if config.Twitter.PageSize != 50 {
		t.Errorf("Expected page size 50, got %d", config.Twitter.PageSize)
	}

	if config.Database.Path != "/tmp/flocksnap-test.sqlite" {
		t.Errorf("Expected database path override, got %s", config.Database.Path)
	}

	if config.RateLimit.RequestsPerWindow != 30 {
		t.Errorf("Expected requests per window 30, got %d", config.RateLimit.RequestsPerWindow)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvIgnoresInvalidNumbers(t *testing.T) {
	os.Setenv("FLOCKSNAP_PAGE_SIZE", "not-a-number")
	defer os.Unsetenv("FLOCKSNAP_PAGE_SIZE")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Twitter.PageSize != 200 {
		t.Errorf("Expected default page size to survive bad env value, got %d", config.Twitter.PageSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "page size zero",
			mutate:    func(c *Config) { c.Twitter.PageSize = 0 },
			wantError: true,
		},
		{
			name:      "page size above API cap",
			mutate:    func(c *Config) { c.Twitter.PageSize = 500 },
			wantError: true,
		},
		{
			name:      "empty base URL",
			mutate:    func(c *Config) { c.Twitter.BaseURL = "" },
			wantError: true,
		},
		{
			name:      "zero window",
			mutate:    func(c *Config) { c.RateLimit.Window = 0 },
			wantError: true,
		},
		{
			name:      "negative max retries",
			mutate:    func(c *Config) { c.RateLimit.MaxRetries = -1 },
			wantError: true,
		},
		{
			name:      "empty database path",
			mutate:    func(c *Config) { c.Database.Path = "" },
			wantError: true,
		},
		{
			name:      "zero channel capacity",
			mutate:    func(c *Config) { c.Archive.ChannelCapacity = 0 },
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "verbose" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	config := DefaultConfig()
	config.Twitter.PageSize = 0
	config.Database.Path = ""
	config.Logging.Level = "loud"

	err := config.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}

	msg := err.Error()
	for _, want := range []string{"page size", "database path", "log level"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected joined error to mention %q, got %s", want, msg)
		}
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	config.MergeCommandLineFlags(map[string]interface{}{
		"screen-name": "other_account",
		"page-size":   25,
		"db":          "graph.sqlite",
		"log-level":   "warn",
	})

	if config.Twitter.ScreenName != "other_account" {
		t.Errorf("Expected screen name from flags, got %s", config.Twitter.ScreenName)
	}
	if config.Twitter.PageSize != 25 {
		t.Errorf("Expected page size from flags, got %d", config.Twitter.PageSize)
	}
	if config.Database.Path != "graph.sqlite" {
		t.Errorf("Expected database path from flags, got %s", config.Database.Path)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level from flags, got %s", config.Logging.Level)
	}

	// Empty and zero flag values must not override anything.
	config.MergeCommandLineFlags(map[string]interface{}{
		"screen-name": "",
		"page-size":   0,
	})
	if config.Twitter.ScreenName != "other_account" || config.Twitter.PageSize != 25 {
		t.Error("Empty flag values should not override existing settings")
	}
}
