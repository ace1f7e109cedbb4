package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the follower archiver
type Config struct {
	// Twitter API settings
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Rate limiting and transient retry configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Database settings
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Archive run settings
	Archive ArchiveConfig `yaml:"archive" json:"archive"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds Twitter API configuration
type TwitterConfig struct {
	// ScreenName is the account whose follower and following lists are archived
	ScreenName string `yaml:"screen_name" json:"screen_name"`
	// BearerToken set here overrides the credential stores
	BearerToken    string        `yaml:"bearer_token,omitempty" json:"bearer_token,omitempty"`
	PageSize       int           `yaml:"page_size" json:"page_size"`
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// RateLimitConfig holds pacing and transient retry configuration
type RateLimitConfig struct {
	// RequestsPerWindow and Window mirror the API's documented budget
	// (15 requests per 15 minutes for the list endpoints)
	RequestsPerWindow int           `yaml:"requests_per_window" json:"requests_per_window"`
	Window            time.Duration `yaml:"window" json:"window"`
	// MaxRetries bounds transient transport retries; a reported rate
	// limit is never retried
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" json:"backoff_multiplier"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path" json:"path"`
}

// ArchiveConfig holds settings for the collection run itself
type ArchiveConfig struct {
	// ChannelCapacity bounds the command channel between the fetch
	// pipelines and the persistence worker
	ChannelCapacity int `yaml:"channel_capacity" json:"channel_capacity"`
	// ReportDir, when set, receives a JSON summary per run
	ReportDir string `yaml:"report_dir,omitempty" json:"report_dir,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			ScreenName:     "",
			PageSize:       200,
			BaseURL:        "https://api.twitter.com",
			UserAgent:      "flocksnap/1.0",
			RequestTimeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: 15,
			Window:            15 * time.Minute,
			MaxRetries:        3,
			RetryDelay:        2 * time.Second,
			BackoffMultiplier: 2.0,
		},
		Database: DatabaseConfig{
			Path: "followers.sqlite",
		},
		Archive: ArchiveConfig{
			ChannelCapacity: 32,
			ReportDir:       "",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if screenName := os.Getenv("FLOCKSNAP_SCREEN_NAME"); screenName != "" {
		c.Twitter.ScreenName = screenName
	}
	if token := os.Getenv("FLOCKSNAP_BEARER_TOKEN"); token != "" {
		c.Twitter.BearerToken = token
	}
	if baseURL := os.Getenv("FLOCKSNAP_API_BASE_URL"); baseURL != "" {
		c.Twitter.BaseURL = baseURL
	}
	if pageSize := os.Getenv("FLOCKSNAP_PAGE_SIZE"); pageSize != "" {
		var val int
		fmt.Sscanf(pageSize, "%d", &val)
		if val > 0 {
			c.Twitter.PageSize = val
		}
	}

	if rpw := os.Getenv("FLOCKSNAP_REQUESTS_PER_WINDOW"); rpw != "" {
		var val int
		fmt.Sscanf(rpw, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerWindow = val
		}
	}

	if dbPath := os.Getenv("FLOCKSNAP_DB_PATH"); dbPath != "" {
		c.Database.Path = dbPath
	}

	if capacity := os.Getenv("FLOCKSNAP_CHANNEL_CAPACITY"); capacity != "" {
		var val int
		fmt.Sscanf(capacity, "%d", &val)
		if val > 0 {
			c.Archive.ChannelCapacity = val
		}
	}
	if reportDir := os.Getenv("FLOCKSNAP_REPORT_DIR"); reportDir != "" {
		c.Archive.ReportDir = reportDir
	}

	if logLevel := os.Getenv("FLOCKSNAP_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".flocksnap.yaml",
		".flocksnap.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "flocksnap", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "flocksnap", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".flocksnap.yaml"),
		filepath.Join(os.Getenv("HOME"), ".flocksnap.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// The list endpoints cap count at 200 per page
	if c.Twitter.PageSize <= 0 || c.Twitter.PageSize > 200 {
		errs = append(errs, errors.New("page size must be between 1 and 200"))
	}
	if c.Twitter.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.Twitter.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.RateLimit.RequestsPerWindow <= 0 {
		errs = append(errs, errors.New("requests per window must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	if c.Database.Path == "" {
		errs = append(errs, errors.New("database path is required"))
	}

	if c.Archive.ChannelCapacity <= 0 {
		errs = append(errs, errors.New("channel capacity must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if screenName, ok := flags["screen-name"].(string); ok && screenName != "" {
		c.Twitter.ScreenName = screenName
	}
	if token, ok := flags["bearer-token"].(string); ok && token != "" {
		c.Twitter.BearerToken = token
	}
	if pageSize, ok := flags["page-size"].(int); ok && pageSize > 0 {
		c.Twitter.PageSize = pageSize
	}
	if dbPath, ok := flags["db"].(string); ok && dbPath != "" {
		c.Database.Path = dbPath
	}
	if reportDir, ok := flags["report-dir"].(string); ok && reportDir != "" {
		c.Archive.ReportDir = reportDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".flocksnap.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
