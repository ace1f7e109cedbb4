package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"flocksnap/pkg/config"
	"flocksnap/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage flocksnap configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (FLOCKSNAP_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'flocksnap.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values

The bearer token is masked for security.`,
	Run: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	// Determine config file path
	configPath := configFile
	if configPath == "" {
		configPath = "flocksnap.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	// Create example configuration
	exampleConfig := `# flocksnap configuration file
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with FLOCKSNAP_
# For example: FLOCKSNAP_BEARER_TOKEN, FLOCKSNAP_DB_PATH

# Twitter API settings
twitter:
  # Account whose follower and following lists are archived.
  # Can also be passed as an argument: flocksnap archive <screen_name>
  screen_name: ""

  # API bearer token (optional here)
  # Prefer 'flocksnap auth set' over writing the token into a file
  bearer_token: ""

  # Accounts per API page
  # Range: 1-200 (the list endpoints cap at 200)
  page_size: 200

  # API base URL, override for testing
  base_url: "https://api.twitter.com"

  # User agent string
  user_agent: "flocksnap/1.0"

  # Per-request timeout
  request_timeout: 30s

# Rate limiting and transient retry
rate_limit:
  # The list endpoints allow 15 requests per 15-minute window
  requests_per_window: 15
  window: 15m

  # Transient failures (network errors, 5xx) are retried with
  # exponential backoff. A reported rate limit is never retried.
  max_retries: 3
  retry_delay: 2s
  backoff_multiplier: 2.0

# Database settings
database:
  # SQLite archive path, created on first run
  path: "followers.sqlite"

# Archive run settings
archive:
  # Command channel capacity between the fetchers and the writer
  channel_capacity: 32

  # When set, a JSON run summary is written here after every run
  report_dir: ""

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to the terminal only
  file: ""
`

	// Write configuration file
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Store your bearer token with 'flocksnap auth set'")
	fmt.Println("2. Set twitter.screen_name, or pass the account as an argument")
	fmt.Println("3. Start archiving with 'flocksnap archive <screen_name>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Create a sanitized version for display
	displayCfg := *cfg

	// Mask sensitive values
	if displayCfg.Twitter.BearerToken != "" {
		token := displayCfg.Twitter.BearerToken
		if len(token) > 8 {
			displayCfg.Twitter.BearerToken = token[:4] + "..." + token[len(token)-4:]
		} else {
			displayCfg.Twitter.BearerToken = "***"
		}
	}

	// Convert to YAML for display
	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	// Show configuration sources
	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (FLOCKSNAP_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in standard locations)")
	}
	fmt.Println("4. Default values")
}
