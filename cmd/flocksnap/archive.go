package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"flocksnap/pkg/archive"
	"flocksnap/pkg/auth"
	"flocksnap/pkg/config"
	"flocksnap/pkg/errors"
	"flocksnap/pkg/logger"
	"flocksnap/pkg/report"
	"flocksnap/pkg/ui"
)

var (
	// Archive command flags
	dbPath       string
	pageSize     int
	reportDir    string
	accountLabel string
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive [screen_name]",
	Short: "Snapshot an account's follower and following lists",
	Long: `Fetch the follower and following lists of a Twitter account and store
every profile as a point-in-time snapshot in the archive database.

Both lists are fetched concurrently inside one session. The session ends
finished when both lists complete, or failed as soon as either list hits
a rate limit or the storage layer rejects a write. Rows written before a
failure are kept, and re-running later is safe because inserts are
idempotent per session and account.

The screen name can be passed as an argument or set in the configuration
file. An API bearer token is required, resolved in order from:
  - The configuration file or FLOCKSNAP_BEARER_TOKEN
  - Stored credentials (use 'flocksnap auth set' to store)`,
	Example: `  # Archive using the screen name from the config file
  flocksnap archive

  # Archive a specific account into a custom database
  flocksnap archive jack --db ./archives/jack.sqlite

  # Use a specific stored credential and write a run report
  flocksnap archive jack --account work --report-dir ./reports`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runArchive(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	// Local flags for archive command
	archiveCmd.Flags().StringVar(&dbPath, "db", "", "archive database path (default: followers.sqlite)")
	archiveCmd.Flags().IntVar(&pageSize, "page-size", 0, "accounts per API page, 1-200 (default: 200)")
	archiveCmd.Flags().StringVar(&reportDir, "report-dir", "", "write a JSON run report into this directory")
	archiveCmd.Flags().StringVarP(&accountLabel, "account", "a", "", "use a specific stored credential label")
}

func runArchive(cmd *cobra.Command, args []string) {
	// Build flags map from command line
	flags := make(map[string]interface{})
	if len(args) > 0 {
		flags["screen-name"] = strings.TrimSpace(args[0])
	}
	if dbPath != "" {
		flags["db"] = dbPath
	}
	if pageSize != 0 {
		flags["page-size"] = pageSize
	}
	if reportDir != "" {
		flags["report-dir"] = reportDir
	}
	// Pass log level to config
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logging", err.Error())
		os.Exit(1)
	}
	logger.WithField("version", version).Info("flocksnap starting")

	if cfg.Twitter.ScreenName == "" {
		ui.PrintError("No target account", "pass a screen name or set twitter.screen_name in the config")
		os.Exit(1)
	}
	ui.PrintInfo("Target account", "@"+cfg.Twitter.ScreenName)

	// Resolve the bearer token unless the configuration already carries
	// one. An explicit --account always wins over the config token.
	if cfg.Twitter.BearerToken == "" || accountLabel != "" {
		manager, err := auth.NewManager()
		if err != nil {
			ui.PrintError("Failed to initialize credential manager", err.Error())
			os.Exit(1)
		}

		cred, source, err := manager.Resolve(accountLabel)
		if err != nil {
			if accountLabel != "" {
				ui.PrintError("Credential not found", accountLabel)
				ui.PrintInfo("Stored credentials", "Use 'flocksnap auth status' to see what is stored")
				os.Exit(1)
			}
			// No token found anywhere
			logger.Error("No API bearer token found")
			ui.PrintError("No API bearer token found", "")
			fmt.Println("\nTo store a token securely, run:")
			fmt.Println("  flocksnap auth set")
			fmt.Println("\nFor one-off runs, you can also set an environment variable:")
			fmt.Println("  export FLOCKSNAP_BEARER_TOKEN=your_bearer_token")
			os.Exit(1)
		}

		cfg.Twitter.BearerToken = cred.BearerToken
		logger.WithFields(map[string]interface{}{
			"label":  cred.Label,
			"source": source,
		}).Info("Using stored bearer token")
	} else {
		logger.Info("Using bearer token from configuration")
	}

	logger.WithField("screen_name", cfg.Twitter.ScreenName).Info("Starting archive run")
	ui.PrintHighlight("[INITIATING ARCHIVE SEQUENCE]")

	archiver, err := archive.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize archiver", err.Error())
		os.Exit(1)
	}

	result, runErr := archiver.Run(cfg.Twitter.ScreenName)

	// The report is written for failed runs too; partial rows stand
	if cfg.Archive.ReportDir != "" && result != nil {
		writeRunReport(cfg.Archive.ReportDir, result, runErr)
	}

	if runErr != nil {
		if resetAt, ok := errors.RetryAt(runErr); ok {
			logger.LogRateLimit(cfg.Twitter.ScreenName, resetAt)
			ui.PrintWarning("Rate limited", "window resets at "+resetAt.Format(time.RFC1123))
		}
		logger.WithError(runErr).WithField("screen_name", cfg.Twitter.ScreenName).Error("Archive run failed")
		ui.PrintError("ARCHIVE RUN FAILED", runErr.Error())
		os.Exit(1)
	}

	logger.WithField("screen_name", cfg.Twitter.ScreenName).Info("Archive run completed successfully")
	ui.PrintSuccess("[ARCHIVE COMPLETED SUCCESSFULLY]")
	ui.PrintInfo("Session", fmt.Sprintf("#%d: %d followers, %d following in %s",
		result.SessionID, result.Followers, result.Following,
		result.Duration().Round(time.Millisecond)))
}

// writeRunReport saves the JSON run summary; failures here only warn,
// the run outcome is already decided
func writeRunReport(dir string, result *archive.Result, runErr error) {
	manager, err := report.NewManager(dir)
	if err != nil {
		logger.WithError(err).WithField("dir", dir).Warn("Report directory unavailable")
		return
	}

	path, err := manager.Save(report.FromResult(result, runErr))
	if err != nil {
		logger.WithError(err).Warn("Failed to write run report")
		return
	}
	ui.PrintInfo("Run report", path)
}
