package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"flocksnap/pkg/config"
	"flocksnap/pkg/models"
	"flocksnap/pkg/store"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	finishedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	openStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List archive sessions",
	Long: `List all archive sessions stored in the database, newest first.

Follower and following counts are the distinct accounts observed per
list; they are recorded when a session finishes, so failed and still
open sessions show none.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := make(map[string]interface{})
		if dbPath != "" {
			flags["db"] = dbPath
		}

		cfg, err := config.Load(configFile, flags)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		st, err := store.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open archive database: %w", err)
		}
		defer st.Close()

		sessions, err := st.ListSessions()
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		displaySessions(cfg.Database.Path, sessions)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.Flags().StringVar(&dbPath, "db", "", "archive database path (default: followers.sqlite)")
}

func displaySessions(dbPath string, sessions []*models.Session) {
	if len(sessions) == 0 {
		fmt.Println(headerStyle.Render("No sessions found"))
		fmt.Println(idStyle.Render("Run 'flocksnap archive <screen_name>' to create one."))
		return
	}

	header := headerStyle.Render(fmt.Sprintf("Found %d session(s) in %s", len(sessions), dbPath))
	fmt.Println(header)
	fmt.Println()

	// Use tabwriter for aligned columns
	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', tabwriter.AlignRight)

	// Header row
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("State")+"\t"+
		titleStyle.Render("Followers")+"\t"+titleStyle.Render("Following")+"\t"+
		titleStyle.Render("Started")+"\t"+titleStyle.Render("Duration")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 90))

	for _, session := range sessions {
		id := idStyle.Render(strconv.FormatInt(session.ID, 10))
		state := renderState(session.State)

		// Counts exist only once a session has finished
		followers := dateStyle.Render("-")
		following := dateStyle.Render("-")
		if session.State == models.SessionFinished {
			followers = countStyle.Render(strconv.Itoa(session.FollowerCount))
			following = countStyle.Render(strconv.Itoa(session.FollowingCount))
		}

		started := dateStyle.Render(formatStarted(session.Start))

		duration := dateStyle.Render("-")
		if d := session.Duration(); d > 0 {
			duration = dateStyle.Render(d.Round(time.Second).String())
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			id, state, followers, following, started, duration)
	}

	_ = w.Flush()
	fmt.Println()
}

// renderState colors the lifecycle state
func renderState(state models.SessionState) string {
	switch state {
	case models.SessionFinished:
		return finishedStyle.Render(string(state))
	case models.SessionFailed:
		return failedStyle.Render(string(state))
	default:
		return openStyle.Render(string(state))
	}
}

// formatStarted keeps recent timestamps short and readable
func formatStarted(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}
