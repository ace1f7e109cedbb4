package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"flocksnap/pkg/auth"
	"flocksnap/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API credentials",
	Long: `Manage stored API bearer tokens securely.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your bearer token or config files!`,
}

// setCmd represents the auth set command
var setCmd = &cobra.Command{
	Use:   "set [label]",
	Short: "Store an API bearer token securely",
	Long: `Store an API bearer token securely in the system keychain or an
encrypted file.

You will be prompted for the token; input is hidden as you type. The
optional label lets several tokens coexist, for example one per
registered app. Without a label the token is stored as 'default'.

To get a token:
1. Open the developer portal and create a project with an app
2. Open the app's 'Keys and tokens' tab
3. Generate the Bearer Token and copy it`,
	Example: `  # Store the default token
  flocksnap auth set

  # Store a token under a label
  flocksnap auth set work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAuthSet,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored credentials",
	Long: `Show all stored credentials with the token masked, along with the
backend each one resolves from.`,
	Run: runAuthStatus,
}

// removeCmd represents the auth remove command
var removeCmd = &cobra.Command{
	Use:   "remove [label]",
	Short: "Remove stored credentials",
	Long: `Remove a stored bearer token from every backend that holds it.

If no label is provided, you will be shown a list of stored credentials
to choose from. You can also remove all credentials at once.`,
	Example: `  # Interactive removal
  flocksnap auth remove

  # Remove a specific credential
  flocksnap auth remove work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAuthRemove,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(setCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(removeCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	label := auth.DefaultLabel
	if len(args) > 0 {
		label = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	// Show the token guide first
	auth.ShowTokenGuide()

	// Ask if ready to continue
	fmt.Print("Ready to enter your bearer token? (Y/n): ")
	ready, _ := reader.ReadString('\n')
	if strings.ToLower(strings.TrimSpace(ready)) == "n" {
		fmt.Println("\nRun 'flocksnap auth set' when you're ready.")
		return
	}

	// Check if the label already holds a token
	if existing, _ := manager.Retrieve(label); existing != nil {
		fmt.Printf("\n⚠️  A token is already stored under '%s'. Replace it? (y/N): ", label)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("\n🔐 Enter your bearer token (it will be hidden as you type):")
	fmt.Println()

	// Get the token with validation
	var token string
	for {
		fmt.Print("Bearer token: ")
		token, err = readSecret()
		if err != nil {
			ui.PrintError("Failed to read token", err.Error())
			os.Exit(1)
		}

		// Basic validation: real tokens are long opaque strings
		if len(token) < 20 {
			fmt.Println("\n❌ That doesn't look like a valid bearer token.")
			fmt.Println("   It should be a long string from the developer portal.")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	// Show what we're about to do
	fmt.Println("\n📋 Summary:")
	fmt.Printf("   Label: %s\n", label)
	fmt.Printf("   Token: %s...%s (hidden)\n", token[:4], token[len(token)-4:])

	cred := &auth.Credential{
		Label:       label,
		BearerToken: token,
	}

	// Store the credential
	fmt.Println("\n💾 Storing token securely...")
	if err := manager.Store(cred); err != nil {
		ui.PrintError("Failed to store token", err.Error())
		os.Exit(1)
	}

	fmt.Println("\n🎉 Token stored successfully!")
	ui.PrintSuccess("Credential saved: " + label)

	// Show how to use
	fmt.Println("\n📖 Quick Start Guide:")
	fmt.Println("   Archive any account's follower graph:")
	fmt.Printf("   $ flocksnap archive <screen_name>\n")
	if label != auth.DefaultLabel {
		fmt.Println("\n   Use this credential:")
		fmt.Printf("   $ flocksnap archive <screen_name> --account %s\n", label)
	}
	fmt.Println("\n   Show more options:")
	fmt.Printf("   $ flocksnap archive --help\n")
	fmt.Println("\n⚠️  Never share your bearer token or config files!")
}

func runAuthStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	creds, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list credentials", err.Error())
		os.Exit(1)
	}

	if len(creds) == 0 {
		ui.PrintInfo("No stored credentials", "Use 'flocksnap auth set' to add one")
		return
	}

	ui.PrintHighlight("Stored Credentials")
	fmt.Println()

	for i, cred := range creds {
		sanitized := auth.Sanitize(cred)
		fmt.Printf("%d. Label: %s\n", i+1, sanitized.Label)
		fmt.Printf("   Bearer Token: %s\n", sanitized.BearerToken)
		if _, source, err := manager.Resolve(cred.Label); err == nil {
			fmt.Printf("   Source: %s\n", source)
		}
		if !sanitized.LastModified.IsZero() {
			fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}
}

func runAuthRemove(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if len(args) == 0 {
		// List credentials and ask which to remove
		creds, err := manager.List()
		if err != nil || len(creds) == 0 {
			ui.PrintError("No stored credentials found", "")
			return
		}

		if len(creds) == 1 {
			// Only one credential, confirm deletion
			cred := creds[0]
			reader := bufio.NewReader(os.Stdin)
			fmt.Printf("Remove credential '%s'? (y/N): ", cred.Label)
			input, _ := reader.ReadString('\n')
			if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
				return
			}

			if err := manager.Delete(cred.Label); err != nil {
				ui.PrintError("Failed to remove credential", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("Credential removed: " + cred.Label)
			return
		}

		// Multiple credentials, show menu
		fmt.Println("Select credential to remove:")
		for i, cred := range creds {
			fmt.Printf("  %d. %s\n", i+1, cred.Label)
		}
		fmt.Printf("  %d. Remove all credentials\n", len(creds)+1)
		fmt.Printf("  0. Cancel\n\n")

		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Choice: ")
		input, _ := reader.ReadString('\n')

		var choice int
		fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

		if choice == 0 {
			return
		} else if choice == len(creds)+1 {
			// Remove all
			fmt.Print("Remove ALL credentials? This cannot be undone! (yes/N): ")
			confirm, _ := reader.ReadString('\n')
			if strings.TrimSpace(confirm) != "yes" {
				return
			}

			if err := manager.DeleteAll(); err != nil {
				ui.PrintError("Failed to remove all credentials", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("All credentials removed")
			return
		} else if choice > 0 && choice <= len(creds) {
			cred := creds[choice-1]
			if err := manager.Delete(cred.Label); err != nil {
				ui.PrintError("Failed to remove credential", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("Credential removed: " + cred.Label)
			return
		} else {
			ui.PrintError("Invalid choice", "")
			os.Exit(1)
		}
	}

	// Label provided as argument
	label := args[0]
	if err := manager.Delete(label); err != nil {
		ui.PrintError("Failed to remove credential", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Credential removed: " + label)
}

// readSecret reads a value from stdin without echoing
func readSecret() (string, error) {
	// Try to read without echo
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // New line after hidden input
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
