// Package ui provides terminal output helpers for the flocksnap CLI
// This file demonstrates example usage of the UI components
package ui

/*
Example usage of the UI components:

// Terminal colors and output
ui.PrintLogo()                                   // Print ASCII logo
ui.PrintInfo("Target account", "@jack")          // Cyan label, yellow value
ui.PrintSuccess("[ARCHIVE COMPLETED]")           // Green success message
ui.PrintError("Failed to open database", err)    // Red error message
ui.PrintWarning("Rate limited", "resets soon")   // Yellow warning message
ui.PrintHighlight("[INITIATING ARCHIVE]")        // Magenta highlight message

// Output modes, set once at startup
ui.SetQuietMode(true)      // Suppress everything except errors
ui.SetColorEnabled(false)  // Plain text for pipes and dumb terminals

// Direct color usage
fmt.Printf("%s: %s\n", ui.Cyan("Session"), ui.Yellow("#42"))
fmt.Println(ui.Green("✓ finished"))
fmt.Println(ui.Red("✗ failed"))
fmt.Println(ui.Dim("cursor: 1656974570956055733"))
*/
