package auth

import (
	"fmt"
	"strings"
)

// ShowTokenGuide displays step-by-step instructions for obtaining an
// API bearer token
func ShowTokenGuide() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("🔑 TWITTER API BEARER TOKEN GUIDE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Println("This tool needs an app-only bearer token to read follower and")
	fmt.Println("following lists. Follow these steps to obtain one:")
	fmt.Println()

	fmt.Println("🌐 STEP 1: Open the developer portal")
	fmt.Println("   - Go to https://developer.twitter.com/en/portal/dashboard")
	fmt.Println("   - Sign in with your account")
	fmt.Println("   - Apply for access if you have not already")
	fmt.Println()

	fmt.Println("📦 STEP 2: Create a project and app")
	fmt.Println("   - Click 'Create Project' and follow the prompts")
	fmt.Println("   - Add an app to the project (any name works)")
	fmt.Println()

	fmt.Println("🔧 STEP 3: Generate the bearer token")
	fmt.Println("   - Open the app's 'Keys and tokens' tab")
	fmt.Println("   - Under 'Bearer Token', click 'Generate'")
	fmt.Println("   - Copy the full value; it is shown only once")
	fmt.Println()

	fmt.Println("💾 STEP 4: Store it")
	fmt.Println("   - Run: flocksnap auth set")
	fmt.Println("   - Paste the token at the hidden prompt")
	fmt.Println("   - Or export FLOCKSNAP_BEARER_TOKEN for one-off runs")
	fmt.Println()

	fmt.Println("💡 TIPS:")
	fmt.Println("   • App-only auth reads public lists; protected accounts stay hidden")
	fmt.Println("   • The list endpoints allow 15 requests per 15-minute window")
	fmt.Println("   • Regenerating the token in the portal invalidates the old one")
	fmt.Println()

	fmt.Println("⚠️  SECURITY WARNING:")
	fmt.Println("   • The token authenticates every call your app makes")
	fmt.Println("   • NEVER commit it or share it")
	fmt.Println("   • Store it with this tool (keychain or encrypted file)")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}

// ShowQuickTokenGuide shows a condensed version for experienced users
func ShowQuickTokenGuide() {
	fmt.Println("\n🔑 Quick Guide: developer.twitter.com → your app → Keys and tokens → Bearer Token → Generate")
	fmt.Println("   Then: flocksnap auth set")
	fmt.Println("   Type 'help' for detailed instructions")
}
