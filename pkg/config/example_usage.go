package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//     cfg, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 2. Load with custom config file:
//
//     cfg, err := config.Load("/path/to/config.yaml", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 3. Load with command line flags:
//
//     flags := map[string]interface{}{
//         "screen-name": "some_account",
//         "page-size":   100,
//         "db":          "graph.sqlite",
//         "log-level":   "debug",
//     }
//     cfg, err := config.Load("", flags)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 4. Programmatic configuration:
//
//     cfg := config.DefaultConfig()
//     cfg.Twitter.ScreenName = "some_account"
//     cfg.Twitter.PageSize = 100
//
//     if err := cfg.Validate(); err != nil {
//         log.Fatal(err)
//     }
//
// 5. Save configuration to file:
//
//     if err := cfg.Save(".flocksnap.yaml"); err != nil {
//         log.Fatal(err)
//     }
//
// 6. Environment variables:
//
//     export FLOCKSNAP_SCREEN_NAME="some_account"
//     export FLOCKSNAP_BEARER_TOKEN="AAAA..."
//     export FLOCKSNAP_PAGE_SIZE="100"
//     export FLOCKSNAP_DB_PATH="followers.sqlite"
//     export FLOCKSNAP_REQUESTS_PER_WINDOW="15"
//     export FLOCKSNAP_LOG_LEVEL="debug"
//
// 7. Using configuration in your application:
//
//     // Create the API client with config
//     client := twitter.NewClient(cfg, log)
//
//     // Set up the request pacer
//     limiter := ratelimit.NewSlidingWindow(
//         cfg.RateLimit.RequestsPerWindow,
//         cfg.RateLimit.Window,
//     )
//
//     // Open the archive store
//     store, err := store.Open(cfg.Database.Path)
