// Package logger provides structured logging for the follower archiver.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - Optional file output alongside the console
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "flocksnap/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File:  "flocksnap.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Archive run started")
//	logger.WithField("target", "some_account").Info("Resolved target")
//	logger.WithError(err).Error("Failed to open database")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "collector").
//	    WithField("session_id", 42)
//
//	// Use structured logging
//	log.InfoWithFields("Page fetched", map[string]interface{}{
//	    "pipeline": "followers",
//	    "page":     3,
//	    "count":    200,
//	})
//
// Tests can use NewNopLogger for silence or NewTestLogger to capture and
// assert on emitted messages.
package logger
