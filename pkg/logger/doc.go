// Package logger provides the structured log side channel for archive runs.
//
// It wraps zerolog behind a small Logger interface with field support, a
// global instance for the CLI, a no-op logger and a capturing TestLogger.
//
// Usage:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//
//	log := logger.GetLogger().WithField("component", "fetch")
//	log.InfoWithFields("Saved image", map[string]interface{}{
//	    "path": "out/hello/images/a.png",
//	    "size": 1024,
//	})
package logger
