// Package logging assembles structured slog loggers and formatting helpers used
// across lapsync.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so render stages automatically
// tag log lines with the run ID and stage. Each render run can also write to
// its own file in the configured log directory; CleanupOldLogs prunes those
// files once they exceed the retention window.
package logging
