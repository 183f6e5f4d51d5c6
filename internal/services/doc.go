// Package services defines shared utilities consumed by the render stages.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper that name the failing
//     stage and let the CLI classify failures (telemetry contract, sync
//     integrity, encoder exhaustion, configuration).
//
// Use these helpers when wiring new stage logic so failures surface with the
// same shape across telemetry loading, synchronization, and encoding.
package services
