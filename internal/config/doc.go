// Package config loads, normalizes, and validates lapsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LAPSYNC_FFMPEG. The Config type centralizes the render layout, HUD boxes,
// encoder preferences, and telemetry contract so a run is fully described
// before the first frame is produced.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical layout names, and clear validation errors.
package config
