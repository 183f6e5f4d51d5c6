// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and returns a Result; helpers on Result and Stream
// expose the first video stream, its frame rate (parsed from the rational
// r_frame_rate), frame count, and container duration.
package ffprobe
