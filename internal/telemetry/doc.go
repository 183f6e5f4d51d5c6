// Package telemetry loads lap telemetry logs and prepares them for
// synchronization.
//
// Load parses a CSV log and enforces the required-column contract; a missing
// column fails with *MissingColumnError before anything is rendered. Resample
// unwraps LapDistPct and places every channel on a uniform per-frame grid at
// the output frame rate: continuous channels are linearly interpolated,
// discrete ones (Gear, ABSActive) take the nearest sample.
package telemetry
