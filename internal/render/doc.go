// Package render runs one lap comparison end to end: it checks the inputs,
// loads and synchronises both telemetry logs, prepares the HUD engine and
// compositor, and streams every output frame into the encoder pipeline.
//
// Telemetry is validated before any video is touched, so a broken column
// contract fails the run before the first frame. Output is written to a
// run-specific partial file next to the destination and renamed into place
// only after the encoder finished cleanly.
package render
