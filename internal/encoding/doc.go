// Package encoding streams composited frames into an external ffmpeg
// encoder.
//
// Candidates are probed once and ordered hardware first, always ending in
// the libx264 software fallback. Pipeline.Run starts one encoder per
// candidate and asks the producer to write every frame from the beginning;
// a candidate that fails to start, breaks the pipe, exits non-zero, or
// leaves no output is logged and replaced by the next one. Only exhausting
// the list is fatal.
package encoding
