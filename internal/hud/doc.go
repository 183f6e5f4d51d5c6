// Package hud renders the telemetry overlays drawn on every output frame.
//
// Each enabled box owns a State with a static chrome layer and, for scrolling
// kinds, a dynamic scroll buffer. The Engine drives a small state machine per
// box: a RESET repaints everything, while the INCREMENTAL path shifts the
// buffer left and draws only the newest right-edge columns. Live readouts are
// drawn on a composed copy and never baked into the buffer.
package hud
