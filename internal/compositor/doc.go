// Package compositor assembles each output frame: both lap videos placed
// into their layout rectangles with a shared zoom/pan, then the HUD
// overlays on top. All geometry is derived once per run.
package compositor
