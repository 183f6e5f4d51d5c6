package hud

import (
	"image"
)

// Signature captures every input the static layer depends on. Two equal
// signatures produce identical static layers.
type Signature struct {
	Kind       Kind
	W, H       int
	FPS        float64
	HalfFrames int
	Lo, Hi     float64
	Title      string
	Opacity    float64
	Style      Style
}

// State is the persistent render state of one box. It is owned by the
// Engine and mutated only from Engine.Render.
type State struct {
	Box       Box
	Layout    *Layout
	Static    *image.RGBA
	Dynamic   *image.RGBA
	Compose   *image.RGBA
	Signature Signature

	// LastFrame is the frame index drawn most recently.
	LastFrame int
	// Acc is the fractional scroll remainder in pixels.
	Acc        float64
	HalfFrames int

	// StaticBuilds, Resets and Shifted count static rebuilds, RESET passes
	// and the total pixels scrolled.
	StaticBuilds int
	Resets       int
	Shifted      int

	// columnY[c][x] is the row drawn for curve c in column x, or -1.
	columnY [][]int
	gap     []bool
	// Columns below redrawEnd handed to DrawIncremental still hold an
	// earlier frame and are cleared only once new data is known.
	redrawEnd int
}

func (s *State) ensureColumns(curves, width int) {
	if len(s.columnY) == curves && (curves == 0 || len(s.columnY[0]) == width) {
		return
	}
	s.columnY = make([][]int, curves)
	for i := range s.columnY {
		s.columnY[i] = make([]int, width)
	}
	s.gap = make([]bool, curves)
}

func (s *State) clearColumnY(x0, x1 int) {
	for _, col := range s.columnY {
		for x := max(x0, 0); x < min(x1, len(col)); x++ {
			col[x] = -1
		}
	}
}

func (s *State) shiftColumnY(shift int) {
	for _, col := range s.columnY {
		if shift >= len(col) {
			continue
		}
		copy(col, col[shift:])
	}
	if len(s.columnY) > 0 {
		w := len(s.columnY[0])
		s.clearColumnY(w-min(shift, w), w)
	}
}

// heldY returns the row curve c was drawn at in column x, or -1.
func (s *State) heldY(c, x int) int {
	if c >= len(s.columnY) || x < 0 || x >= len(s.columnY[c]) {
		return -1
	}
	return s.columnY[c][x]
}
