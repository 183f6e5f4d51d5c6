package hud

import (
	"image"
	"math"
)

// Layout is the geometry of one box, derived when its static layer is
// built and reused by every incremental draw until the next rebuild.
type Layout struct {
	Box        Box
	W, H       int
	Plot       image.Rectangle
	HalfFrames int
	// Rate is the horizontal scroll speed in pixels per frame.
	Rate   float64
	Lo, Hi float64
	Ticks  []float64
	// TitleY is the baseline of the title row.
	TitleY int

	faces faces
}

func newLayout(box Box, halfFrames int, lo, hi float64) *Layout {
	w, h := box.Rect.Dx(), box.Rect.Dy()
	f := newFaces(h)
	titleRow := max(lineHeight(f.title), lineHeight(f.value)) + 4
	l := &Layout{
		Box:        box,
		W:          w,
		H:          h,
		Plot:       image.Rect(0, min(titleRow, h-1), w, h-1),
		HalfFrames: halfFrames,
		Rate:       float64(w) / float64(2*halfFrames),
		Lo:         lo,
		Hi:         hi,
		TitleY:     2 + max(ascent(f.title), ascent(f.value)),
		faces:      f,
	}
	return l
}

// CenterX is the column of the "now" marker.
func (l *Layout) CenterX() int { return l.W / 2 }

// Coord returns the fractional primary frame coordinate sampled by column x
// when the buffer is showing frame with the given scroll remainder.
// Columns left of centre are in the past.
func (l *Layout) Coord(frame, x int, acc float64) float64 {
	return float64(frame) + (float64(x)-acc-float64(l.W)/2)/l.Rate
}

// Y maps a value onto a row inside the plot area, clamping at the edges.
func (l *Layout) Y(v float64) int {
	top, bottom := l.Plot.Min.Y, l.Plot.Max.Y-1
	if l.Hi <= l.Lo {
		return (top + bottom) / 2
	}
	frac := (v - l.Lo) / (l.Hi - l.Lo)
	y := float64(bottom) - frac*float64(bottom-top)
	return int(math.Round(clampFloat(y, float64(top), float64(bottom))))
}
