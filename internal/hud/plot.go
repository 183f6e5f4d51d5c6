package hud

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// curve is one scrolling line (or marker band) of a plot.
type curve struct {
	name   string
	color  func(Style) color.RGBA
	thick  int
	sample func(ctx *Context, coord float64) float64
	// band > 0 draws a marker strip this many pixels below the plot top
	// wherever the sampled value is at least 0.5.
	band int
}

// plotRenderer is the shared scrolling renderer. Each kind is a plotRenderer
// configured with its curves, value range and readout.
type plotRenderer struct {
	kind    Kind
	curves  []curve
	valueFn func(ctx *Context) (lo, hi float64)
	ticksFn func(lo, hi float64) []float64
	labelFn func(v float64) string
	zero    bool
	readout func(ctx *Context, frame int) []segment
}

func (p plotRenderer) Kind() Kind    { return p.kind }
func (p plotRenderer) Scrolls() bool { return true }

func (p plotRenderer) Range(ctx *Context) (float64, float64) {
	return p.valueFn(ctx)
}

func (p plotRenderer) ticks(lo, hi float64) []float64 {
	if p.ticksFn != nil {
		return p.ticksFn(lo, hi)
	}
	return Ticks(lo, hi, ChooseTick(hi-lo))
}

func (p plotRenderer) DrawStatic(ctx *Context, l *Layout) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, l.W, l.H))
	st := ctx.Style
	fillRect(img, img.Bounds(), withAlpha(color.RGBA{}, l.Box.BackgroundOpacity))

	l.Ticks = p.ticks(l.Lo, l.Hi)
	axisAscent := ascent(l.faces.axis)
	for _, v := range l.Ticks {
		y := l.Y(v)
		c := st.Grid
		if p.zero && v == 0 {
			c = st.Center
		}
		hline(img, l.Plot.Min.X, l.Plot.Max.X, y, c)
		label := fmt.Sprintf("%g", v)
		if p.labelFn != nil {
			label = p.labelFn(v)
		}
		if ly := y - 2; ly-axisAscent >= l.Plot.Min.Y {
			drawText(img, l.faces.axis, 2, ly, label, st.Text, st.Shadow)
		}
	}

	cx := l.CenterX()
	blendRect(img, image.Rect(cx, l.Plot.Min.Y, cx+1, l.Plot.Max.Y), st.Center)
	drawText(img, l.faces.title, 4, l.TitleY, l.Box.Title, st.Text, st.Shadow)
	return img
}

func (p plotRenderer) DrawIncremental(ctx *Context, st *State, frame, x0, x1 int) {
	l := st.Layout
	st.ensureColumns(len(p.curves), l.W)
	values := make([]float64, len(p.curves))
	for x := x0; x < x1; x++ {
		coord := l.Coord(frame, x, st.Acc)
		found := false
		for ci, c := range p.curves {
			values[ci] = c.sample(ctx, coord)
			found = found || finite(values[ci])
		}
		if x < st.redrawEnd {
			if !found {
				continue
			}
			clearColumns(st.Dynamic, x, x+1)
			st.clearColumnY(x, x+1)
		}
		for ci, c := range p.curves {
			v := values[ci]
			if !finite(v) {
				st.columnY[ci][x] = -1
				if !st.gap[ci] {
					st.gap[ci] = true
					ctx.logGap(st, c.name, frame)
				}
				continue
			}
			st.gap[ci] = false
			col := c.color(ctx.Style)
			if c.band > 0 {
				if v >= 0.5 {
					top := l.Plot.Min.Y + c.band
					vspan(st.Dynamic, x, top, top+2, 1, col)
				}
				continue
			}
			y := l.Y(v)
			prev := st.heldY(ci, x-1)
			if prev < 0 {
				prev = y
			}
			vspan(st.Dynamic, x, prev, y, max(c.thick, 1), col)
			st.columnY[ci][x] = y
		}
	}
}

func (p plotRenderer) DrawReadout(ctx *Context, dst *image.RGBA, l *Layout, frame int) {
	if p.readout == nil {
		return
	}
	segs := p.readout(ctx, frame)
	drawSegmentsRight(dst, l.faces.value, l.W-4, l.TitleY, ctx.Style.Shadow, segs...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
