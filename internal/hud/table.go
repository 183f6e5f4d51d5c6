package hud

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// speedTable shows current and corner minimum speed for both laps, primary
// on the left half and secondary on the right. It has no scroll buffer.
type speedTable struct{}

func (speedTable) Kind() Kind { return KindSpeed }
func (speedTable) Scrolls() bool { return false }
func (speedTable) Range(*Context) (float64, float64) { return 0, 0 }
func (speedTable) DrawIncremental(*Context, *State, int, int, int) {}

func (speedTable) DrawStatic(ctx *Context, l *Layout) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, l.W, l.H))
	st := ctx.Style
	fillRect(img, img.Bounds(), withAlpha(color.RGBA{}, l.Box.BackgroundOpacity))

	title := fmt.Sprintf("%s (%s)", l.Box.Title, ctx.SpeedLabel())
	half := l.W / 2
	drawText(img, l.faces.title, 4, l.TitleY, title, st.PrimaryDark, st.Shadow)
	drawText(img, l.faces.title, half+4, l.TitleY, title, st.SecondaryDark, st.Shadow)
	blendRect(img, image.Rect(half, 2, half+1, l.H-2), st.Grid)
	return img
}

func (speedTable) DrawReadout(ctx *Context, dst *image.RGBA, l *Layout, frame int) {
	st := ctx.Style
	f := float64(frame)
	baseline := l.H - 2 - l.faces.value.Metrics().Descent.Ceil()
	half := l.W / 2
	cells := []struct {
		l     lap
		x     int
		color color.RGBA
	}{
		{lapPrimary, 4, st.PrimaryBright},
		{lapSecondary, half + 4, st.SecondaryBright},
	}
	for _, c := range cells {
		drawText(dst, l.faces.value, c.x, baseline, speedText(ctx.speedAt(c.l, f), ctx.minSpeedAt(c.l, f)), c.color, st.Shadow)
	}
}

func speedText(v, minimum float64) string {
	format := func(x float64) string {
		if math.IsNaN(x) {
			return "--"
		}
		return fmt.Sprintf("%.0f", x)
	}
	return format(v) + " / " + format(minimum)
}
