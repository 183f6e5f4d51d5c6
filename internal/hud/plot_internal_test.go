package hud

import (
	"image"
	"image/color"
	"math"
	"slices"
	"testing"

	"lapsync/internal/logging"
)

func columnPixels(img *image.RGBA, x int) []color.RGBA {
	b := img.Bounds()
	out := make([]color.RGBA, 0, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		out = append(out, img.RGBAAt(x, y))
	}
	return out
}

func TestUnshiftedColumnKeepsContentWhenSampleMissing(t *testing.T) {
	ctx := &Context{FPS: 30, WindowSeconds: 20, Style: DefaultStyle(), Logger: logging.NewNop()}
	box := Box{ID: 0, Kind: KindDelta, Rect: image.Rect(0, 0, 40, 60), Enabled: true}
	// 40 px over 600 frames scrolls a fifteenth of a pixel per frame.
	st := &State{Box: box, Layout: newLayout(box, 300, 0, 1), Dynamic: image.NewRGBA(image.Rect(0, 0, 40, 60))}

	value := 0.5
	p := plotRenderer{
		kind: KindDelta,
		curves: []curve{{
			name:   "value",
			color:  primaryBright,
			thick:  2,
			sample: func(*Context, float64) float64 { return value },
		}},
		valueFn: func(*Context) (float64, float64) { return 0, 1 },
	}
	p.DrawIncremental(ctx, st, 0, 0, 40)
	last := 39
	drawn := columnPixels(st.Dynamic, last)
	if !slices.Contains(drawn, ctx.Style.PrimaryBright) {
		t.Fatal("expected the initial pass to draw the last column")
	}

	e := &Engine{ctx: ctx}
	a := activeBox{box: box, renderer: p}

	value = math.NaN()
	e.advance(a, st, 1)
	if st.Shifted != 0 {
		t.Fatalf("expected no scroll, shifted %d", st.Shifted)
	}
	if !slices.Equal(drawn, columnPixels(st.Dynamic, last)) {
		t.Fatal("missing sample erased the previous column content")
	}
	if st.columnY[0][last] < 0 {
		t.Fatal("missing sample dropped the held row")
	}

	value = 0.9
	e.advance(a, st, 2)
	if st.Shifted != 0 {
		t.Fatalf("expected no scroll, shifted %d", st.Shifted)
	}
	if got, want := st.columnY[0][last], st.Layout.Y(0.9); got != want {
		t.Fatalf("column row = %d, want %d", got, want)
	}
	if slices.Equal(drawn, columnPixels(st.Dynamic, last)) {
		t.Fatal("expected the column to be repainted with the new sample")
	}
}
