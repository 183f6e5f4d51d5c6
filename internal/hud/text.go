package hud

import (
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// newFace returns a Go Regular face at the given pixel size, falling back to
// the fixed 7x13 bitmap face if the font cannot be loaded.
func newFace(size float64) font.Face {
	f, err := goRegular()
	if err != nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// faces holds the three text sizes used by a box, derived from its height.
type faces struct {
	title font.Face
	value font.Face
	axis  font.Face
}

func newFaces(h int) faces {
	titleSize := clampFloat(float64(h)*0.13, 10, 18)
	valueSize := clampFloat(float64(h)*0.15, 11, 20)
	return faces{
		title: newFace(titleSize),
		value: newFace(valueSize),
		axis:  newFace(math.Max(8, titleSize-2)),
	}
}

func lineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

func ascent(face font.Face) int {
	return face.Metrics().Ascent.Ceil()
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// drawText draws s with its baseline at y and a one pixel drop shadow.
func drawText(dst *image.RGBA, face font.Face, x, y int, s string, col, shadow color.RGBA) {
	if s == "" {
		return
	}
	if shadow.A > 0 {
		sh := &font.Drawer{Dst: dst, Src: image.NewUniform(shadow), Face: face, Dot: fixed.P(x+1, y+1)}
		sh.DrawString(s)
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

// segment is one coloured run of readout text.
type segment struct {
	text  string
	color color.RGBA
}

// drawSegmentsRight draws segments so the last one ends at right.
func drawSegmentsRight(dst *image.RGBA, face font.Face, right, y int, shadow color.RGBA, segs ...segment) {
	total := 0
	for _, s := range segs {
		total += textWidth(face, s.text)
	}
	x := right - total
	for _, s := range segs {
		drawText(dst, face, x, y, s.text, s.color, shadow)
		x += textWidth(face, s.text)
	}
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
