package hud

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// fillRect paints r with c, replacing what was there.
func fillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// blendRect composites c over r.
func blendRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

// hline draws a one pixel horizontal line blended over dst.
func hline(dst *image.RGBA, x0, x1, y int, c color.RGBA) {
	blendRect(dst, image.Rect(x0, y, x1, y+1), c)
}

// vspan sets the pixels of column x between y0 and y1 inclusive, widened by
// thick-1 pixels downwards.
func vspan(dst *image.RGBA, x, y0, y1, thick int, c color.RGBA) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	b := dst.Bounds()
	if x < b.Min.X || x >= b.Max.X {
		return
	}
	y1 += thick - 1
	y0 = max(y0, b.Min.Y)
	y1 = min(y1, b.Max.Y-1)
	for y := y0; y <= y1; y++ {
		dst.SetRGBA(x, y, c)
	}
}

// clearColumns makes columns [x0, x1) fully transparent.
func clearColumns(dst *image.RGBA, x0, x1 int) {
	b := dst.Bounds()
	fillRect(dst, image.Rect(x0, b.Min.Y, x1, b.Max.Y), color.RGBA{})
}

// scrollLeft moves the image content left by shift pixels in place and
// clears the uncovered right-edge columns.
func scrollLeft(dst *image.RGBA, shift int) {
	b := dst.Bounds()
	w := b.Dx()
	if shift <= 0 {
		return
	}
	if shift >= w {
		clearColumns(dst, b.Min.X, b.Max.X)
		return
	}
	rowBytes := w * 4
	for y := 0; y < b.Dy(); y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+rowBytes]
		copy(row, row[shift*4:])
	}
	clearColumns(dst, b.Max.X-shift, b.Max.X)
}

// withAlpha returns c with its alpha replaced by opacity in [0, 1].
func withAlpha(c color.RGBA, opacity float64) color.RGBA {
	a := uint8(clampFloat(opacity, 0, 1)*255 + 0.5)
	// image.RGBA stores premultiplied colour.
	return color.RGBA{
		R: uint8(uint16(c.R) * uint16(a) / 255),
		G: uint8(uint16(c.G) * uint16(a) / 255),
		B: uint8(uint16(c.B) * uint16(a) / 255),
		A: a,
	}
}
