package compositor

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"lapsync/internal/hud"
)

// Compositor owns the output canvas and reuses it for every frame.
type Compositor struct {
	geom      Geometry
	canvas    *image.RGBA
	primary   placement
	secondary placement
	scaler    draw.Scaler
}

// New prepares a compositor for sources of the given sizes.
func New(geom Geometry, primarySize, secondarySize image.Point) *Compositor {
	return &Compositor{
		geom:      geom,
		canvas:    image.NewRGBA(geom.Bounds()),
		primary:   newPlacement(geom.Primary, primarySize, geom.Zoom, geom.Shift),
		secondary: newPlacement(geom.Secondary, secondarySize, geom.Zoom, geom.Shift),
		scaler:    draw.ApproxBiLinear,
	}
}

// Geometry returns the layout the compositor was built with.
func (c *Compositor) Geometry() Geometry { return c.geom }

// Compose draws one frame. Either video may be nil, which leaves its
// rectangle black. The returned canvas is reused by the next call.
func (c *Compositor) Compose(primary, secondary *image.RGBA, overlays []hud.Overlay) *image.RGBA {
	draw.Draw(c.canvas, c.canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	c.place(primary, c.primary)
	c.place(secondary, c.secondary)
	for _, o := range overlays {
		if o.Image == nil {
			continue
		}
		draw.Draw(c.canvas, o.Box.Rect, o.Image, o.Image.Bounds().Min, draw.Over)
	}
	return c.canvas
}

func (c *Compositor) place(src *image.RGBA, p placement) {
	if src == nil || p.visible().Empty() {
		return
	}
	target, ok := c.canvas.SubImage(p.target).(*image.RGBA)
	if !ok {
		return
	}
	sb := src.Bounds()
	if p.dst.Size() == sb.Size() {
		draw.Draw(target, p.dst, src, sb.Min, draw.Src)
		return
	}
	c.scaler.Scale(target, p.dst, src, sb, draw.Src, nil)
}
