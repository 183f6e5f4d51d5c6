package compositor

import (
	"fmt"
	"image"
	"math"

	"lapsync/internal/config"
	"lapsync/internal/hud"
	"lapsync/internal/services"
)

// Geometry is the canvas layout for a run.
type Geometry struct {
	Width     int
	Height    int
	Layout    string
	Primary   image.Rectangle
	Secondary image.Rectangle
	// HUDColumn is the centre strip reserved for overlays in the
	// side-by-side layout; empty otherwise.
	HUDColumn image.Rectangle
	Zoom      float64
	Shift     image.Point
}

// NewGeometry derives the canvas and per-video target rectangles from the
// render and video configuration.
func NewGeometry(cfg *config.Config) (Geometry, error) {
	w, h, err := config.ParseSize(cfg.Render.OutputSize)
	if err != nil {
		return Geometry{}, fmt.Errorf("compositor: %w: %w", services.ErrConfiguration, err)
	}
	g := Geometry{
		Width:  w,
		Height: h,
		Layout: cfg.Render.Layout,
		Zoom:   cfg.Video.Zoom,
		Shift:  image.Pt(cfg.Video.ShiftX, cfg.Video.ShiftY),
	}
	if g.Zoom <= 0 {
		g.Zoom = 1
	}

	switch cfg.Render.Layout {
	case config.LayoutStacked:
		mid := h / 2
		g.Primary = image.Rect(0, 0, w, mid)
		g.Secondary = image.Rect(0, mid, w, h)
	case config.LayoutSideBySide, "":
		hw := max(cfg.Render.HUDWidth, 0)
		if hw >= w {
			return Geometry{}, fmt.Errorf("compositor: hud_width %d leaves no room for video on a %d px canvas: %w", hw, w, services.ErrConfiguration)
		}
		side := (w - hw) / 2
		g.Primary = image.Rect(0, 0, side, h)
		g.Secondary = image.Rect(w-side, 0, w, h)
		if hw > 0 {
			g.HUDColumn = image.Rect(side, 0, w-side, h)
		}
	default:
		return Geometry{}, fmt.Errorf("compositor: unsupported layout %q: %w", cfg.Render.Layout, services.ErrConfiguration)
	}
	return g, nil
}

// Bounds returns the canvas rectangle.
func (g Geometry) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// ClipBoxes intersects box rectangles with the canvas and drops boxes that
// fall outside it entirely.
func (g Geometry) ClipBoxes(boxes []hud.Box) []hud.Box {
	out := make([]hud.Box, 0, len(boxes))
	for _, b := range boxes {
		b.Rect = b.Rect.Intersect(g.Bounds())
		if b.Rect.Empty() {
			continue
		}
		out = append(out, b)
	}
	return out
}

// placement is where a source video of a given size lands inside its
// target rectangle: scaled to fit, multiplied by zoom, centred and shifted.
// The destination may overflow the target; drawing is clipped to it.
type placement struct {
	target image.Rectangle
	dst    image.Rectangle
	src    image.Point
}

func newPlacement(target image.Rectangle, src image.Point, zoom float64, shift image.Point) placement {
	p := placement{target: target, src: src}
	if src.X <= 0 || src.Y <= 0 || target.Empty() {
		return p
	}
	scale := math.Min(float64(target.Dx())/float64(src.X), float64(target.Dy())/float64(src.Y)) * zoom
	dw := max(1, int(math.Round(float64(src.X)*scale)))
	dh := max(1, int(math.Round(float64(src.Y)*scale)))
	x0 := target.Min.X + (target.Dx()-dw)/2 + shift.X
	y0 := target.Min.Y + (target.Dy()-dh)/2 + shift.Y
	p.dst = image.Rect(x0, y0, x0+dw, y0+dh)
	return p
}

// visible reports the part of the target covered by video.
func (p placement) visible() image.Rectangle {
	return p.dst.Intersect(p.target)
}
