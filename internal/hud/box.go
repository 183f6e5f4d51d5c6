package hud

import (
	"image"
	"math"

	"lapsync/internal/config"
)

// Box is one overlay rectangle on the output canvas. Boxes are immutable for
// the duration of a run.
type Box struct {
	ID                int
	Kind              Kind
	Rect              image.Rectangle
	Enabled           bool
	BackgroundOpacity float64
	BeforeSeconds     float64
	AfterSeconds      float64
	Title             string
}

// BoxesFromConfig converts the configured HUD tables into boxes. The box ID
// is the table's position in the config.
func BoxesFromConfig(huds []config.HUD) ([]Box, error) {
	boxes := make([]Box, 0, len(huds))
	for i, h := range huds {
		kind, err := ParseKind(h.Kind)
		if err != nil {
			return nil, err
		}
		title := h.Title
		if title == "" {
			title = kind.DefaultTitle()
		}
		boxes = append(boxes, Box{
			ID:                i,
			Kind:              kind,
			Rect:              image.Rect(h.X, h.Y, h.X+h.W, h.Y+h.H),
			Enabled:           h.Enabled,
			BackgroundOpacity: h.BackgroundOpacity,
			BeforeSeconds:     h.BeforeSeconds,
			AfterSeconds:      h.AfterSeconds,
			Title:             title,
		})
	}
	return boxes, nil
}

// HalfWindowSeconds returns the seconds shown on each side of the centre
// marker. Windows are always symmetric: an override uses the larger of
// before/after, otherwise half of the run's window length applies.
func (b Box) HalfWindowSeconds(windowSeconds float64) float64 {
	if half := math.Max(b.BeforeSeconds, b.AfterSeconds); half > 0 {
		return half
	}
	return windowSeconds / 2
}

// Asymmetric reports whether the configured override had to be normalised.
func (b Box) Asymmetric() bool {
	return (b.BeforeSeconds > 0 || b.AfterSeconds > 0) && b.BeforeSeconds != b.AfterSeconds
}

// halfFrames converts the half window to frames, never less than one.
func (b Box) halfFrames(windowSeconds, fps float64) int {
	return max(1, int(math.Round(b.HalfWindowSeconds(windowSeconds)*fps)))
}
