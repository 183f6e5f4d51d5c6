package hud

import "image/color"

// Lap colours: the primary (slower) lap is drawn in reds, the secondary
// (faster) lap in blues.
var (
	ColorPrimaryDark     = color.RGBA{R: 234, A: 255}
	ColorPrimaryBright   = color.RGBA{R: 255, G: 137, B: 117, A: 255}
	ColorSecondaryDark   = color.RGBA{R: 36, B: 250, A: 255}
	ColorSecondaryBright = color.RGBA{R: 1, G: 253, B: 255, A: 255}
	ColorWhite           = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Style holds the colours shared by every overlay. Colours are
// premultiplied, as image.RGBA expects.
type Style struct {
	PrimaryDark     color.RGBA
	PrimaryBright   color.RGBA
	SecondaryDark   color.RGBA
	SecondaryBright color.RGBA
	Text            color.RGBA
	Grid            color.RGBA
	Center          color.RGBA
	Shadow          color.RGBA
}

// DefaultStyle returns the standard palette.
func DefaultStyle() Style {
	return Style{
		PrimaryDark:     ColorPrimaryDark,
		PrimaryBright:   ColorPrimaryBright,
		SecondaryDark:   ColorSecondaryDark,
		SecondaryBright: ColorSecondaryBright,
		Text:            ColorWhite,
		Grid:            color.RGBA{R: 60, G: 60, B: 60, A: 60},
		Center:          color.RGBA{R: 150, G: 150, B: 150, A: 150},
		Shadow:          color.RGBA{A: 180},
	}
}
