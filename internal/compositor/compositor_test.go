package compositor_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/draw"

	"lapsync/internal/compositor"
	"lapsync/internal/config"
	"lapsync/internal/hud"
	"lapsync/internal/services"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

var (
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	black = color.RGBA{A: 255}
)

func testConfig(size, layout string, hudWidth int) *config.Config {
	cfg := config.Default()
	cfg.Render.OutputSize = size
	cfg.Render.Layout = layout
	cfg.Render.HUDWidth = hudWidth
	return &cfg
}

func TestSideBySideGeometry(t *testing.T) {
	g, err := compositor.NewGeometry(testConfig("1920x1080", config.LayoutSideBySide, 320))
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	if g.Primary != image.Rect(0, 0, 800, 1080) {
		t.Fatalf("unexpected primary rect %v", g.Primary)
	}
	if g.Secondary != image.Rect(1120, 0, 1920, 1080) {
		t.Fatalf("unexpected secondary rect %v", g.Secondary)
	}
	if g.HUDColumn != image.Rect(800, 0, 1120, 1080) {
		t.Fatalf("unexpected hud column %v", g.HUDColumn)
	}
}

func TestStackedGeometry(t *testing.T) {
	g, err := compositor.NewGeometry(testConfig("1280x720", config.LayoutStacked, 0))
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	if g.Primary != image.Rect(0, 0, 1280, 360) || g.Secondary != image.Rect(0, 360, 1280, 720) {
		t.Fatalf("unexpected stacked rects %v %v", g.Primary, g.Secondary)
	}
	if !g.HUDColumn.Empty() {
		t.Fatalf("stacked layout should not reserve a hud column, got %v", g.HUDColumn)
	}
}

func TestGeometryRejectsBadInput(t *testing.T) {
	if _, err := compositor.NewGeometry(testConfig("1280x720", "diagonal", 0)); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for layout, got %v", err)
	}
	if _, err := compositor.NewGeometry(testConfig("1280x720", config.LayoutSideBySide, 1280)); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for hud width, got %v", err)
	}
}

func TestComposePlacesVideosAndFillsBlack(t *testing.T) {
	g, err := compositor.NewGeometry(testConfig("200x100", config.LayoutSideBySide, 40))
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	// 4:3 sources into 80x100 targets leave black bars above and below.
	c := compositor.New(g, image.Pt(80, 60), image.Pt(80, 60))
	frame := c.Compose(solid(80, 60, red), solid(80, 60, blue), nil)

	checks := []struct {
		x, y int
		want color.RGBA
	}{
		{40, 50, red},
		{160, 50, blue},
		{100, 50, black},
		{40, 5, black},
		{40, 95, black},
	}
	for _, c := range checks {
		if got := frame.RGBAAt(c.x, c.y); got != c.want {
			t.Fatalf("pixel (%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestZoomAndShiftStayInsideTarget(t *testing.T) {
	cfg := testConfig("200x100", config.LayoutSideBySide, 0)
	cfg.Video.Zoom = 2
	cfg.Video.ShiftX = 30
	g, err := compositor.NewGeometry(cfg)
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	c := compositor.New(g, image.Pt(100, 100), image.Pt(100, 100))
	frame := c.Compose(solid(100, 100, red), solid(100, 100, blue), nil)

	for x := 0; x < 100; x++ {
		if got := frame.RGBAAt(x, 50); got == blue {
			t.Fatalf("secondary video leaked into the primary rectangle at x=%d", x)
		}
	}
	if got := frame.RGBAAt(99, 50); got != red {
		t.Fatalf("expected zoomed primary to reach its right edge, got %v", got)
	}
	if got := frame.RGBAAt(100, 0); got != blue {
		t.Fatalf("expected secondary to start at its target edge, got %v", got)
	}
}

func TestComposeBlendsOverlays(t *testing.T) {
	g, err := compositor.NewGeometry(testConfig("100x50", config.LayoutSideBySide, 0))
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	c := compositor.New(g, image.Pt(50, 50), image.Pt(50, 50))
	half := color.RGBA{R: 0, G: 64, B: 0, A: 128}
	overlay := solid(20, 10, half)
	box := hud.Box{Rect: image.Rect(10, 10, 30, 20)}
	frame := c.Compose(solid(50, 50, red), nil, []hud.Overlay{{Box: box, Image: overlay}})

	got := frame.RGBAAt(15, 15)
	if got.A != 255 || got.G == 0 || got.R == 255 || got.R == 0 {
		t.Fatalf("expected red blended with translucent green, got %v", got)
	}
	if frame.RGBAAt(60, 25) != black {
		t.Fatal("expected missing secondary frame to leave black")
	}
}

func TestClipBoxes(t *testing.T) {
	g, err := compositor.NewGeometry(testConfig("100x50", config.LayoutSideBySide, 0))
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	boxes := g.ClipBoxes([]hud.Box{
		{ID: 0, Rect: image.Rect(80, 40, 140, 90)},
		{ID: 1, Rect: image.Rect(200, 200, 220, 220)},
	})
	if len(boxes) != 1 || boxes[0].Rect != image.Rect(80, 40, 100, 50) {
		t.Fatalf("unexpected clipped boxes %+v", boxes)
	}
}
