package config

import (
	"errors"
	"fmt"
	"math"
)

// HUDKinds lists the overlay kinds the renderer registry knows about.
var HUDKinds = []string{"speed", "throttle_brake", "steering", "delta", "line_delta", "gear_rpm", "under_oversteer"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateHUDs(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRender() error {
	w, h, err := ParseSize(c.Render.OutputSize)
	if err != nil {
		return fmt.Errorf("render.output_size: %w", err)
	}
	if w%2 != 0 || h%2 != 0 {
		return errors.New("render.output_size must use even dimensions")
	}
	if c.Render.FPS < 0 || math.IsNaN(c.Render.FPS) || c.Render.FPS > 240 {
		return errors.New("render.fps must be between 0 (use primary video rate) and 240")
	}
	switch c.Render.Layout {
	case LayoutSideBySide, LayoutStacked:
	default:
		return fmt.Errorf("render.layout: unsupported value %q", c.Render.Layout)
	}
	if c.Render.Layout == LayoutSideBySide && c.Render.HUDWidth >= w-20 {
		return errors.New("render.hud_width is too large for render.output_size")
	}
	if c.Render.Layout == LayoutStacked && c.Render.HUDWidth >= h-20 {
		return errors.New("render.hud_width is too large for render.output_size")
	}
	if c.Render.BackgroundOpacity < 0 || c.Render.BackgroundOpacity > 1 {
		return errors.New("render.background_opacity must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.Zoom < 1 || c.Video.Zoom > 8 {
		return errors.New("video.zoom must be between 1 and 8")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	return ensurePositiveMap(map[string]int{
		"encoder.stderr_tail_lines":       c.Encoder.StderrTailLines,
		"encoder.terminate_grace_seconds": c.Encoder.TerminateGraceSeconds,
	})
}

func (c *Config) validateHUDs() error {
	known := make(map[string]struct{}, len(HUDKinds))
	for _, k := range HUDKinds {
		known[k] = struct{}{}
	}
	for i, h := range c.HUDs {
		if _, ok := known[h.Kind]; !ok {
			return fmt.Errorf("hud[%d].kind: unsupported value %q", i, h.Kind)
		}
		if !h.Enabled {
			continue
		}
		if h.W < 16 || h.H < 16 {
			return fmt.Errorf("hud[%d] (%s): w and h must be at least 16", i, h.Kind)
		}
		if h.X < 0 || h.Y < 0 {
			return fmt.Errorf("hud[%d] (%s): x and y must be >= 0", i, h.Kind)
		}
		if h.BeforeSeconds < 0 || h.AfterSeconds < 0 {
			return fmt.Errorf("hud[%d] (%s): window seconds must be >= 0", i, h.Kind)
		}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
