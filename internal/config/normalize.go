package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeVideo()
	c.normalizeEncoder()
	c.normalizeTelemetry()
	c.normalizeHUDs()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRender() {
	c.Render.OutputSize = strings.ToLower(strings.TrimSpace(c.Render.OutputSize))
	if c.Render.OutputSize == "" {
		c.Render.OutputSize = defaultOutputSize
	}
	c.Render.Layout = strings.ToLower(strings.TrimSpace(c.Render.Layout))
	switch c.Render.Layout {
	case "", "side-by-side", "sbs":
		c.Render.Layout = LayoutSideBySide
	case "stack", "vertical":
		c.Render.Layout = LayoutStacked
	}
	if c.Render.WindowSeconds <= 0 {
		c.Render.WindowSeconds = defaultWindowSeconds
	}
	c.Render.SpeedUnits = strings.ToLower(strings.TrimSpace(c.Render.SpeedUnits))
	if c.Render.SpeedUnits != "mph" {
		c.Render.SpeedUnits = defaultSpeedUnits
	}
	if c.Render.HUDWidth < 0 {
		c.Render.HUDWidth = 0
	}
}

func (c *Config) normalizeVideo() {
	if c.Video.Zoom <= 0 {
		c.Video.Zoom = 1.0
	}
}

func (c *Config) normalizeEncoder() {
	if value, ok := os.LookupEnv("LAPSYNC_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Encoder.FFmpegBinary = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("LAPSYNC_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Encoder.FFprobeBinary = strings.TrimSpace(value)
	}
	c.Encoder.FFmpegBinary = strings.TrimSpace(c.Encoder.FFmpegBinary)
	if c.Encoder.FFmpegBinary == "" {
		c.Encoder.FFmpegBinary = "ffmpeg"
	}
	c.Encoder.FFprobeBinary = strings.TrimSpace(c.Encoder.FFprobeBinary)
	if c.Encoder.FFprobeBinary == "" {
		c.Encoder.FFprobeBinary = "ffprobe"
	}
	c.Encoder.Preferred = strings.ToLower(strings.TrimSpace(c.Encoder.Preferred))
	if c.Encoder.StderrTailLines <= 0 {
		c.Encoder.StderrTailLines = defaultStderrTailLines
	}
	if c.Encoder.TerminateGraceSeconds <= 0 {
		c.Encoder.TerminateGraceSeconds = defaultTerminateGraceSeconds
	}
}

func (c *Config) normalizeTelemetry() {
	cols := make([]string, 0, len(c.Telemetry.RequiredColumns))
	seen := make(map[string]struct{}, len(c.Telemetry.RequiredColumns))
	for _, col := range c.Telemetry.RequiredColumns {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		if _, ok := seen[col]; ok {
			continue
		}
		seen[col] = struct{}{}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		cols = append(cols, DefaultRequiredColumns...)
	}
	c.Telemetry.RequiredColumns = cols
}

func (c *Config) normalizeHUDs() {
	for i := range c.HUDs {
		h := &c.HUDs[i]
		h.Kind = strings.ToLower(strings.TrimSpace(h.Kind))
		h.Kind = strings.ReplaceAll(h.Kind, "-", "_")
		h.Title = strings.TrimSpace(h.Title)
		if h.BackgroundOpacity <= 0 {
			h.BackgroundOpacity = c.Render.BackgroundOpacity
		}
		if h.BackgroundOpacity > 1 {
			h.BackgroundOpacity = 1
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
