package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// Render contains output canvas and timing configuration.
type Render struct {
	OutputSize        string  `toml:"output_size"`
	FPS               float64 `toml:"fps"`
	Layout            string  `toml:"layout"`
	HUDWidth          int     `toml:"hud_width"`
	WindowSeconds     float64 `toml:"window_seconds"`
	SpeedUnits        string  `toml:"speed_units"`
	BackgroundOpacity float64 `toml:"background_opacity"`
}

// Video contains the zoom/pan transform applied identically to both laps.
type Video struct {
	Zoom   float64 `toml:"zoom"`
	ShiftX int     `toml:"shift_x"`
	ShiftY int     `toml:"shift_y"`
}

// Encoder contains configuration for the external ffmpeg encoder.
type Encoder struct {
	FFmpegBinary          string `toml:"ffmpeg_binary"`
	FFprobeBinary         string `toml:"ffprobe_binary"`
	Preferred             string `toml:"preferred"`
	DisableHardware       bool   `toml:"disable_hardware"`
	StderrTailLines       int    `toml:"stderr_tail_lines"`
	TerminateGraceSeconds int    `toml:"terminate_grace_seconds"`
}

// Telemetry contains the CSV column contract.
type Telemetry struct {
	RequiredColumns []string `toml:"required_columns"`
}

// HUD describes one overlay box. Coordinates are absolute canvas pixels.
type HUD struct {
	Kind              string  `toml:"kind"`
	X                 int     `toml:"x"`
	Y                 int     `toml:"y"`
	W                 int     `toml:"w"`
	H                 int     `toml:"h"`
	Enabled           bool    `toml:"enabled"`
	BackgroundOpacity float64 `toml:"background_opacity"`
	BeforeSeconds     float64 `toml:"before_seconds"`
	AfterSeconds      float64 `toml:"after_seconds"`
	Title             string  `toml:"title"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for lapsync.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and state directories
//   - Render: canvas size, frame rate, layout, HUD window length
//   - Video: shared zoom/pan transform for both laps
//   - Encoder: ffmpeg binaries and codec preference
//   - Telemetry: required CSV columns
//   - HUDs: overlay boxes
//   - Logging: log format, level, and retention
type Config struct {
	Paths     Paths     `toml:"paths"`
	Render    Render    `toml:"render"`
	Video     Video     `toml:"video"`
	Encoder   Encoder   `toml:"encoder"`
	Telemetry Telemetry `toml:"telemetry"`
	HUDs      []HUD     `toml:"hud"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lapsync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/lapsync/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lapsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a render needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for encoding and decoding.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Encoder.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for video inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Encoder.FFprobeBinary); bin != "" {
		return bin
	}
	return "ffprobe"
}

// EnabledHUDs returns the HUD boxes that take part in rendering, in config order.
func (c *Config) EnabledHUDs() []HUD {
	out := make([]HUD, 0, len(c.HUDs))
	for _, h := range c.HUDs {
		if h.Enabled {
			out = append(out, h)
		}
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ParseSize parses an output size such as "1920x1080".
func ParseSize(value string) (int, int, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	a, b, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q: expected WIDTHxHEIGHT", value)
	}
	var w, h int
	if _, err := fmt.Sscanf(strings.TrimSpace(a), "%d", &w); err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", value, err)
	}
	if _, err := fmt.Sscanf(strings.TrimSpace(b), "%d", &h); err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", value, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q: dimensions must be positive", value)
	}
	return w, h, nil
}
