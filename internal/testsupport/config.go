package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"lapsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Render.OutputSize = "320x180"
	cfgVal.Render.FPS = 10
	cfgVal.HUDs = []config.HUD{
		{Kind: "speed", X: 4, Y: 4, W: 120, H: 30, Enabled: true, BackgroundOpacity: 0.5},
		{Kind: "throttle_brake", X: 4, Y: 110, W: 150, H: 60, Enabled: true, BackgroundOpacity: 0.5},
	}

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithHUDs replaces the HUD boxes on the test config.
func WithHUDs(huds ...config.HUD) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.HUDs = huds
	}
}

// WithBinary writes an executable shell script into the test bin directory
// and returns its path through dst.
func WithBinary(name, body string, dst *string) ConfigOption {
	return func(b *configBuilder) {
		path := writeScript(b.t, filepath.Join(b.baseDir, "bin"), name, body)
		if dst != nil {
			*dst = path
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			writeScript(b.t, binDir, name, "exit 0\n")
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WriteScript writes an executable /bin/sh script and returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	return writeScript(t, dir, name, body)
}

func writeScript(t testing.TB, dir, name, body string) string {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
