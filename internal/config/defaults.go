package config

const (
	defaultOutputDir             = "~/Videos/lapsync"
	defaultLogDir                = "~/.local/share/lapsync/logs"
	defaultStateDir              = "~/.local/share/lapsync"
	defaultOutputSize            = "1920x1080"
	defaultFPS                   = 30
	defaultLayout                = LayoutSideBySide
	defaultWindowSeconds         = 10
	defaultSpeedUnits            = "kmh"
	defaultBackgroundOpacity     = 0.55
	defaultStderrTailLines       = 20
	defaultTerminateGraceSeconds = 5
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
)

// Layout names accepted by render.layout.
const (
	LayoutSideBySide = "side_by_side"
	LayoutStacked    = "stacked"
)

// DefaultRequiredColumns is the telemetry column contract used when the config
// does not override it.
var DefaultRequiredColumns = []string{"LapDistPct", "Speed", "Throttle", "Brake"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		Render: Render{
			OutputSize:        defaultOutputSize,
			FPS:               defaultFPS,
			Layout:            defaultLayout,
			WindowSeconds:     defaultWindowSeconds,
			SpeedUnits:        defaultSpeedUnits,
			BackgroundOpacity: defaultBackgroundOpacity,
		},
		Video: Video{
			Zoom: 1.0,
		},
		Encoder: Encoder{
			FFmpegBinary:          "ffmpeg",
			FFprobeBinary:         "ffprobe",
			StderrTailLines:       defaultStderrTailLines,
			TerminateGraceSeconds: defaultTerminateGraceSeconds,
		},
		Telemetry: Telemetry{
			RequiredColumns: append([]string(nil), DefaultRequiredColumns...),
		},
		HUDs: defaultHUDs(),
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

func defaultHUDs() []HUD {
	return []HUD{
		{Kind: "speed", X: 20, Y: 20, W: 360, H: 70, Enabled: true},
		{Kind: "throttle_brake", X: 20, Y: 840, W: 600, H: 200, Enabled: true},
		{Kind: "steering", X: 660, Y: 840, W: 600, H: 200, Enabled: true},
		{Kind: "delta", X: 1300, Y: 840, W: 600, H: 200, Enabled: true},
		{Kind: "gear_rpm", X: 1540, Y: 20, W: 360, H: 120, Enabled: false},
		{Kind: "line_delta", X: 1300, Y: 620, W: 600, H: 200, Enabled: false},
		{Kind: "under_oversteer", X: 660, Y: 620, W: 600, H: 200, Enabled: false},
	}
}
