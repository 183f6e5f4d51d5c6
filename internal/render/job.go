package render

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"lapsync/internal/lapsync"
	"lapsync/internal/preflight"
	"lapsync/internal/services"
	"lapsync/internal/textutil"
)

const defaultExtension = ".mp4"

// Job is the immutable description of one render.
type Job struct {
	PrimaryVideo       string
	PrimaryTelemetry   string
	SecondaryVideo     string
	SecondaryTelemetry string
	// Output is the destination file. Empty means a name derived from the
	// two videos inside the configured output directory.
	Output string
	// Range optionally limits the render to part of the primary lap.
	Range lapsync.TimeRange
}

// Validate checks that every input is named.
func (j Job) Validate() error {
	missing := make([]string, 0, 4)
	for _, in := range []struct{ flag, value string }{
		{"primary video", j.PrimaryVideo},
		{"primary telemetry", j.PrimaryTelemetry},
		{"secondary video", j.SecondaryVideo},
		{"secondary telemetry", j.SecondaryTelemetry},
	} {
		if strings.TrimSpace(in.value) == "" {
			missing = append(missing, in.flag)
		}
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "render", "validate job", "missing "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// ResolveOutput returns the absolute destination path.
func (j Job) ResolveOutput(outputDir string) (string, error) {
	out := strings.TrimSpace(j.Output)
	if out == "" {
		out = filepath.Join(outputDir, DefaultOutputName(j.PrimaryVideo, j.SecondaryVideo))
	}
	if filepath.Ext(out) == "" {
		out += defaultExtension
	}
	abs, err := filepath.Abs(out)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "render", "resolve output", out, err)
	}
	return abs, nil
}

// DefaultOutputName builds "<primary>_vs_<secondary>.mp4" from the video
// file names.
func DefaultOutputName(primaryVideo, secondaryVideo string) string {
	stem := func(path string) string {
		base := filepath.Base(path)
		return textutil.SanitizeToken(strings.TrimSuffix(base, filepath.Ext(base)))
	}
	return stem(primaryVideo) + "_vs_" + stem(secondaryVideo) + defaultExtension
}

func (j Job) inputs() preflight.Inputs {
	return preflight.Inputs{
		PrimaryVideo:       j.PrimaryVideo,
		PrimaryTelemetry:   j.PrimaryTelemetry,
		SecondaryVideo:     j.SecondaryVideo,
		SecondaryTelemetry: j.SecondaryTelemetry,
	}
}

// partialPath keeps the extension so ffmpeg can still infer the container.
func partialPath(output, runID string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + ".partial-" + textutil.SanitizeFileName(runID) + ext
}

// ParseRange parses "start:end" in primary-lap seconds. Either side may be
// empty: "12.5:" renders from 12.5 s to the end, ":40" the first 40 s.
func ParseRange(value string) (lapsync.TimeRange, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return lapsync.TimeRange{}, nil
	}
	startRaw, endRaw, ok := strings.Cut(value, ":")
	if !ok {
		return lapsync.TimeRange{}, services.Wrap(services.ErrConfiguration, "render", "parse range",
			fmt.Sprintf("%q must look like start:end", value), nil)
	}
	parse := func(raw string) (float64, error) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return 0, services.Wrap(services.ErrConfiguration, "render", "parse range",
				fmt.Sprintf("%q is not a non-negative number of seconds", raw), err)
		}
		return v, nil
	}
	start, err := parse(startRaw)
	if err != nil {
		return lapsync.TimeRange{}, err
	}
	end, err := parse(endRaw)
	if err != nil {
		return lapsync.TimeRange{}, err
	}
	if end != 0 && end <= start {
		return lapsync.TimeRange{}, services.Wrap(services.ErrConfiguration, "render", "parse range",
			fmt.Sprintf("end %.3f must be after start %.3f", end, start), nil)
	}
	return lapsync.TimeRange{Start: start, End: end}, nil
}
