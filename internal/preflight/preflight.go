package preflight

import (
	"context"
	"fmt"

	"lapsync/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Inputs names the files a render is about to read.
type Inputs struct {
	PrimaryVideo       string
	PrimaryTelemetry   string
	SecondaryVideo     string
	SecondaryTelemetry string
}

// minFreeBytes is the free space the output directory must have before a render starts.
const minFreeBytes = 512 << 20

// RunAll executes the preflight checks for a render. Input checks are skipped
// for empty paths so the doctor command can reuse it without a job.
func RunAll(ctx context.Context, cfg *config.Config, in Inputs) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckFreeSpace("Output free space", cfg.Paths.OutputDir, minFreeBytes))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	for _, input := range []struct{ name, path string }{
		{"Primary video", in.PrimaryVideo},
		{"Primary telemetry", in.PrimaryTelemetry},
		{"Secondary video", in.SecondaryVideo},
		{"Secondary telemetry", in.SecondaryTelemetry},
	} {
		if input.path == "" {
			continue
		}
		results = append(results, CheckFileReadable(input.name, input.path))
	}

	for _, status := range CheckSystemDeps(ctx, cfg) {
		r := Result{Name: status.Name, Passed: status.Available || status.Optional}
		switch {
		case status.Available && status.Version != "":
			r.Detail = status.Version
		case status.Available:
			r.Detail = status.Path
		default:
			r.Detail = status.Detail
		}
		results = append(results, r)
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Summary joins failed checks into one line for error messages.
func Summary(failed []Result) string {
	out := ""
	for i, r := range failed {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s: %s", r.Name, r.Detail)
	}
	return out
}
