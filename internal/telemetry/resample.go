package telemetry

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"

	"lapsync/internal/services"
)

// timeNudge separates duplicate timestamps so the time axis is strictly increasing.
const timeNudge = 1e-9

// Resample places a raw log on the uniform grid t_k = k/fps for k in
// [0, frames). When the log has no Time_s column its rows are spread evenly
// across the grid, so the first row lands on frame 0 and the last on
// frames-1. A frames value <= 0 sizes the grid from the log's own duration.
//
// Lap distance is unwrapped before resampling and clamped at the ends; every
// other channel is NaN on frames outside the recorded span.
func Resample(raw *Raw, fps float64, frames int) (*Series, error) {
	if raw == nil || raw.Rows == 0 {
		return nil, fmt.Errorf("resample: empty telemetry: %w", services.ErrTelemetryContract)
	}
	if fps <= 0 || math.IsNaN(fps) {
		return nil, fmt.Errorf("resample: invalid fps %v: %w", fps, services.ErrValidation)
	}
	lapRaw, ok := raw.Column(ColLapDistPct)
	if !ok {
		return nil, &MissingColumnError{Column: ColLapDistPct, Path: raw.Path}
	}
	if !raw.HasTime() && frames <= 0 {
		return nil, fmt.Errorf("resample %s: log has no %s column and no frame count was given: %w", raw.Path, ColTime, services.ErrTelemetryContract)
	}

	keep, times := timeAxis(raw, fps, frames)
	if len(keep) == 0 {
		return nil, fmt.Errorf("resample %s: no rows with a valid %s: %w", raw.Path, ColTime, services.ErrTelemetryContract)
	}
	if frames <= 0 {
		frames = int(math.Floor(times[len(times)-1]*fps+timeNudge)) + 1
	}

	lapKept := pick(lapRaw, keep)
	unwrapped, err := Unwrap(lapKept)
	if err != nil {
		return nil, fmt.Errorf("resample %s: %w", raw.Path, err)
	}

	grid := make([]float64, frames)
	for k := range grid {
		grid[k] = float64(k) / fps
	}

	series := &Series{
		Path:     raw.Path,
		FPS:      fps,
		Time:     grid,
		Channels: make(map[string][]float64, len(raw.Values)),
	}

	series.LapDist, err = resampleLinear(times, unwrapped, grid, true)
	if err != nil {
		return nil, fmt.Errorf("resample %s %s: %w", raw.Path, ColLapDistPct, err)
	}
	if err := CheckMonotonic(series.LapDist); err != nil {
		return nil, fmt.Errorf("resample %s: %w", raw.Path, err)
	}

	for name, values := range raw.Values {
		if name == ColTime || name == "" {
			continue
		}
		kept := pick(values, keep)
		var out []float64
		switch {
		case discrete(name):
			out = resampleNearest(times, kept, grid)
		case angular(name):
			out, err = resampleAngle(times, kept, grid)
			if err != nil {
				return nil, fmt.Errorf("resample %s %s: %w", raw.Path, name, err)
			}
		default:
			out, err = resampleLinear(times, kept, grid, false)
			if err != nil {
				return nil, fmt.Errorf("resample %s %s: %w", raw.Path, name, err)
			}
		}
		series.Channels[name] = out
	}

	series.Covered = covered(times, grid, fps)
	return series, nil
}

// timeAxis returns the row indexes that carry a usable time and the matching
// strictly increasing times, rebased so the first kept row is t=0.
func timeAxis(raw *Raw, fps float64, frames int) ([]int, []float64) {
	if tcol, ok := raw.Column(ColTime); ok {
		keep := make([]int, 0, raw.Rows)
		times := make([]float64, 0, raw.Rows)
		for i, t := range tcol {
			if math.IsNaN(t) || math.IsInf(t, 0) {
				continue
			}
			keep = append(keep, i)
			times = append(times, t)
		}
		if len(times) == 0 {
			return nil, nil
		}
		t0 := times[0]
		for i := range times {
			times[i] -= t0
			if i > 0 && times[i] <= times[i-1] {
				times[i] = times[i-1] + timeNudge
			}
		}
		return keep, times
	}

	keep := make([]int, raw.Rows)
	times := make([]float64, raw.Rows)
	span := float64(frames-1) / fps
	for i := range keep {
		keep[i] = i
		if raw.Rows > 1 {
			times[i] = float64(i) * span / float64(raw.Rows-1)
		}
	}
	return keep, times
}

func pick(values []float64, keep []int) []float64 {
	out := make([]float64, len(keep))
	for i, idx := range keep {
		out[i] = values[idx]
	}
	return out
}

// resampleLinear fits a piecewise linear interpolant through the finite
// samples. With clamp the ends are held; without it grid points outside the
// sampled span (by more than half a frame) are NaN.
func resampleLinear(xs, ys, grid []float64, clamp bool) ([]float64, error) {
	fx := make([]float64, 0, len(xs))
	fy := make([]float64, 0, len(ys))
	for i, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		fx = append(fx, xs[i])
		fy = append(fy, y)
	}
	out := make([]float64, len(grid))
	switch len(fx) {
	case 0:
		for k := range out {
			out[k] = math.NaN()
		}
		return out, nil
	case 1:
		for k := range out {
			out[k] = fy[0]
		}
		return out, nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(fx, fy); err != nil {
		return nil, err
	}
	lo, hi := fx[0], fx[len(fx)-1]
	halfStep := halfGridStep(grid)
	for k, x := range grid {
		if !clamp && (x < lo-halfStep || x > hi+halfStep) {
			out[k] = math.NaN()
			continue
		}
		out[k] = pl.Predict(x)
	}
	return out, nil
}

// resampleAngle interpolates the unit vector of an angle so samples either
// side of the +/-pi seam do not sweep through zero.
func resampleAngle(xs, angles, grid []float64) ([]float64, error) {
	cos := make([]float64, len(angles))
	sin := make([]float64, len(angles))
	for i, a := range angles {
		cos[i], sin[i] = math.Cos(a), math.Sin(a)
	}
	c, err := resampleLinear(xs, cos, grid, false)
	if err != nil {
		return nil, err
	}
	s, err := resampleLinear(xs, sin, grid, false)
	if err != nil {
		return nil, err
	}
	for k := range c {
		c[k] = math.Atan2(s[k], c[k])
	}
	return c, nil
}

func resampleNearest(xs, ys, grid []float64) []float64 {
	out := make([]float64, len(grid))
	if len(xs) == 0 {
		for k := range out {
			out[k] = math.NaN()
		}
		return out
	}
	halfStep := halfGridStep(grid)
	lo, hi := xs[0], xs[len(xs)-1]
	for k, x := range grid {
		if x < lo-halfStep || x > hi+halfStep {
			out[k] = math.NaN()
			continue
		}
		j := sort.SearchFloat64s(xs, x)
		switch {
		case j <= 0:
			out[k] = ys[0]
		case j >= len(xs):
			out[k] = ys[len(ys)-1]
		case x-xs[j-1] <= xs[j]-x:
			out[k] = ys[j-1]
		default:
			out[k] = ys[j]
		}
	}
	return out
}

func halfGridStep(grid []float64) float64 {
	if len(grid) < 2 {
		return 0
	}
	return (grid[1] - grid[0]) / 2
}

func covered(times, grid []float64, fps float64) FrameRange {
	if len(times) == 0 || len(grid) == 0 {
		return FrameRange{}
	}
	last := times[len(times)-1]
	end := int(math.Floor(last*fps+0.5)) + 1
	end = min(max(end, 1), len(grid))
	return FrameRange{Start: 0, End: end}
}
