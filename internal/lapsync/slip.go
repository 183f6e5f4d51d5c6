package lapsync

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"lapsync/internal/telemetry"
)

const (
	// slipHeadingSeconds is the half-width of the window used to estimate the
	// direction of travel from GPS positions.
	slipHeadingSeconds = 0.15
	// slipMinTravel is the displacement in metres below which the previous
	// heading is held (car stationary or positions frozen).
	slipMinTravel = 0.05
	// slipMaxStep caps a single-frame jump; larger steps are treated as
	// telemetry glitches and contribute nothing to the unwrapped angle.
	slipMaxStep = 1.2
	// slipLimitQuantile sets the symmetric display range.
	slipLimitQuantile = 0.99
	// slipMinLimit is used when both laps are essentially free of slip.
	slipMinLimit = 0.05
)

// Slip is the under/oversteer proxy of both laps: the angle in radians
// between where the car points (Yaw) and where it travels (GPS track),
// with each lap's median removed. Values are per primary frame, the
// secondary lap sampled at the mapped secondary time, and clamped to
// +/-Limit. Frames without yaw or position data are NaN.
type Slip struct {
	Primary   []float64
	Secondary []float64
	Limit     float64
}

// SlipAngles derives the slip proxy for both laps. ok is false when either
// lap lacks Yaw, Lat or Lon.
func SlipAngles(primary, secondary *telemetry.Series, m *Mapping) (Slip, bool) {
	for _, s := range []*telemetry.Series{primary, secondary} {
		for _, col := range []string{telemetry.ColYaw, telemetry.ColLat, telemetry.ColLon} {
			if _, ok := s.Channel(col); !ok {
				return Slip{}, false
			}
		}
	}
	lat0, lon0, ok := firstPosition(primary)
	if !ok {
		return Slip{}, false
	}

	n := m.Len()
	primaryCoords := make([]float64, n)
	secondaryCoords := make([]float64, n)
	for i := range n {
		primaryCoords[i] = float64(i)
		secondaryCoords[i] = m.SecondaryTime[i] * m.FPS
	}

	out := Slip{
		Primary:   slipSeries(primary, primaryCoords, lat0, lon0),
		Secondary: slipSeries(secondary, secondaryCoords, lat0, lon0),
	}
	out.Limit = slipLimit(out.Primary, out.Secondary)
	for _, values := range [][]float64{out.Primary, out.Secondary} {
		for i, v := range values {
			if !math.IsNaN(v) {
				values[i] = math.Max(-out.Limit, math.Min(out.Limit, v))
			}
		}
	}
	return out, true
}

func firstPosition(s *telemetry.Series) (lat, lon float64, ok bool) {
	lats, _ := s.Channel(telemetry.ColLat)
	lons, _ := s.Channel(telemetry.ColLon)
	for i := range min(len(lats), len(lons)) {
		if !math.IsNaN(lats[i]) && !math.IsNaN(lons[i]) {
			return lats[i], lons[i], true
		}
	}
	return 0, 0, false
}

// slipSeries evaluates yaw minus track heading at each frame coordinate of
// s, unwraps it over time and removes the median bias.
func slipSeries(s *telemetry.Series, coords []float64, lat0, lon0 float64) []float64 {
	headings := trackHeadings(s, coords, lat0, lon0)
	out := make([]float64, len(coords))
	prev, running := math.NaN(), 0.0
	for i, f := range coords {
		wrapped := telemetry.WrapAngle(s.At(telemetry.ColYaw, f) - headings[i])
		if math.IsNaN(wrapped) {
			out[i] = math.NaN()
			continue
		}
		if math.IsNaN(prev) {
			running = wrapped
		} else if step := telemetry.WrapAngle(wrapped - prev); math.Abs(step) <= slipMaxStep {
			running += step
		}
		prev = wrapped
		out[i] = running
	}

	finite := finiteSorted(out)
	if len(finite) == 0 {
		return out
	}
	bias := stat.Quantile(0.5, stat.LinInterp, finite, nil)
	for i := range out {
		out[i] -= bias
	}
	return out
}

// trackHeadings returns the direction of travel at each coordinate. While
// the car moves less than slipMinTravel across the window the previous
// heading is held; frames before the first movement take the first heading.
func trackHeadings(s *telemetry.Series, coords []float64, lat0, lon0 float64) []float64 {
	half := slipHeadingSeconds * s.FPS
	last := float64(s.Len() - 1)
	out := make([]float64, len(coords))
	heading, first := math.NaN(), -1
	for i, f := range coords {
		ax, ay := projectAt(s, math.Max(0, f-half), lat0, lon0)
		bx, by := projectAt(s, math.Min(last, f+half), lat0, lon0)
		if d := math.Hypot(bx-ax, by-ay); d >= slipMinTravel {
			heading = math.Atan2(by-ay, bx-ax)
			if first < 0 {
				first = i
			}
		}
		out[i] = heading
	}
	for i := range max(first, 0) {
		out[i] = out[first]
	}
	return out
}

func slipLimit(series ...[]float64) float64 {
	var abs []float64
	for _, values := range series {
		for _, v := range values {
			if !math.IsNaN(v) {
				abs = append(abs, math.Abs(v))
			}
		}
	}
	if len(abs) == 0 {
		return slipMinLimit
	}
	slices.Sort(abs)
	limit := stat.Quantile(slipLimitQuantile, stat.LinInterp, abs, nil)
	if limit < 1e-6 {
		return slipMinLimit
	}
	return limit
}

func finiteSorted(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}
