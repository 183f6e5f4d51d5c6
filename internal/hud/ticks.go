package hud

import "math"

// tickSteps are the gridline spacings considered, largest first.
var tickSteps = []float64{100, 10, 1, 0.5}

const (
	minBands = 2
	maxBands = 5
)

// ChooseTick picks the gridline spacing for a value span so the number of
// bands stays within [2, 5]. When several steps qualify the one with the
// fewest bands wins. When none qualifies the step whose band count is
// closest to the range wins, again preferring fewer bands on a tie.
func ChooseTick(span float64) float64 {
	if span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return tickSteps[len(tickSteps)-1]
	}
	for _, step := range tickSteps {
		bands := span / step
		if bands >= minBands && bands <= maxBands {
			return step
		}
	}
	best := tickSteps[0]
	bestDist := math.Inf(1)
	for _, step := range tickSteps {
		bands := span / step
		dist := 0.0
		switch {
		case bands < minBands:
			dist = minBands - bands
		case bands > maxBands:
			dist = bands - maxBands
		}
		if dist < bestDist {
			best, bestDist = step, dist
		}
	}
	return best
}

// Ticks returns the multiples of step inside [lo, hi].
func Ticks(lo, hi, step float64) []float64 {
	if step <= 0 || hi < lo {
		return nil
	}
	start := math.Ceil(lo/step - 1e-9)
	var out []float64
	for k := start; k*step <= hi+1e-9; k++ {
		v := k * step
		if math.Abs(v) < 1e-12 {
			v = 0
		}
		out = append(out, v)
		if len(out) > 64 {
			break
		}
	}
	return out
}
