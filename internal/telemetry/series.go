package telemetry

import "math"

// Series is a telemetry log resampled onto a uniform per-frame grid. Frame k
// sits at Time[k] = k/FPS. LapDist is the unwrapped lap distance and is
// finite for every frame; other channels are NaN where the log has no data.
type Series struct {
	Path     string
	FPS      float64
	Time     []float64
	LapDist  []float64
	Channels map[string][]float64
	// Covered is the half-open frame range backed by recorded samples.
	Covered FrameRange
}

// FrameRange is a half-open range of frame indexes [Start, End).
type FrameRange struct {
	Start int
	End   int
}

// Len returns the number of frames in the range.
func (r FrameRange) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether frame lies in the range.
func (r FrameRange) Contains(frame int) bool {
	return frame >= r.Start && frame < r.End
}

// Intersect returns the overlap of two ranges.
func (r FrameRange) Intersect(o FrameRange) FrameRange {
	out := FrameRange{Start: max(r.Start, o.Start), End: min(r.End, o.End)}
	if out.End < out.Start {
		out.End = out.Start
	}
	return out
}

// Len returns the number of frames in the series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Time)
}

// Duration returns the time of the last frame.
func (s *Series) Duration() float64 {
	if s.Len() == 0 {
		return 0
	}
	return s.Time[len(s.Time)-1]
}

// Channel returns the per-frame values of a channel.
func (s *Series) Channel(name string) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.Channels[name]
	return v, ok
}

// Value returns a channel value at an integer frame, or NaN.
func (s *Series) Value(name string, frame int) float64 {
	values, ok := s.Channel(name)
	if !ok || frame < 0 || frame >= len(values) {
		return math.NaN()
	}
	return values[frame]
}

// At samples a channel at a fractional frame coordinate. Continuous channels
// are interpolated linearly between neighbouring frames; discrete channels
// take the nearest frame. Coordinates outside the series yield NaN.
func (s *Series) At(name string, frame float64) float64 {
	values, ok := s.Channel(name)
	if !ok {
		return math.NaN()
	}
	switch {
	case discrete(name):
		return SampleNearest(values, frame)
	case angular(name):
		return SampleAngle(values, frame)
	}
	return SampleLinear(values, frame)
}

// AtTime samples a channel at a time in seconds.
func (s *Series) AtTime(name string, t float64) float64 {
	if s == nil || s.FPS <= 0 {
		return math.NaN()
	}
	return s.At(name, t*s.FPS)
}

// SampleLinear interpolates values at a fractional index. Indexes outside
// [0, len-1] yield NaN.
func SampleLinear(values []float64, x float64) float64 {
	n := len(values)
	if n == 0 || math.IsNaN(x) || x < 0 || x > float64(n-1) {
		return math.NaN()
	}
	i := int(math.Floor(x))
	if i >= n-1 {
		return values[n-1]
	}
	frac := x - float64(i)
	if frac == 0 {
		return values[i]
	}
	return values[i] + (values[i+1]-values[i])*frac
}

// SampleAngle interpolates radians at a fractional index along the shorter
// arc. The result is wrapped to (-pi, pi].
func SampleAngle(values []float64, x float64) float64 {
	n := len(values)
	if n == 0 || math.IsNaN(x) || x < 0 || x > float64(n-1) {
		return math.NaN()
	}
	i := int(math.Floor(x))
	if i >= n-1 {
		return WrapAngle(values[n-1])
	}
	frac := x - float64(i)
	if frac == 0 {
		return WrapAngle(values[i])
	}
	return WrapAngle(values[i] + WrapAngle(values[i+1]-values[i])*frac)
}

// WrapAngle maps radians onto (-pi, pi]. NaN stays NaN.
func WrapAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return math.NaN()
	}
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// SampleNearest returns the value at the nearest index, or NaN outside [0, len-1].
func SampleNearest(values []float64, x float64) float64 {
	n := len(values)
	if n == 0 || math.IsNaN(x) || x < -0.5 || x > float64(n-1)+0.5 {
		return math.NaN()
	}
	i := int(math.Round(x))
	i = min(max(i, 0), n-1)
	return values[i]
}
