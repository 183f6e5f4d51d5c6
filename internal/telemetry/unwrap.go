package telemetry

import "math"

// wrapDrop is the fall in raw lap distance that counts as crossing the line.
const wrapDrop = 0.5

// Unwrap converts wrapping lap distance (0..1 per lap) into a continuously
// increasing value: a wrap counter increments whenever the raw value drops by
// more than 0.5 between consecutive samples and is added to every later
// sample. NaN samples hold the previous value. Any remaining decrease fails
// with *SyncIntegrityError.
func Unwrap(raw []float64) ([]float64, error) {
	out := make([]float64, len(raw))
	if len(raw) == 0 {
		return out, nil
	}

	first := math.NaN()
	for _, v := range raw {
		if !math.IsNaN(v) {
			first = v
			break
		}
	}
	if math.IsNaN(first) {
		return out, nil
	}

	wraps := 0.0
	prevRaw := first
	prevOut := first
	for i, v := range raw {
		if math.IsNaN(v) {
			out[i] = prevOut
			continue
		}
		if v < prevRaw-wrapDrop {
			wraps++
		}
		u := v + wraps
		if i > 0 && u < prevOut {
			return nil, &SyncIntegrityError{Index: i, Previous: prevOut, Value: u}
		}
		out[i] = u
		prevRaw = v
		prevOut = u
	}
	return out, nil
}

// CheckMonotonic fails with *SyncIntegrityError at the first decrease.
func CheckMonotonic(values []float64) error {
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return &SyncIntegrityError{Index: i, Previous: values[i-1], Value: values[i]}
		}
	}
	return nil
}
