package lapsync

import (
	"fmt"
	"math"

	"lapsync/internal/services"
	"lapsync/internal/telemetry"
)

// TimeRange is an optional restriction in primary-lap seconds, typically
// supplied by a cut detector. A zero End means "to the end".
type TimeRange struct {
	Start float64
	End   float64
}

// IsZero reports whether the range restricts nothing.
func (r TimeRange) IsZero() bool {
	return r.Start == 0 && r.End == 0
}

// Restrict converts a time range into primary frames and intersects it with
// the common range. An empty result is a configuration error.
func (m *Mapping) Restrict(r TimeRange) (telemetry.FrameRange, error) {
	common := m.CommonRange()
	if r.IsZero() {
		return common, nil
	}
	if r.Start < 0 || (r.End != 0 && r.End <= r.Start) {
		return telemetry.FrameRange{}, fmt.Errorf("lapsync: invalid range %.3f..%.3f: %w", r.Start, r.End, services.ErrConfiguration)
	}
	want := telemetry.FrameRange{
		Start: int(math.Ceil(r.Start*m.FPS - 1e-9)),
		End:   m.Len(),
	}
	if r.End != 0 {
		want.End = int(math.Floor(r.End*m.FPS+1e-9)) + 1
	}
	out := common.Intersect(want)
	if out.Len() == 0 {
		return telemetry.FrameRange{}, fmt.Errorf("lapsync: range %.3f..%.3f s has no frames shared by both laps: %w", r.Start, r.End, services.ErrConfiguration)
	}
	return out, nil
}
