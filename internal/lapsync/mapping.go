package lapsync

import (
	"fmt"
	"math"

	"lapsync/internal/services"
	"lapsync/internal/telemetry"
)

// Pair is the mapping entry for one primary frame.
type Pair struct {
	PrimaryIndex   int
	SecondaryIndex int
	PrimaryTime    float64
	SecondaryTime  float64
}

// Mapping is the per-frame primary to secondary lookup table. It is built
// once and never mutated, so it can be shared without locking.
type Mapping struct {
	FPS            float64
	PrimaryIndex   []int
	SecondaryIndex []int
	PrimaryTime    []float64
	SecondaryTime  []float64
	PrimaryLapDist []float64

	secondaryFrames int
	common          telemetry.FrameRange
}

// Build maps every primary frame to the secondary lap. For each primary frame
// the secondary position is located by lap distance with a pointer that only
// moves forward, so the whole table costs O(primary + secondary). Secondary
// time is interpolated between the two bracketing secondary frames and
// clamped to the recorded range.
func Build(primary, secondary *telemetry.Series) (*Mapping, error) {
	if primary.Len() == 0 || secondary.Len() == 0 {
		return nil, fmt.Errorf("lapsync: empty series: %w", services.ErrTelemetryContract)
	}
	if primary.FPS <= 0 || primary.FPS != secondary.FPS {
		return nil, fmt.Errorf("lapsync: series frame rates differ (%v vs %v): %w", primary.FPS, secondary.FPS, services.ErrValidation)
	}
	if err := telemetry.CheckMonotonic(primary.LapDist); err != nil {
		return nil, fmt.Errorf("lapsync primary: %w", err)
	}
	if err := telemetry.CheckMonotonic(secondary.LapDist); err != nil {
		return nil, fmt.Errorf("lapsync secondary: %w", err)
	}

	n := primary.Len()
	fps := primary.FPS
	sd := secondary.LapDist
	st := secondary.Time
	last := len(sd) - 1

	m := &Mapping{
		FPS:             fps,
		PrimaryIndex:    make([]int, n),
		SecondaryIndex:  make([]int, n),
		PrimaryTime:     make([]float64, n),
		SecondaryTime:   make([]float64, n),
		PrimaryLapDist:  append([]float64(nil), primary.LapDist...),
		secondaryFrames: len(sd),
	}

	j := 0
	for i := 0; i < n; i++ {
		target := primary.LapDist[i]
		for j < last-1 && sd[j+1] <= target {
			j++
		}

		var ts float64
		switch {
		case last == 0 || target <= sd[0]:
			ts = st[0]
		case target >= sd[last]:
			ts = st[last]
		default:
			lo, hi := j, min(j+1, last)
			den := sd[hi] - sd[lo]
			frac := 0.0
			if den > 0 {
				frac = math.Min(1, math.Max(0, (target-sd[lo])/den))
			}
			ts = st[lo] + frac*(st[hi]-st[lo])
		}

		m.PrimaryIndex[i] = i
		m.PrimaryTime[i] = primary.Time[i]
		m.SecondaryTime[i] = ts
		m.SecondaryIndex[i] = min(max(int(math.Round(ts*fps)), 0), last)
	}

	m.common = commonRange(primary, secondary)
	if m.common.Len() == 0 {
		return nil, fmt.Errorf("lapsync: laps share no lap distance range (primary %.3f..%.3f, secondary %.3f..%.3f): %w",
			primary.LapDist[0], primary.LapDist[n-1], sd[0], sd[last], services.ErrSyncIntegrity)
	}
	return m, nil
}

// commonRange returns the primary frames that are backed by primary
// telemetry and whose lap distance lies inside the secondary's recorded lap
// distance. Both conditions are contiguous because lap distance is monotonic.
func commonRange(primary, secondary *telemetry.Series) telemetry.FrameRange {
	lo := secondary.LapDist[0]
	hi := secondary.LapDist[secondary.Len()-1]
	covered := primary.Covered
	if covered.Len() == 0 {
		covered = telemetry.FrameRange{Start: 0, End: primary.Len()}
	}
	start, end := -1, -1
	for i := covered.Start; i < covered.End; i++ {
		d := primary.LapDist[i]
		if d < lo || d > hi {
			if start >= 0 {
				break
			}
			continue
		}
		if start < 0 {
			start = i
		}
		end = i + 1
	}
	if start < 0 {
		return telemetry.FrameRange{}
	}
	return telemetry.FrameRange{Start: start, End: end}
}

// Len returns the number of primary frames in the mapping.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.PrimaryIndex)
}

// SecondaryFrames returns the number of frames in the secondary lap.
func (m *Mapping) SecondaryFrames() int { return m.secondaryFrames }

// CommonRange returns the primary frames for which both laps have data.
func (m *Mapping) CommonRange() telemetry.FrameRange { return m.common }

// At returns the entry for primary frame i, clamped to the table.
func (m *Mapping) At(i int) Pair {
	i = min(max(i, 0), m.Len()-1)
	return Pair{
		PrimaryIndex:   m.PrimaryIndex[i],
		SecondaryIndex: m.SecondaryIndex[i],
		PrimaryTime:    m.PrimaryTime[i],
		SecondaryTime:  m.SecondaryTime[i],
	}
}

// SecondaryAt returns the secondary frame index paired with primary frame i.
func (m *Mapping) SecondaryAt(i int) int {
	return m.At(i).SecondaryIndex
}

// SecondaryTimeAt interpolates the secondary time at a fractional primary
// frame coordinate. Coordinates outside the table yield NaN.
func (m *Mapping) SecondaryTimeAt(frame float64) float64 {
	return telemetry.SampleLinear(m.SecondaryTime, frame)
}

// DeltaAt returns primary time minus secondary time at a fractional primary
// frame coordinate: positive when the primary lap is behind.
func (m *Mapping) DeltaAt(frame float64) float64 {
	ts := m.SecondaryTimeAt(frame)
	if math.IsNaN(ts) {
		return math.NaN()
	}
	return frame/m.FPS - ts
}
