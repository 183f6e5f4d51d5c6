package lapsync

import (
	"math"

	"lapsync/internal/telemetry"
)

// lineTangentSeconds is the half-width of the time window used to estimate
// the primary lap's direction of travel.
const lineTangentSeconds = 0.1

// LineOffsets returns, per primary frame, the signed lateral distance in
// metres from the primary car's position to the secondary car's position at
// the mapped secondary time: positive to the primary car's left. Frames
// without position data on either lap are NaN. ok is false when either lap
// lacks Lat/Lon.
func LineOffsets(primary, secondary *telemetry.Series, m *Mapping) ([]float64, bool) {
	platS, ok1 := primary.Channel(telemetry.ColLat)
	plonS, ok2 := primary.Channel(telemetry.ColLon)
	_, ok3 := secondary.Channel(telemetry.ColLat)
	_, ok4 := secondary.Channel(telemetry.ColLon)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, false
	}

	lat0, lon0 := math.NaN(), math.NaN()
	for i := range platS {
		if !math.IsNaN(platS[i]) && !math.IsNaN(plonS[i]) {
			lat0, lon0 = platS[i], plonS[i]
			break
		}
	}
	out := make([]float64, m.Len())
	if math.IsNaN(lat0) {
		for i := range out {
			out[i] = math.NaN()
		}
		return out, true
	}

	fps := m.FPS
	dt := lineTangentSeconds * fps
	nx, ny := 0.0, 1.0
	for i := range out {
		f := float64(i)
		px, py := projectAt(primary, f, lat0, lon0)
		fs := m.SecondaryTime[i] * fps
		sx, sy := projectAt(secondary, fs, lat0, lon0)

		ax, ay := projectAt(primary, math.Max(0, f-dt), lat0, lon0)
		bx, by := projectAt(primary, math.Min(float64(primary.Len()-1), f+dt), lat0, lon0)
		tx, ty := bx-ax, by-ay
		if norm := math.Hypot(tx, ty); norm > 1e-6 {
			nx, ny = -ty/norm, tx/norm
		}

		d := (sx-px)*nx + (sy-py)*ny
		if math.IsNaN(d) || math.IsInf(d, 0) {
			d = math.NaN()
		}
		out[i] = d
	}
	return out, true
}

func projectAt(s *telemetry.Series, frame, lat0, lon0 float64) (float64, float64) {
	lat := s.At(telemetry.ColLat, frame)
	lon := s.At(telemetry.ColLon, frame)
	return telemetry.Project(lat, lon, lat0, lon0)
}
