package telemetry

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Speed unit conversion factors from m/s.
const (
	MPSToKMH = 3.6
	MPSToMPH = 2.2369362920544
)

// MinSpeedLookSeconds is how far before and after a local minimum the
// surrounding maximum is searched.
const MinSpeedLookSeconds = 5.0

// MinSpeed derives the "last corner minimum" display channel from per-frame
// speed. A frame is a minimum event when it is a local minimum and the
// maximum speed within MinSpeedLookSeconds on both sides is at least
// threshold above it. The output holds the speed of the latest event; frames
// before the first event hold the first speed sample.
func MinSpeed(speed []float64, fps, threshold float64) []float64 {
	n := len(speed)
	if n == 0 {
		return nil
	}
	look := max(1, int(math.Round(MinSpeedLookSeconds*max(1, fps))))

	out := make([]float64, n)
	current := speed[0]
	for i := 0; i < n; i++ {
		if i > 0 && i < n-1 {
			v := speed[i]
			if !math.IsNaN(v) && v <= speed[i-1] && v <= speed[i+1] {
				lo := max(0, i-look)
				hi := min(n-1, i+look)
				before := floats.Max(speed[lo:i])
				after := floats.Max(speed[i+1 : hi+1])
				if before >= v+threshold && after >= v+threshold {
					current = v
				}
			}
		}
		out[i] = current
	}
	return out
}

// earthRadius is the WGS84 equatorial radius in metres.
const earthRadius = 6378137.0

// Project converts latitude/longitude in degrees to local metres using an
// equirectangular projection around (lat0, lon0).
func Project(lat, lon, lat0, lon0 float64) (x, y float64) {
	rad := math.Pi / 180
	x = (lon - lon0) * rad * math.Cos(lat0*rad) * earthRadius
	y = (lat - lat0) * rad * earthRadius
	return x, y
}
