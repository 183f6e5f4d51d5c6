package lapsync_test

import (
	"math"
	"testing"

	"lapsync/internal/lapsync"
	"lapsync/internal/telemetry"
)

func TestLineOffsetsSignedToTheLeft(t *testing.T) {
	const n = 50
	lap := make([]float64, n)
	pLat := make([]float64, n)
	pLon := make([]float64, n)
	sLat := make([]float64, n)
	sLon := make([]float64, n)
	for i := 0; i < n; i++ {
		lap[i] = float64(i) / n
		// Driving due north; the secondary car is 1e-5 degrees west (to the left).
		pLat[i] = 50 + float64(i)*1e-5
		pLon[i] = 8
		sLat[i] = pLat[i]
		sLon[i] = 8 - 1e-5
	}
	primary := seriesFromLapDist(10, lap)
	primary.Channels[telemetry.ColLat] = pLat
	primary.Channels[telemetry.ColLon] = pLon
	secondary := seriesFromLapDist(10, append([]float64(nil), lap...))
	secondary.Channels[telemetry.ColLat] = sLat
	secondary.Channels[telemetry.ColLon] = sLon

	m, err := lapsync.Build(primary, secondary)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	offsets, ok := lapsync.LineOffsets(primary, secondary, m)
	if !ok {
		t.Fatal("expected offsets when both laps carry positions")
	}
	want := 1e-5 * math.Pi / 180 * math.Cos(50*math.Pi/180) * 6378137.0
	for _, i := range []int{5, 25, 45} {
		if math.Abs(offsets[i]-want) > 0.01 {
			t.Fatalf("offset[%d] = %v, want about %v", i, offsets[i], want)
		}
	}

	delete(secondary.Channels, telemetry.ColLon)
	if _, ok := lapsync.LineOffsets(primary, secondary, m); ok {
		t.Fatal("expected ok=false without secondary longitude")
	}
}
