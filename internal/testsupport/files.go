package testsupport

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// LapCSV describes a synthetic lap used to build telemetry fixtures.
type LapCSV struct {
	Duration float64
	Rate     float64
	// Speed returns the speed in m/s at time t; nil yields a constant 40 m/s.
	Speed func(t float64) float64
	// OmitTime drops the Time_s column.
	OmitTime bool
	// Extra columns are written with a constant value.
	Extra map[string]string
	// Omit drops the named columns from the header and every row.
	Omit []string
}

// WriteLapCSV writes a telemetry CSV covering LapDistPct 0..1 at a fixed
// sample rate and returns its path.
func WriteLapCSV(t testing.TB, dir, name string, lap LapCSV) string {
	t.Helper()

	if lap.Rate <= 0 {
		lap.Rate = 60
	}
	if lap.Speed == nil {
		lap.Speed = func(float64) float64 { return 40 }
	}
	header := []string{"LapDistPct", "Speed", "Throttle", "Brake", "SteeringWheelAngle", "Gear", "RPM", "Lat", "Lon"}
	if !lap.OmitTime {
		header = append([]string{"Time_s"}, header...)
	}
	extraKeys := make([]string, 0, len(lap.Extra))
	for k := range lap.Extra {
		extraKeys = append(extraKeys, k)
	}
	header = append(header, extraKeys...)

	drop := make([]bool, len(header))
	for i, name := range header {
		for _, omit := range lap.Omit {
			drop[i] = drop[i] || name == omit
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(keep(header, drop), ","))
	b.WriteByte('\n')
	n := int(math.Round(lap.Duration*lap.Rate)) + 1
	for i := 0; i < n; i++ {
		tm := float64(i) / lap.Rate
		pct := tm / lap.Duration
		if pct > 1 {
			pct = 1
		}
		row := []string{
			fmt.Sprintf("%.6f", pct),
			fmt.Sprintf("%.3f", lap.Speed(tm)),
			fmt.Sprintf("%.3f", 0.5+0.5*math.Sin(tm)),
			fmt.Sprintf("%.3f", 0.5-0.5*math.Sin(tm)),
			fmt.Sprintf("%.3f", 0.3*math.Sin(tm/2)),
			fmt.Sprintf("%d", 3+i%3),
			fmt.Sprintf("%.0f", 6000+1000*math.Sin(tm)),
			fmt.Sprintf("%.7f", 50.0+0.001*math.Cos(2*math.Pi*pct)),
			fmt.Sprintf("%.7f", 6.0+0.001*math.Sin(2*math.Pi*pct)),
		}
		if !lap.OmitTime {
			row = append([]string{fmt.Sprintf("%.4f", tm)}, row...)
		}
		for _, k := range extraKeys {
			row = append(row, lap.Extra[k])
		}
		b.WriteString(strings.Join(keep(row, drop), ","))
		b.WriteByte('\n')
	}

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func keep(values []string, drop []bool) []string {
	out := make([]string, 0, len(values))
	for i, v := range values {
		if !drop[i] {
			out = append(out, v)
		}
	}
	return out
}
