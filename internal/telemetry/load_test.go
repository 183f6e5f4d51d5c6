package telemetry_test

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"lapsync/internal/config"
	"lapsync/internal/services"
	"lapsync/internal/telemetry"
	"lapsync/internal/testsupport"
)

func TestLoadMissingBrakeNamesColumn(t *testing.T) {
	csv := "Time_s,LapDistPct,Speed,Throttle\n0,0,10,1\n0.1,0.01,11,1\n"
	_, err := telemetry.Parse(strings.NewReader(csv), "slow.csv", config.DefaultRequiredColumns)
	if err == nil {
		t.Fatal("expected contract error")
	}
	var missing *telemetry.MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnError, got %T: %v", err, err)
	}
	if missing.Column != "Brake" {
		t.Fatalf("expected Brake to be named, got %q", missing.Column)
	}
	if !errors.Is(err, services.ErrTelemetryContract) {
		t.Fatalf("expected telemetry contract marker, got %v", err)
	}
	if !strings.Contains(err.Error(), `"Brake"`) {
		t.Fatalf("error should name the column: %v", err)
	}
}

func TestParseColumnTypes(t *testing.T) {
	csv := "\ufeffTime_s, LapDistPct,Speed,Throttle,Brake,Gear,ABSActive\n" +
		"0,0.5,40,1,0,3,true\n" +
		"0.5,0.6,,0.5,0.2,4.0,no\n" +
		"\n" +
		"1.0,0.7,abc,0,1,N,maybe\n"
	raw, err := telemetry.Parse(strings.NewReader(csv), "mixed.csv", config.DefaultRequiredColumns)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if raw.Rows != 3 {
		t.Fatalf("expected blank line skipped, got %d rows", raw.Rows)
	}
	if !raw.HasTime() {
		t.Fatal("expected Time_s to be detected")
	}
	speed, _ := raw.Column("Speed")
	if speed[0] != 40 || !math.IsNaN(speed[1]) || !math.IsNaN(speed[2]) {
		t.Fatalf("unexpected speed values %v", speed)
	}
	gear, _ := raw.Column("Gear")
	if gear[0] != 3 || gear[1] != 4 || !math.IsNaN(gear[2]) {
		t.Fatalf("unexpected gear values %v", gear)
	}
	abs, _ := raw.Column("ABSActive")
	if abs[0] != 1 || abs[1] != 0 || !math.IsNaN(abs[2]) {
		t.Fatalf("unexpected ABSActive values %v", abs)
	}
}

func TestParseRejectsEmptyAndMalformed(t *testing.T) {
	if _, err := telemetry.Parse(strings.NewReader(""), "empty.csv", nil); !errors.Is(err, services.ErrTelemetryContract) {
		t.Fatalf("expected contract error for empty file, got %v", err)
	}
	if _, err := telemetry.Parse(strings.NewReader("LapDistPct,Speed\n"), "header.csv", nil); !errors.Is(err, services.ErrTelemetryContract) {
		t.Fatalf("expected contract error for header-only file, got %v", err)
	}

	csv := "LapDistPct,Speed,Throttle,Brake\n0,1,1,x\n0.1,1,1,\n"
	_, err := telemetry.Parse(strings.NewReader(csv), "bad.csv", config.DefaultRequiredColumns)
	var missing *telemetry.MissingColumnError
	if !errors.As(err, &missing) || !missing.Malformed || missing.Column != "Brake" {
		t.Fatalf("expected malformed Brake error, got %v", err)
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := testsupport.WriteLapCSV(t, t.TempDir(), "lap.csv", testsupport.LapCSV{Duration: 2, Rate: 10})
	raw, err := telemetry.Load(path, config.DefaultRequiredColumns)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if raw.Rows != 21 {
		t.Fatalf("expected 21 rows, got %d", raw.Rows)
	}
	if _, err := telemetry.Load(filepath.Join(t.TempDir(), "missing.csv"), nil); !errors.Is(err, services.ErrTelemetryContract) {
		t.Fatalf("expected contract error for missing file, got %v", err)
	}
}
