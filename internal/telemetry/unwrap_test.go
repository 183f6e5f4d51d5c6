package telemetry_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"lapsync/internal/services"
	"lapsync/internal/telemetry"
)

func TestUnwrapSingleWrapIsMonotonic(t *testing.T) {
	raw := []float64{0.95, 0.96, 0.97, 0.98, 0.01, 0.02, 0.03}
	got, err := telemetry.Unwrap(raw)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("unwrapped not monotonic at %d: %v", i, got)
		}
	}
	want := []float64{0.95, 0.96, 0.97, 0.98, 1.01, 1.02, 1.03}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("unwrap mismatch (-want +got):\n%s", diff)
	}
}

func TestUnwrapHoldsNaN(t *testing.T) {
	got, err := telemetry.Unwrap([]float64{math.NaN(), 0.2, math.NaN(), 0.3})
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	want := []float64{0.2, 0.2, 0.2, 0.3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unwrap mismatch (-want +got):\n%s", diff)
	}
}

func TestUnwrapRejectsBackwardsStep(t *testing.T) {
	_, err := telemetry.Unwrap([]float64{0.1, 0.2, 0.15, 0.3})
	var integrity *telemetry.SyncIntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected SyncIntegrityError, got %v", err)
	}
	if integrity.Index != 2 {
		t.Fatalf("expected failure at index 2, got %d", integrity.Index)
	}
	if !errors.Is(err, services.ErrSyncIntegrity) {
		t.Fatalf("expected sync integrity marker, got %v", err)
	}
}
