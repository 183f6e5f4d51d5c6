package hud_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"lapsync/internal/hud"
)

func TestChooseTick(t *testing.T) {
	cases := []struct {
		span float64
		want float64
	}{
		{span: 1.12, want: 0.5},
		{span: 30, want: 10},
		{span: 4, want: 1},
		// 1 and 0.5 both give a valid band count; fewer bands wins.
		{span: 2, want: 1},
		{span: 20, want: 10},
		{span: 250, want: 100},
		// Nothing fits: the closest band count wins.
		{span: 0.6, want: 0.5},
		{span: 1000, want: 100},
		{span: 7, want: 10},
		{span: 0, want: 0.5},
	}
	for _, tc := range cases {
		if got := hud.ChooseTick(tc.span); got != tc.want {
			t.Errorf("ChooseTick(%v) = %v, want %v", tc.span, got, tc.want)
		}
	}
}

func TestTicks(t *testing.T) {
	if diff := cmp.Diff([]float64{-10, 0, 10, 20}, hud.Ticks(-12, 24, 10)); diff != "" {
		t.Fatalf("ticks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0, 0.5, 1}, hud.Ticks(0, 1.12, 0.5)); diff != "" {
		t.Fatalf("ticks mismatch (-want +got):\n%s", diff)
	}
	if got := hud.Ticks(5, 1, 1); got != nil {
		t.Fatalf("expected no ticks for an inverted range, got %v", got)
	}
}
