package logging

import (
	"slices"
	"testing"
)

func TestNewProgressSamplerDefaults(t *testing.T) {
	for _, bucket := range []float64{0, -3, 250} {
		if s := NewProgressSampler(bucket); s.bucket != 5 {
			t.Errorf("NewProgressSampler(%v).bucket = %v, want 5", bucket, s.bucket)
		}
	}
	if s := NewProgressSampler(25); s.bucket != 25 {
		t.Errorf("bucket = %v, want 25", s.bucket)
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog("libx264", 1, 10) {
		t.Fatal("nil sampler should always log")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	var logged []int
	for written := 1; written <= 200; written++ {
		if s.ShouldLog("libx264", written, 200) {
			logged = append(logged, written)
		}
	}
	want := []int{1, 50, 100, 150, 200}
	if !slices.Equal(logged, want) {
		t.Fatalf("logged %v, want %v", logged, want)
	}
	if s.ShouldLog("libx264", 200, 200) {
		t.Fatal("final frame should log once")
	}
}

func TestProgressSamplerNewKeyRestartsSeries(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog("h264_nvenc", 1, 100)
	s.ShouldLog("h264_nvenc", 60, 100)
	if !s.ShouldLog("libx264", 1, 100) {
		t.Fatal("fallback encoder should log its first frame")
	}
	if s.ShouldLog("libx264", 5, 100) {
		t.Fatal("frame inside the first bucket should be suppressed")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog("libx264", 1, 100)
	s.Reset()
	if !s.ShouldLog("libx264", 2, 100) {
		t.Fatal("expected log after reset")
	}
}

func TestProgressSamplerUnknownTotal(t *testing.T) {
	s := NewProgressSampler(10)
	if s.ShouldLog("libx264", 3, 0) {
		t.Fatal("unknown total should not log")
	}
}
