package logging

import "strings"

// ProgressSampler thins per-frame progress down to one log line per bucket.
// A new key (encoder attempt) starts a fresh series; the final frame always
// logs.
type ProgressSampler struct {
	bucket float64
	key    string
	next   int
}

// NewProgressSampler returns a sampler emitting every bucket percent
// (default 5).
func NewProgressSampler(bucket float64) *ProgressSampler {
	if bucket <= 0 || bucket > 100 {
		bucket = 5
	}
	return &ProgressSampler{bucket: bucket, next: -1}
}

// ShouldLog reports whether written out of total frames for key deserves a
// log line. A nil sampler logs everything.
func (s *ProgressSampler) ShouldLog(key string, written, total int) bool {
	if s == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key != s.key || s.next < 0 {
		s.key = key
		s.next = 0
	}
	if total <= 0 {
		return false
	}
	if written >= total {
		if s.next > 100 {
			return false
		}
		s.next = 101
		return true
	}
	pct := float64(written) * 100 / float64(total)
	if pct < float64(s.next) {
		return false
	}
	for float64(s.next) <= pct {
		s.next += int(s.bucket)
		if s.bucket < 1 {
			s.next++
		}
	}
	return true
}

// Reset forgets the current series so the next call logs.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.key = ""
	s.next = -1
}
