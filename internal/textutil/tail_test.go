package textutil_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"lapsync/internal/textutil"
)

func TestLineTailKeepsNewestLines(t *testing.T) {
	tail := textutil.NewLineTail(3)
	for _, chunk := range []string{"one\ntw", "o\n\nthree\r\n", "four\nfi"} {
		if _, err := tail.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if diff := cmp.Diff([]string{"three", "four", "fi"}, tail.Lines()); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if tail.Last() != "fi" {
		t.Fatalf("unexpected last line %q", tail.Last())
	}
	if textutil.NewLineTail(0).String() != "" {
		t.Fatal("expected empty tail")
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := map[string]string{
		"Lap 1 (Spa)": "lap_1__spa",
		"  ":          "unknown",
		"hevc_nvenc":  "hevc_nvenc",
	}
	for in, want := range cases {
		if got := textutil.SanitizeToken(in); got != want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", in, got, want)
		}
	}
	if got := textutil.SanitizeFileName(" a/b:c?.mp4 "); got != "a-b-c.mp4" {
		t.Fatalf("unexpected sanitized file name %q", got)
	}
}
