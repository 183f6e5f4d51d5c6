package encoding_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lapsync/internal/encoding"
	"lapsync/internal/services"
	"lapsync/internal/testsupport"
)

const encodersOutput = `Encoders:
 V..... = Video
 A..... = Audio
 S..... = Subtitle
 .F.... = Frame-level multithreading
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 V....D h264_nvenc           NVIDIA NVENC H.264 encoder (codec h264)
 V....D hevc_nvenc           NVIDIA NVENC hevc encoder (codec hevc)
 V..... h264_vaapi           H.264/AVC (VAAPI) (codec h264)
 A....D aac                  AAC (Advanced Audio Coding)
`

func codecs(cands []encoding.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Codec
	}
	return out
}

func TestParseEncoderList(t *testing.T) {
	got := encoding.ParseEncoderList(encodersOutput)
	want := []string{"libx264", "h264_nvenc", "hevc_nvenc", "h264_vaapi", "aac"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("encoder list mismatch (-want +got):\n%s", diff)
	}
}

func TestCandidatesOrdering(t *testing.T) {
	available := encoding.ParseEncoderList(encodersOutput)
	cases := []struct {
		name  string
		width int
		opts  encoding.SelectOptions
		want  []string
	}{
		{name: "hardware first", width: 1920, want: []string{"h264_nvenc", "hevc_nvenc", "libx264"}},
		{name: "wide frames skip h264 hardware", width: 5120, want: []string{"hevc_nvenc", "libx264"}},
		{name: "hardware disabled", width: 1920, opts: encoding.SelectOptions{DisableHardware: true}, want: []string{"libx264"}},
		{name: "preferred moves first", width: 1920, opts: encoding.SelectOptions{Preferred: "HEVC_NVENC"}, want: []string{"hevc_nvenc", "h264_nvenc", "libx264"}},
		{name: "preferred software", width: 1920, opts: encoding.SelectOptions{Preferred: "libx264"}, want: []string{"libx264", "h264_nvenc", "hevc_nvenc"}},
		{name: "unavailable preference ignored", width: 1920, opts: encoding.SelectOptions{Preferred: "h264_qsv"}, want: []string{"h264_nvenc", "hevc_nvenc", "libx264"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := codecs(encoding.Candidates(available, tc.width, tc.opts))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCandidatesAlwaysEndWithSoftware(t *testing.T) {
	got := encoding.Candidates(nil, 1920, encoding.SelectOptions{})
	if len(got) != 1 || got[0].Codec != encoding.SoftwareCodec || got[0].Hardware {
		t.Fatalf("expected software-only list, got %v", codecs(got))
	}
	got[0].Args[0] = "mutated"
	again := encoding.Candidates(nil, 1920, encoding.SelectOptions{})
	if again[0].Args[0] == "mutated" {
		t.Fatal("candidate args share storage with the catalog")
	}
}

func TestProbeEncoders(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := testsupport.WriteScript(t, dir, "ffmpeg", "cat <<'OUT'\n"+encodersOutput+"OUT\n")
	names, err := encoding.ProbeEncoders(context.Background(), ffmpeg)
	if err != nil {
		t.Fatalf("ProbeEncoders: %v", err)
	}
	if len(names) != 5 || names[0] != "libx264" {
		t.Fatalf("unexpected encoders: %v", names)
	}

	broken := testsupport.WriteScript(t, dir, "ffmpeg-broken", "echo 'boom' >&2\nexit 1\n")
	if _, err := encoding.ProbeEncoders(context.Background(), broken); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if _, err := encoding.ProbeEncoders(context.Background(), filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestParseEncoderListSkipsLegend(t *testing.T) {
	legendOnly := "Encoders:\n V..... = Video\n A..... = Audio\n .F.... = Frame-level multithreading\n ------\n"
	if got := encoding.ParseEncoderList(legendOnly); len(got) != 0 {
		t.Fatalf("expected no encoders from legend, got %v", got)
	}

	noSeparator := " V..... = Video\n V....D libx264              libx264 H.264\n"
	if diff := cmp.Diff([]string{"libx264"}, encoding.ParseEncoderList(noSeparator)); diff != "" {
		t.Fatalf("encoder list mismatch (-want +got):\n%s", diff)
	}
}

func TestProbeEncodersRejectsLegendOnlyListing(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := testsupport.WriteScript(t, dir, "ffmpeg", "cat <<'OUT'\nEncoders:\n V..... = Video\n A..... = Audio\n ------\nOUT\n")
	if _, err := encoding.ProbeEncoders(context.Background(), ffmpeg); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error for empty listing, got %v", err)
	}
}
