package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const samplePayload = `{
  "streams": [
    {"index": 0, "codec_name": "aac", "codec_type": "audio"},
    {"index": 1, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080,
     "pix_fmt": "yuv420p", "r_frame_rate": "60000/1001", "avg_frame_rate": "60000/1001", "nb_frames": "5394"}
  ],
  "format": {"filename": "lap.mp4", "duration": "90.0", "format_name": "mov,mp4"}
}`

func TestParseVideoStream(t *testing.T) {
	result, err := Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	video, ok := result.VideoStream()
	if !ok {
		t.Fatal("expected video stream")
	}
	if video.Width != 1920 || video.Height != 1080 {
		t.Fatalf("unexpected dimensions %dx%d", video.Width, video.Height)
	}
	if math.Abs(video.FrameRate()-59.94) > 0.01 {
		t.Fatalf("unexpected frame rate %v", video.FrameRate())
	}
	if video.FrameCount(result.DurationSeconds()) != 5394 {
		t.Fatalf("unexpected frame count %d", video.FrameCount(result.DurationSeconds()))
	}
	if result.DurationSeconds() != 90 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
}

func TestStreamFallbacks(t *testing.T) {
	s := Stream{RFrameRate: "0/0", AvgFrameRate: "30"}
	if s.FrameRate() != 30 {
		t.Fatalf("expected avg_frame_rate fallback, got %v", s.FrameRate())
	}
	if s.FrameCount(2) != 60 {
		t.Fatalf("expected estimated frame count 60, got %d", s.FrameCount(2))
	}
	if (Stream{RFrameRate: "bad"}).FrameRate() != 0 {
		t.Fatal("expected 0 frame rate for invalid value")
	}
	if (Result{}).DurationSeconds() != 0 {
		t.Fatal("expected 0 duration when unavailable")
	}
}

func TestInspectRunsBinary(t *testing.T) {
	dir := t.TempDir()
	payload := filepath.Join(dir, "payload.json")
	if err := os.WriteFile(payload, []byte(samplePayload), 0o644); err != nil {
		t.Fatal(err)
	}
	stub := filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\ncat " + payload + "\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	result, err := Inspect(context.Background(), stub, "lap.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if _, ok := result.VideoStream(); !ok {
		t.Fatal("expected video stream from stub output")
	}

	failing := filepath.Join(dir, "ffprobe-fail")
	if err := os.WriteFile(failing, []byte("#!/bin/sh\necho 'no such file' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Inspect(context.Background(), failing, "lap.mp4"); err == nil {
		t.Fatal("expected error from failing ffprobe")
	}
	if _, err := Inspect(context.Background(), stub, " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
