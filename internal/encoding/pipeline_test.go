package encoding_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lapsync/internal/encoding"
	"lapsync/internal/services"
	"lapsync/internal/testsupport"
)

const (
	frameW = 16
	frameH = 8
)

// Writes stdin to the last argument unless a codec listed in FAIL_CODECS
// is requested.
const stubEncoder = `for last; do :; done
for codec in $FAIL_CODECS; do
  case " $* " in
    *" $codec "*) echo "No capable devices found for $codec" >&2; exit 1 ;;
  esac
done
cat > "$last"
`

func newPipeline(t *testing.T, ffmpeg, output string) *encoding.Pipeline {
	t.Helper()
	p, err := encoding.NewPipeline(encoding.Options{
		FFmpegBinary:    ffmpeg,
		Width:           frameW,
		Height:          frameH,
		FPS:             30,
		Output:          output,
		StderrTailLines: 5,
		TerminateGrace:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

type countingProducer struct {
	frames int
	calls  int
}

func (c *countingProducer) produce(ctx context.Context, sink encoding.FrameSink) error {
	c.calls++
	img := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
	for i := range c.frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		img.Set(0, 0, color.RGBA{R: uint8(i), A: 255})
		if err := sink.WriteFrame(img); err != nil {
			return err
		}
	}
	return nil
}

func TestSoftwareOnlyProbeCompletes(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FAIL_CODECS", "")
	ffmpeg := testsupport.WriteScript(t, dir, "ffmpeg", stubEncoder)
	output := filepath.Join(dir, "out.mp4")

	cands := encoding.Candidates([]string{"libx264"}, frameW, encoding.SelectOptions{})
	prod := &countingProducer{frames: 30}
	result, err := newPipeline(t, ffmpeg, output).Run(context.Background(), cands, prod.produce)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Encoder.Codec != encoding.SoftwareCodec || result.Frames != 30 {
		t.Fatalf("unexpected result: %+v", result)
	}
	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if want := int64(30 * frameW * frameH * 4); info.Size() != want {
		t.Fatalf("expected %d bytes of raw frames, got %d", want, info.Size())
	}
}

func TestHardwareFailureFallsBackAndRestarts(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FAIL_CODECS", "h264_nvenc hevc_nvenc")
	ffmpeg := testsupport.WriteScript(t, dir, "ffmpeg", stubEncoder)
	output := filepath.Join(dir, "out.mp4")

	cands := encoding.Candidates([]string{"h264_nvenc", "hevc_nvenc", "libx264"}, frameW, encoding.SelectOptions{})
	prod := &countingProducer{frames: 12}
	result, err := newPipeline(t, ffmpeg, output).Run(context.Background(), cands, prod.produce)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Encoder.Codec != encoding.SoftwareCodec {
		t.Fatalf("expected software fallback, got %s", result.Encoder.Codec)
	}
	if prod.calls != 3 {
		t.Fatalf("expected producer to restart for each candidate, got %d calls", prod.calls)
	}
	if result.Frames != 12 {
		t.Fatalf("expected frames counted from zero on the final attempt, got %d", result.Frames)
	}
	if len(result.Failures) != 2 {
		t.Fatalf("expected two recorded failures, got %d", len(result.Failures))
	}
	for _, f := range result.Failures {
		if !errors.Is(f, services.ErrEncoderCandidate) {
			t.Fatalf("failure not tagged as candidate error: %v", f)
		}
	}
}

func TestAllCandidatesFailingIsFatal(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FAIL_CODECS", "h264_nvenc libx264")
	ffmpeg := testsupport.WriteScript(t, dir, "ffmpeg", stubEncoder)
	output := filepath.Join(dir, "out.mp4")

	cands := encoding.Candidates([]string{"h264_nvenc"}, frameW, encoding.SelectOptions{})
	prod := &countingProducer{frames: 3}
	_, err := newPipeline(t, ffmpeg, output).Run(context.Background(), cands, prod.produce)
	var fatal *encoding.FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected FatalError, got %v", err)
	}
	if !errors.Is(err, services.ErrEncodePipeline) {
		t.Fatalf("expected encode pipeline marker, got %v", err)
	}
	if len(fatal.Attempts) != 2 {
		t.Fatalf("expected two attempts, got %d", len(fatal.Attempts))
	}
	if !strings.Contains(fatal.Diagnostic, "libx264") {
		t.Fatalf("expected last stderr in diagnostic, got %q", fatal.Diagnostic)
	}
	if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no output after failure, stat err=%v", err)
	}
}

func TestEmptyOutputIsCandidateFailure(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := testsupport.WriteScript(t, dir, "ffmpeg", "cat > /dev/null\nexit 0\n")
	output := filepath.Join(dir, "out.mp4")

	cands := encoding.Candidates(nil, frameW, encoding.SelectOptions{})
	prod := &countingProducer{frames: 2}
	_, err := newPipeline(t, ffmpeg, output).Run(context.Background(), cands, prod.produce)
	var fatal *encoding.FatalError
	if !errors.As(err, &fatal) || fatal.Attempts[0].Stage != encoding.StageOutput {
		t.Fatalf("expected output-stage failure, got %v", err)
	}
}

func TestProducerErrorIsNotRetried(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FAIL_CODECS", "")
	ffmpeg := testsupport.WriteScript(t, dir, "ffmpeg", stubEncoder)
	output := filepath.Join(dir, "out.mp4")

	decodeErr := errors.New("decoder exited")
	calls := 0
	produce := func(context.Context, encoding.FrameSink) error {
		calls++
		return decodeErr
	}
	cands := encoding.Candidates([]string{"h264_nvenc"}, frameW, encoding.SelectOptions{})
	_, err := newPipeline(t, ffmpeg, output).Run(context.Background(), cands, produce)
	if !errors.Is(err, decodeErr) {
		t.Fatalf("expected producer error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestWrongFrameSizeIsRejected(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FAIL_CODECS", "")
	ffmpeg := testsupport.WriteScript(t, dir, "ffmpeg", stubEncoder)

	produce := func(_ context.Context, sink encoding.FrameSink) error {
		return sink.WriteFrame(image.NewRGBA(image.Rect(0, 0, frameW+2, frameH)))
	}
	_, err := newPipeline(t, ffmpeg, filepath.Join(dir, "out.mp4")).Run(context.Background(), encoding.Candidates(nil, frameW, encoding.SelectOptions{}), produce)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCancellationTerminatesEncoder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FAIL_CODECS", "")
	ffmpeg := testsupport.WriteScript(t, dir, "ffmpeg", stubEncoder)
	output := filepath.Join(dir, "out.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	produce := func(ctx context.Context, sink encoding.FrameSink) error {
		img := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
		for i := 0; ; i++ {
			if i == 5 {
				cancel()
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := sink.WriteFrame(img); err != nil {
				return err
			}
		}
	}
	cands := encoding.Candidates([]string{"h264_nvenc"}, frameW, encoding.SelectOptions{})
	_, err := newPipeline(t, ffmpeg, output).Run(ctx, cands, produce)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected partial output removed, stat err=%v", err)
	}
}

func TestNewPipelineValidatesOptions(t *testing.T) {
	bad := []encoding.Options{
		{Width: 15, Height: 8, FPS: 30, Output: "x.mp4"},
		{Width: 16, Height: 8, FPS: 0, Output: "x.mp4"},
		{Width: 16, Height: 8, FPS: 30},
	}
	for _, opts := range bad {
		if _, err := encoding.NewPipeline(opts); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", opts, err)
		}
	}
}
