package encoding

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"lapsync/internal/logging"
	"lapsync/internal/services"
	"lapsync/internal/textutil"
)

const (
	defaultTailLines = 40
	defaultGrace     = 5 * time.Second
)

// Options configures a Pipeline.
type Options struct {
	FFmpegBinary    string
	Width           int
	Height          int
	FPS             float64
	Output          string
	StderrTailLines int
	TerminateGrace  time.Duration
	Logger          *slog.Logger
}

// FrameSink accepts composited frames in presentation order.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
	// Codec names the encoder consuming the frames.
	Codec() string
}

// ProduceFunc writes every output frame, starting at frame 0, into sink.
// It is called once per candidate attempt.
type ProduceFunc func(ctx context.Context, sink FrameSink) error

// Result describes a successful encode.
type Result struct {
	Encoder  Candidate
	Frames   int
	Failures []*CandidateError
}

// Pipeline runs the candidate fallback loop for one output file.
type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

// NewPipeline validates options and returns a pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.FFmpegBinary == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.Width%2 != 0 || opts.Height%2 != 0 {
		return nil, services.Wrap(services.ErrValidation, "encoding", "new pipeline", fmt.Sprintf("frame size %dx%d must be positive and even", opts.Width, opts.Height), nil)
	}
	if opts.FPS <= 0 {
		return nil, services.Wrap(services.ErrValidation, "encoding", "new pipeline", "fps must be positive", nil)
	}
	if opts.Output == "" {
		return nil, services.Wrap(services.ErrValidation, "encoding", "new pipeline", "output path is required", nil)
	}
	if opts.StderrTailLines <= 0 {
		opts.StderrTailLines = defaultTailLines
	}
	if opts.TerminateGrace <= 0 {
		opts.TerminateGrace = defaultGrace
	}
	return &Pipeline{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "encoder"),
	}, nil
}

// Run tries each candidate in order until one produces a complete output.
// The output file is removed after every failed attempt and on
// cancellation, in which case the context error is returned.
func (p *Pipeline) Run(ctx context.Context, candidates []Candidate, produce ProduceFunc) (Result, error) {
	if len(candidates) == 0 {
		return Result{}, services.Wrap(services.ErrConfiguration, "encoding", "run", "no encoder candidates", nil)
	}
	var result Result
	var diagnostic string
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		p.logger.Debug("starting encoder",
			logging.String(logging.FieldEncoder, candidate.Codec),
			logging.Bool("hardware", candidate.Hardware),
			logging.Int("attempt", i+1),
			logging.Int("candidates", len(candidates)),
		)
		frames, tail, err := p.attempt(ctx, candidate, produce)
		if err == nil {
			result.Encoder = candidate
			result.Frames = frames
			p.logger.Info("encode complete",
				logging.String(logging.FieldEncoder, candidate.Codec),
				logging.Int("frames", frames),
				logging.String(logging.FieldEventType, "encode_complete"),
			)
			return result, nil
		}
		p.removeOutput()

		var candErr *CandidateError
		if !errors.As(err, &candErr) {
			return result, err
		}
		result.Failures = append(result.Failures, candErr)
		diagnostic = tail
		p.logger.Debug("encoder candidate failed",
			logging.String(logging.FieldEncoder, candidate.Codec),
			logging.String("stage", candErr.Stage),
			logging.Error(candErr.Err),
			logging.String("stderr", lastLine(tail)),
		)
	}
	return result, &FatalError{Attempts: result.Failures, Diagnostic: diagnostic}
}

func (p *Pipeline) attempt(ctx context.Context, candidate Candidate, produce ProduceFunc) (int, string, error) {
	p.removeOutput()

	tail := textutil.NewLineTail(p.opts.StderrTailLines)
	cmd := exec.Command(p.opts.FFmpegBinary, p.args(candidate)...) //nolint:gosec
	cmd.Stderr = tail
	cmd.WaitDelay = p.opts.TerminateGrace
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return 0, "", &CandidateError{Codec: candidate.Codec, Stage: StageStart, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return 0, "", &CandidateError{Codec: candidate.Codec, Stage: StageStart, Err: err}
	}

	exited := make(chan struct{})
	var watcher sync.WaitGroup
	watcher.Add(1)
	go func() {
		defer watcher.Done()
		select {
		case <-ctx.Done():
			terminate(cmd.Process, p.opts.TerminateGrace, exited)
		case <-exited:
		}
	}()

	sink := &pipeSink{w: stdin, codec: candidate.Codec, width: p.opts.Width, height: p.opts.Height}
	produceErr := produce(ctx, sink)
	closeErr := stdin.Close()
	waitErr := cmd.Wait()
	close(exited)
	watcher.Wait()

	stderr := tail.String()
	if err := ctx.Err(); err != nil {
		return sink.frames, stderr, err
	}

	var writeErr *sinkWriteError
	switch {
	case errors.As(produceErr, &writeErr):
		return sink.frames, stderr, &CandidateError{Codec: candidate.Codec, Stage: StageWrite, Err: writeErr.err, Stderr: stderr}
	case produceErr != nil:
		return sink.frames, stderr, produceErr
	case waitErr != nil:
		return sink.frames, stderr, &CandidateError{Codec: candidate.Codec, Stage: StageExit, Err: waitErr, Stderr: stderr}
	case closeErr != nil && !errors.Is(closeErr, os.ErrClosed):
		return sink.frames, stderr, &CandidateError{Codec: candidate.Codec, Stage: StageWrite, Err: closeErr, Stderr: stderr}
	}

	info, err := os.Stat(p.opts.Output)
	if err != nil || info.Size() == 0 {
		if err == nil {
			err = errors.New("encoder produced an empty file")
		}
		return sink.frames, stderr, &CandidateError{Codec: candidate.Codec, Stage: StageOutput, Err: err, Stderr: stderr}
	}
	return sink.frames, stderr, nil
}

func (p *Pipeline) args(candidate Candidate) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-nostdin", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", p.opts.Width, p.opts.Height),
		"-r", strconv.FormatFloat(p.opts.FPS, 'f', -1, 64),
		"-i", "pipe:0",
		"-an",
		"-c:v", candidate.Codec,
	}
	args = append(args, candidate.Args...)
	return append(args, "-pix_fmt", "yuv420p", p.opts.Output)
}

func (p *Pipeline) removeOutput() {
	if err := os.Remove(p.opts.Output); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.Debug("remove partial output failed", logging.String("path", p.opts.Output), logging.Error(err))
	}
}

type sinkWriteError struct{ err error }

func (e *sinkWriteError) Error() string { return "write frame: " + e.err.Error() }
func (e *sinkWriteError) Unwrap() error { return e.err }

type pipeSink struct {
	w      io.Writer
	codec  string
	width  int
	height int
	frames int
}

func (s *pipeSink) Codec() string { return s.codec }

func (s *pipeSink) WriteFrame(img *image.RGBA) error {
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return services.Wrap(services.ErrValidation, "encoding", "write frame",
			fmt.Sprintf("frame is %dx%d, encoder expects %dx%d", b.Dx(), b.Dy(), s.width, s.height), nil)
	}
	row := s.width * 4
	if img.Stride == row && b.Min == (image.Point{}) {
		if _, err := s.w.Write(img.Pix[:row*s.height]); err != nil {
			return &sinkWriteError{err: err}
		}
	} else {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := img.PixOffset(b.Min.X, y)
			if _, err := s.w.Write(img.Pix[off : off+row]); err != nil {
				return &sinkWriteError{err: err}
			}
		}
	}
	s.frames++
	return nil
}
