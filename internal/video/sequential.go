package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"time"

	"lapsync/internal/services"
	"lapsync/internal/textutil"
)

// decoderWaitDelay bounds how long Close waits for a killed decoder's pipes.
const decoderWaitDelay = 2 * time.Second

// Sequential hands out decoded frames in non-decreasing index order.
// Repeated indexes return the held frame, skipped indexes are read and
// discarded, and indexes past the end of the stream keep returning the last
// decoded frame.
type Sequential struct {
	path   string
	r      io.Reader
	width  int
	height int

	held    *image.RGBA
	scratch *image.RGBA
	index   int
	eof     bool

	cmd    *exec.Cmd
	cancel context.CancelFunc
	stderr *textutil.LineTail
}

// NewSequential reads raw RGBA frames of the given size from r.
func NewSequential(r io.Reader, width, height int) *Sequential {
	return &Sequential{
		r:       r,
		width:   width,
		height:  height,
		scratch: image.NewRGBA(image.Rect(0, 0, width, height)),
		index:   -1,
	}
}

// Open starts an ffmpeg decoder for info.Path resampled to fps.
func Open(ctx context.Context, ffmpegBinary string, info Info, fps float64, stderrLines int) (*Sequential, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, services.Wrap(services.ErrValidation, "video", "open", fmt.Sprintf("%s has no probed size", info.Path), nil)
	}
	decodeCtx, cancel := context.WithCancel(ctx)
	args := []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-i", info.Path,
		"-an", "-sn",
		"-vf", "fps=" + strconv.FormatFloat(fps, 'f', -1, 64),
		"-f", "rawvideo", "-pix_fmt", "rgba",
		"pipe:1",
	}
	cmd := exec.CommandContext(decodeCtx, ffmpegBinary, args...) //nolint:gosec
	cmd.WaitDelay = decoderWaitDelay
	tail := textutil.NewLineTail(stderrLines)
	cmd.Stderr = tail
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, services.Wrap(services.ErrExternalTool, "video", "open", info.Path, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, services.Wrap(services.ErrExternalTool, "video", "start decoder", info.Path, err)
	}

	s := NewSequential(stdout, info.Width, info.Height)
	s.path = info.Path
	s.cmd = cmd
	s.cancel = cancel
	s.stderr = tail
	return s, nil
}

// Size returns the frame dimensions.
func (s *Sequential) Size() image.Point { return image.Pt(s.width, s.height) }

// Frame returns frame i. The image is owned by the source and is only valid
// until the next call.
func (s *Sequential) Frame(i int) (*image.RGBA, error) {
	if i < s.index {
		return nil, fmt.Errorf("video %s: frame %d requested after %d: %w", s.path, i, s.index, services.ErrValidation)
	}
	for s.index < i && !s.eof {
		_, err := io.ReadFull(s.r, s.scratch.Pix)
		switch {
		case err == nil:
			s.held, s.scratch = s.scratch, s.held
			if s.scratch == nil {
				s.scratch = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
			}
			s.index++
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			s.eof = true
		default:
			return nil, services.Wrap(services.ErrExternalTool, "video", "read frame", s.describe(), err)
		}
	}
	if s.held == nil {
		return nil, services.Wrap(services.ErrExternalTool, "video", "read frame", s.describe()+": no frames decoded", nil)
	}
	return s.held, nil
}

// Decoded returns the number of frames read so far.
func (s *Sequential) Decoded() int { return s.index + 1 }

// Close stops the decoder and waits for it to exit.
func (s *Sequential) Close() error {
	if s.cmd == nil {
		return nil
	}
	s.cancel()
	err := s.cmd.Wait()
	s.cmd = nil
	// A decoder stopped before the end of its stream is killed by cancel;
	// only a failed exit after EOF is reported.
	var exitErr *exec.ExitError
	if err != nil && s.eof && errors.As(err, &exitErr) && exitErr.Exited() {
		return services.Wrap(services.ErrExternalTool, "video", "decoder exit", s.describe(), err)
	}
	return nil
}

func (s *Sequential) describe() string {
	msg := s.path
	if s.stderr != nil {
		if last := s.stderr.Last(); last != "" {
			msg += ": " + last
		}
	}
	return msg
}
