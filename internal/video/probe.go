package video

import (
	"context"
	"fmt"
	"math"

	"lapsync/internal/media/ffprobe"
	"lapsync/internal/services"
)

// Info describes a video source.
type Info struct {
	Path     string
	Width    int
	Height   int
	FPS      float64
	Duration float64
	Frames   int
}

// Probe inspects path with ffprobe and returns its video stream geometry.
func Probe(ctx context.Context, ffprobeBinary, path string) (Info, error) {
	result, err := ffprobe.Inspect(ctx, ffprobeBinary, path)
	if err != nil {
		return Info{}, services.Wrap(services.ErrExternalTool, "video", "probe", path, err)
	}
	stream, ok := result.VideoStream()
	if !ok {
		return Info{}, services.Wrap(services.ErrValidation, "video", "probe", fmt.Sprintf("%s has no video stream", path), nil)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return Info{}, services.Wrap(services.ErrValidation, "video", "probe", fmt.Sprintf("%s reports invalid size %dx%d", path, stream.Width, stream.Height), nil)
	}
	duration := result.DurationSeconds()
	return Info{
		Path:     path,
		Width:    stream.Width,
		Height:   stream.Height,
		FPS:      stream.FrameRate(),
		Duration: duration,
		Frames:   stream.FrameCount(duration),
	}, nil
}

// FramesAt returns how many frames the source yields when decoded at fps.
func (i Info) FramesAt(fps float64) int {
	if fps <= 0 {
		return 0
	}
	if i.Duration > 0 {
		return max(1, int(math.Round(i.Duration*fps)))
	}
	if i.Frames > 0 && i.FPS > 0 {
		return max(1, int(math.Round(float64(i.Frames)*fps/i.FPS)))
	}
	return 0
}
