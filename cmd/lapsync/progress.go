package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"lapsync/internal/render"
)

// progressDisplay draws a progress bar on interactive terminals. Elsewhere
// the render logger already emits sampled progress lines, so snapshots are
// drained and dropped.
type progressDisplay struct {
	w   io.Writer
	tty bool
}

func newProgressDisplay(w io.Writer, enabled bool) *progressDisplay {
	return &progressDisplay{w: w, tty: enabled && isTerminal(w)}
}

// consume reads snapshots until ch is closed and then closes the returned
// channel.
func (d *progressDisplay) consume(ch <-chan render.Progress) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		var bar *progressbar.ProgressBar
		for p := range ch {
			if !d.tty || p.Total <= 0 {
				continue
			}
			if bar == nil {
				bar = d.newBar(p.Total)
			}
			bar.Describe(describeProgress(p))
			_ = bar.Set(p.Written)
		}
		if bar != nil {
			_ = bar.Finish()
			fmt.Fprintln(d.w)
		}
	}()
	return done
}

func (d *progressDisplay) newBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(d.w),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionShowIts(),
	)
}

func describeProgress(p render.Progress) string {
	if p.Attempt > 1 {
		return fmt.Sprintf("Encoding (%s, attempt %d)", p.Encoder, p.Attempt)
	}
	return fmt.Sprintf("Encoding (%s)", p.Encoder)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
