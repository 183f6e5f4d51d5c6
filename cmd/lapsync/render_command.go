package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"lapsync/internal/config"
	"lapsync/internal/logging"
	"lapsync/internal/render"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var job render.Job
	var rangeFlag string
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a side-by-side comparison of two laps",
		Long: "Render aligns the secondary lap to the primary lap by lap distance, " +
			"composes both videos with HUD overlays and encodes the result with the " +
			"best available ffmpeg encoder.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if job.Range, err = render.ParseRange(rangeFlag); err != nil {
				return err
			}
			if err := expandJobPaths(&job); err != nil {
				return err
			}
			if err := job.Validate(); err != nil {
				return err
			}

			runID := uuid.NewString()
			logger, logPath, err := logging.NewFromConfig(cfg, runID)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RunLogTarget(cfg.Paths.LogDir, logPath))

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			progress := make(chan render.Progress)
			display := newProgressDisplay(cmd.ErrOrStderr(), !noProgress)
			done := display.consume(progress)
			summary, err := render.Run(runCtx, job, cfg, progress, render.WithLogger(logger), render.WithRunID(runID))
			close(progress)
			<-done
			if err != nil {
				if errors.Is(err, context.Canceled) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Render cancelled; partial output removed")
				}
				return err
			}
			printSummary(cmd.OutOrStdout(), summary, logPath)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&job.PrimaryVideo, "primary-video", "", "Reference lap video")
	flags.StringVar(&job.PrimaryTelemetry, "primary-csv", "", "Reference lap telemetry CSV")
	flags.StringVar(&job.SecondaryVideo, "secondary-video", "", "Compared lap video")
	flags.StringVar(&job.SecondaryTelemetry, "secondary-csv", "", "Compared lap telemetry CSV")
	flags.StringVarP(&job.Output, "output", "o", "", "Output video (default: <output_dir>/<primary>_vs_<secondary>.mp4)")
	flags.StringVar(&rangeFlag, "range", "", "Render only start:end seconds of the primary lap")
	flags.BoolVar(&noProgress, "no-progress", false, "Disable the interactive progress bar")
	for _, name := range []string{"primary-video", "primary-csv", "secondary-video", "secondary-csv"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func expandJobPaths(job *render.Job) error {
	for _, p := range []*string{&job.PrimaryVideo, &job.PrimaryTelemetry, &job.SecondaryVideo, &job.SecondaryTelemetry, &job.Output} {
		if *p == "" {
			continue
		}
		expanded, err := config.ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

func printSummary(out io.Writer, s *render.Summary, logPath string) {
	p := message.NewPrinter(language.English)
	p.Fprintf(out, "Wrote %s\n", s.Output)
	p.Fprintf(out, "  %d frames at %v fps (primary frames %d to %d)\n", s.Frames, s.FPS, s.Range.Start, s.Range.End-1)
	encoder := s.Encoder
	if s.Fallbacks > 0 {
		encoder = p.Sprintf("%s after %d failed encoder(s)", s.Encoder, s.Fallbacks)
	}
	p.Fprintf(out, "  encoder %s, %s elapsed\n", encoder, s.Elapsed.Round(10*time.Millisecond))
	if logPath != "" {
		p.Fprintf(out, "  log %s\n", logPath)
	}
}
