package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"lapsync/internal/compositor"
	"lapsync/internal/config"
	"lapsync/internal/encoding"
	"lapsync/internal/fileutil"
	"lapsync/internal/history"
	"lapsync/internal/hud"
	"lapsync/internal/lapsync"
	"lapsync/internal/logging"
	"lapsync/internal/preflight"
	"lapsync/internal/services"
	"lapsync/internal/telemetry"
	"lapsync/internal/video"
)

// Stage names reported through Progress and the log context.
const (
	StagePreflight = "preflight"
	StageTelemetry = "telemetry"
	StageSync      = "sync"
	StageEncode    = "encode"
	StageFinalize  = "finalize"
)

// progressBucket is the percentage step between sampled progress log lines.
const progressBucket = 10

// Summary describes a completed render.
type Summary struct {
	RunID     string
	Output    string
	Encoder   string
	Frames    int
	Range     telemetry.FrameRange
	FPS       float64
	Fallbacks int
	Elapsed   time.Duration
}

// Option customises Run.
type Option func(*runner)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) { r.logger = logger }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(r *runner) { r.runID = id }
}

type runner struct {
	cfg    *config.Config
	job    Job
	runID  string
	logger *slog.Logger
	rep    *reporter
}

// plan is everything derived before the first frame.
type plan struct {
	output     string
	fps        float64
	primary    video.Info
	secondary  video.Info
	mapping    *lapsync.Mapping
	frames     telemetry.FrameRange
	engine     *hud.Engine
	comp       *compositor.Compositor
	geom       compositor.Geometry
	candidates []encoding.Candidate
}

// Run renders job. Progress snapshots are sent to progress without
// blocking; the channel is never closed by Run. Cancelling ctx stops the
// frame loop between frames, terminates the encoder and removes the partial
// output, in which case the context error is returned.
func Run(ctx context.Context, job Job, cfg *config.Config, progress chan<- Progress, opts ...Option) (*Summary, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "run", "config is required", nil)
	}
	r := &runner{cfg: cfg, job: job}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	ctx = services.WithRunID(ctx, r.runID)
	r.logger = logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "render"))
	r.rep = newReporter(progress)
	defer r.rep.stop()

	started := time.Now()
	p, err := r.prepare(ctx)
	if err != nil {
		r.logFailure(err)
		return nil, err
	}
	summary, err := r.execute(ctx, p)
	if err != nil {
		r.logFailure(err)
		return nil, err
	}
	summary.Elapsed = time.Since(started)
	r.logger.Info("render complete",
		logging.String("output", summary.Output),
		logging.String(logging.FieldEncoder, summary.Encoder),
		logging.Int("frames", summary.Frames),
		logging.Duration("elapsed", summary.Elapsed),
		logging.String(logging.FieldEventType, "render_complete"),
	)
	return summary, nil
}

// logFailure records why a render stopped. Cancellation is not a failure.
func (r *runner) logFailure(err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	logging.ErrorWithContext(r.logger, "render failed", "render_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, failureHint(err)),
	)
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, services.ErrTelemetryContract):
		return "check the telemetry CSV header against telemetry.required_columns"
	case errors.Is(err, services.ErrSyncIntegrity):
		return "both laps must cover the same track in one direction"
	case errors.Is(err, services.ErrEncodePipeline):
		return "run 'lapsync encoders' or set encoder.disable_hardware"
	case errors.Is(err, services.ErrConfiguration), errors.Is(err, services.ErrValidation):
		return "run 'lapsync config validate'"
	default:
		return "check logs for details"
	}
}

func (r *runner) stageLogger(ctx context.Context, stage string) (context.Context, *slog.Logger) {
	ctx = services.WithStage(ctx, stage)
	r.rep.publish(Progress{Stage: stage})
	return ctx, r.logger.With(logging.String(logging.FieldStage, stage))
}

func (r *runner) prepare(ctx context.Context) (*plan, error) {
	if err := r.job.Validate(); err != nil {
		return nil, err
	}
	output, err := r.job.ResolveOutput(r.cfg.Paths.OutputDir)
	if err != nil {
		return nil, err
	}

	stageCtx, logger := r.stageLogger(ctx, StagePreflight)
	if failed := preflight.Failed(runPreflight(stageCtx, r.cfg, r.job.inputs())); len(failed) > 0 {
		return nil, services.Wrap(services.ErrValidation, "render", "preflight", preflight.Summary(failed), nil)
	}
	logger.Debug("preflight passed")

	_, logger = r.stageLogger(ctx, StageTelemetry)
	primaryRaw, err := telemetry.Load(r.job.PrimaryTelemetry, r.cfg.Telemetry.RequiredColumns)
	if err != nil {
		return nil, err
	}
	secondaryRaw, err := telemetry.Load(r.job.SecondaryTelemetry, r.cfg.Telemetry.RequiredColumns)
	if err != nil {
		return nil, err
	}
	logger.Debug("telemetry loaded",
		logging.Int("primary_rows", primaryRaw.Rows),
		logging.Int("secondary_rows", secondaryRaw.Rows),
	)

	stageCtx, logger = r.stageLogger(ctx, StageSync)
	p := &plan{output: output}
	if p.primary, err = video.Probe(stageCtx, r.cfg.FFprobeBinary(), r.job.PrimaryVideo); err != nil {
		return nil, err
	}
	if p.secondary, err = video.Probe(stageCtx, r.cfg.FFprobeBinary(), r.job.SecondaryVideo); err != nil {
		return nil, err
	}
	p.fps = r.cfg.Render.FPS
	if p.fps <= 0 {
		p.fps = p.primary.FPS
	}
	if p.fps <= 0 {
		return nil, services.Wrap(services.ErrValidation, "render", "frame rate",
			fmt.Sprintf("%s reports no frame rate; set render.fps", r.job.PrimaryVideo), nil)
	}

	primary, err := telemetry.Resample(primaryRaw, p.fps, p.primary.FramesAt(p.fps))
	if err != nil {
		return nil, err
	}
	secondary, err := telemetry.Resample(secondaryRaw, p.fps, p.secondary.FramesAt(p.fps))
	if err != nil {
		return nil, err
	}
	if p.mapping, err = lapsync.Build(primary, secondary); err != nil {
		return nil, err
	}
	if p.frames, err = p.mapping.Restrict(r.job.Range); err != nil {
		return nil, err
	}
	logger.Info("laps synchronised",
		logging.Float64("fps", p.fps),
		logging.Int("first_frame", p.frames.Start),
		logging.Int("frames", p.frames.Len()),
		logging.Float64("lap_delta_s", p.mapping.DeltaAt(float64(p.frames.End-1))),
	)

	if p.geom, err = compositor.NewGeometry(r.cfg); err != nil {
		return nil, err
	}
	boxes, err := hud.BoxesFromConfig(r.cfg.HUDs)
	if err != nil {
		return nil, err
	}
	hctx, err := hud.NewContext(hud.ContextParams{
		FPS:           p.fps,
		Mapping:       p.mapping,
		Primary:       primary,
		Secondary:     secondary,
		SpeedUnits:    r.cfg.Render.SpeedUnits,
		WindowSeconds: r.cfg.Render.WindowSeconds,
		Style:         hud.DefaultStyle(),
		Logger:        r.logger,
	})
	if err != nil {
		return nil, err
	}
	if p.engine, err = hud.NewEngine(hctx, p.geom.ClipBoxes(boxes), nil); err != nil {
		return nil, err
	}
	p.comp = compositor.New(p.geom,
		image.Pt(p.primary.Width, p.primary.Height),
		image.Pt(p.secondary.Width, p.secondary.Height),
	)
	p.candidates = r.selectEncoders(stageCtx, p.geom.Width)
	return p, nil
}

func (r *runner) selectEncoders(ctx context.Context, width int) []encoding.Candidate {
	names, err := encoding.ProbeEncoders(ctx, r.cfg.FFmpegBinary())
	if err != nil {
		logging.WarnWithContext(r.logger, "encoder probe failed", "encoder_probe_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run lapsync encoders to inspect ffmpeg"),
			logging.String(logging.FieldImpact, "only the software encoder is tried"),
		)
	}
	candidates := encoding.Candidates(names, width, encoding.SelectOptions{
		Preferred:       r.cfg.Encoder.Preferred,
		DisableHardware: r.cfg.Encoder.DisableHardware,
	})
	if pref := r.cfg.Encoder.Preferred; pref != "" && candidates[0].Codec != pref {
		logging.WarnWithContext(r.logger, "preferred encoder unavailable", "encoder_preference_ignored",
			logging.String("preferred", pref),
			logging.String(logging.FieldEncoder, candidates[0].Codec),
			logging.String(logging.FieldImpact, "the default encoder order is used"),
		)
	}
	return candidates
}

func (r *runner) execute(ctx context.Context, p *plan) (*Summary, error) {
	lock := flock.New(p.output + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "render", "lock output", p.output, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "render", "lock output", p.output+" is being rendered by another process", nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release output lock", logging.Error(err))
		}
		_ = fileutil.RemoveIfExists(lock.Path())
	}()

	journal := r.beginJournal(ctx, p)
	if journal != nil {
		defer journal.Close()
	}

	partial := partialPath(p.output, r.runID)
	pipe, err := encoding.NewPipeline(encoding.Options{
		FFmpegBinary:    r.cfg.FFmpegBinary(),
		Width:           p.geom.Width,
		Height:          p.geom.Height,
		FPS:             p.fps,
		Output:          partial,
		StderrTailLines: r.cfg.Encoder.StderrTailLines,
		TerminateGrace:  time.Duration(r.cfg.Encoder.TerminateGraceSeconds) * time.Second,
		Logger:          r.logger,
	})
	if err != nil {
		r.finishJournal(ctx, journal, history.Outcome{Err: err})
		return nil, err
	}

	encodeCtx, logger := r.stageLogger(ctx, StageEncode)
	sampler := logging.NewProgressSampler(progressBucket)
	attempt := 0
	produce := func(ctx context.Context, sink encoding.FrameSink) error {
		attempt++
		p.engine.Reset()
		sampler.Reset()
		return r.produce(ctx, p, sink, func(written int) {
			snap := Progress{Stage: StageEncode, Encoder: sink.Codec(), Attempt: attempt, Written: written, Total: p.frames.Len()}
			r.rep.publish(snap)
			if sampler.ShouldLog(sink.Codec(), snap.Written, snap.Total) {
				logger.Info("render progress",
					logging.String(logging.FieldEncoder, snap.Encoder),
					logging.Int("written", snap.Written),
					logging.Int("total", snap.Total),
					logging.Float64("percent", snap.Percent()),
				)
			}
		})
	}
	result, err := pipe.Run(encodeCtx, p.candidates, produce)
	if err == nil {
		_, logger = r.stageLogger(ctx, StageFinalize)
		if moveErr := fileutil.MoveFile(partial, p.output); moveErr != nil {
			err = services.Wrap(services.ErrExternalTool, "render", "finalize output", p.output, moveErr)
		} else {
			logger.Debug("output finalized", logging.String("output", p.output))
		}
	}
	if err != nil {
		_ = fileutil.RemoveIfExists(partial)
		outcome := history.Outcome{Encoder: result.Encoder.Codec, FramesWritten: result.Frames, Err: err}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome.Status = history.StatusCanceled
		}
		r.finishJournal(ctx, journal, outcome)
		return nil, err
	}

	r.finishJournal(ctx, journal, history.Outcome{Status: history.StatusCompleted, Encoder: result.Encoder.Codec, FramesWritten: result.Frames})
	return &Summary{
		RunID:     r.runID,
		Output:    p.output,
		Encoder:   result.Encoder.Codec,
		Frames:    result.Frames,
		Range:     p.frames,
		FPS:       p.fps,
		Fallbacks: len(result.Failures),
	}, nil
}

// produce writes the frames of p.frames in order. Decoders are opened per
// attempt because they can only move forward.
func (r *runner) produce(ctx context.Context, p *plan, sink encoding.FrameSink, onFrame func(int)) error {
	tail := r.cfg.Encoder.StderrTailLines
	primary, err := video.Open(ctx, r.cfg.FFmpegBinary(), p.primary, p.fps, tail)
	if err != nil {
		return err
	}
	defer r.closeSource(primary, "primary")
	secondary, err := video.Open(ctx, r.cfg.FFmpegBinary(), p.secondary, p.fps, tail)
	if err != nil {
		return err
	}
	defer r.closeSource(secondary, "secondary")

	for f := p.frames.Start; f < p.frames.End; f++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		pair := p.mapping.At(f)
		left, err := primary.Frame(pair.PrimaryIndex)
		if err != nil {
			return err
		}
		right, err := secondary.Frame(pair.SecondaryIndex)
		if err != nil {
			return err
		}
		frame := p.comp.Compose(left, right, p.engine.Render(f))
		if err := sink.WriteFrame(frame); err != nil {
			return err
		}
		onFrame(f - p.frames.Start + 1)
	}
	return nil
}

func (r *runner) closeSource(src *video.Sequential, name string) {
	if err := src.Close(); err != nil {
		r.logger.Debug("decoder exit", logging.String("source", name), logging.Error(err))
	}
}

func (r *runner) beginJournal(ctx context.Context, p *plan) *history.Store {
	store, err := history.Open(ctx, r.cfg)
	if err != nil {
		logging.WarnWithContext(r.logger, "run history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is not recorded in lapsync history"),
		)
		return nil
	}
	_, err = store.Begin(ctx, history.Run{
		ID:             r.runID,
		Output:         p.output,
		PrimaryVideo:   r.job.PrimaryVideo,
		SecondaryVideo: r.job.SecondaryVideo,
		FramesTotal:    p.frames.Len(),
	})
	if err != nil {
		logging.WarnWithContext(r.logger, "run history write failed", "history_write_failed", logging.Error(err))
		_ = store.Close()
		return nil
	}
	return store
}

func (r *runner) finishJournal(ctx context.Context, store *history.Store, outcome history.Outcome) {
	if store == nil {
		return
	}
	// The run context may already be cancelled; the journal must still be updated.
	if err := store.Finish(context.WithoutCancel(ctx), r.runID, outcome); err != nil {
		logging.WarnWithContext(r.logger, "run history write failed", "history_write_failed", logging.Error(err))
	}
}
