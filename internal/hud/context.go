package hud

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"lapsync/internal/lapsync"
	"lapsync/internal/logging"
	"lapsync/internal/services"
	"lapsync/internal/telemetry"
)

// Speed unit names accepted by the context.
const (
	UnitsKMH = "kmh"
	UnitsMPH = "mph"
)

// minSpeedDropKMH is how far below the surrounding maximum a local minimum
// must sit to count as a corner minimum.
const minSpeedDropKMH = 5.0

// ContextParams are the inputs used to build a Context.
type ContextParams struct {
	FPS           float64
	Mapping       *lapsync.Mapping
	Primary       *telemetry.Series
	Secondary     *telemetry.Series
	SpeedUnits    string
	WindowSeconds float64
	Style         Style
	Logger        *slog.Logger
}

// Context is the immutable per-run input shared by every renderer. It is
// built once before the frame loop and only read afterwards.
type Context struct {
	FPS           float64
	Mapping       *lapsync.Mapping
	Primary       *telemetry.Series
	Secondary     *telemetry.Series
	SpeedUnits    string
	SpeedFactor   float64
	WindowSeconds float64
	Style         Style
	Logger        *slog.Logger

	speed       [2][]float64
	minSpeed    [2][]float64
	deltaLo     float64
	deltaHi     float64
	lineOffsets []float64
	lineAbsMax  float64
	hasLine     bool
	slip        lapsync.Slip
	hasSlip     bool
	steerAbsMax float64
	maxGear     int
}

// NewContext validates the inputs and precomputes the derived channels
// (display speed, corner minimum speed, time delta range, line offsets,
// slip angles).
func NewContext(p ContextParams) (*Context, error) {
	if p.Mapping == nil || p.Primary == nil || p.Secondary == nil {
		return nil, fmt.Errorf("hud context: mapping and both series are required: %w", services.ErrValidation)
	}
	if p.FPS <= 0 {
		return nil, fmt.Errorf("hud context: invalid fps %v: %w", p.FPS, services.ErrValidation)
	}
	if p.WindowSeconds <= 0 {
		return nil, fmt.Errorf("hud context: invalid window %v: %w", p.WindowSeconds, services.ErrValidation)
	}
	logger := p.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	ctx := &Context{
		FPS:           p.FPS,
		Mapping:       p.Mapping,
		Primary:       p.Primary,
		Secondary:     p.Secondary,
		WindowSeconds: p.WindowSeconds,
		Style:         p.Style,
		Logger:        logging.NewComponentLogger(logger, "hud"),
	}
	switch strings.ToLower(strings.TrimSpace(p.SpeedUnits)) {
	case UnitsMPH:
		ctx.SpeedUnits, ctx.SpeedFactor = UnitsMPH, telemetry.MPSToMPH
	default:
		ctx.SpeedUnits, ctx.SpeedFactor = UnitsKMH, telemetry.MPSToKMH
	}
	if ctx.Style == (Style{}) {
		ctx.Style = DefaultStyle()
	}

	threshold := minSpeedDropKMH / telemetry.MPSToKMH
	for i, s := range []*telemetry.Series{p.Primary, p.Secondary} {
		raw, ok := s.Channel(telemetry.ColSpeed)
		if !ok {
			continue
		}
		minimum := telemetry.MinSpeed(raw, p.FPS, threshold)
		ctx.speed[i] = scaled(raw, ctx.SpeedFactor)
		ctx.minSpeed[i] = scaled(minimum, ctx.SpeedFactor)
	}

	ctx.deltaLo, ctx.deltaHi = math.Inf(1), math.Inf(-1)
	common := p.Mapping.CommonRange()
	for i := common.Start; i < common.End; i++ {
		d := p.Mapping.DeltaAt(float64(i))
		if math.IsNaN(d) {
			continue
		}
		ctx.deltaLo = math.Min(ctx.deltaLo, d)
		ctx.deltaHi = math.Max(ctx.deltaHi, d)
	}
	if math.IsInf(ctx.deltaLo, 0) {
		ctx.deltaLo, ctx.deltaHi = 0, 0
	}

	ctx.lineOffsets, ctx.hasLine = lapsync.LineOffsets(p.Primary, p.Secondary, p.Mapping)
	ctx.lineAbsMax = absMax(ctx.lineOffsets)
	ctx.slip, ctx.hasSlip = lapsync.SlipAngles(p.Primary, p.Secondary, p.Mapping)

	for _, s := range []*telemetry.Series{p.Primary, p.Secondary} {
		if v, ok := s.Channel(telemetry.ColSteering); ok {
			ctx.steerAbsMax = math.Max(ctx.steerAbsMax, absMax(v))
		}
		if v, ok := s.Channel(telemetry.ColGear); ok {
			for _, g := range v {
				if !math.IsNaN(g) {
					ctx.maxGear = max(ctx.maxGear, int(g))
				}
			}
		}
	}
	return ctx, nil
}

// SpeedLabel returns the unit label used in titles.
func (c *Context) SpeedLabel() string {
	if c.SpeedUnits == UnitsMPH {
		return "mph"
	}
	return "km/h"
}

// lap selects one of the two laps.
type lap int

const (
	lapPrimary lap = iota
	lapSecondary
)

// secondaryCoord converts a primary frame coordinate into the secondary
// lap's frame coordinate through the mapping.
func (c *Context) secondaryCoord(coord float64) float64 {
	ts := c.Mapping.SecondaryTimeAt(coord)
	if math.IsNaN(ts) {
		return math.NaN()
	}
	return ts * c.FPS
}

// channelAt samples a telemetry channel of either lap at a primary frame
// coordinate. Missing channels and coordinates outside the data are NaN.
func (c *Context) channelAt(l lap, name string, coord float64) float64 {
	if l == lapPrimary {
		return c.Primary.At(name, coord)
	}
	sc := c.secondaryCoord(coord)
	if math.IsNaN(sc) {
		return math.NaN()
	}
	return c.Secondary.At(name, sc)
}

func (c *Context) derivedAt(l lap, values [2][]float64, coord float64) float64 {
	if l == lapPrimary {
		return telemetry.SampleLinear(values[0], coord)
	}
	sc := c.secondaryCoord(coord)
	if math.IsNaN(sc) {
		return math.NaN()
	}
	return telemetry.SampleLinear(values[1], sc)
}

// speedAt returns display-unit speed for a lap at a primary frame coordinate.
func (c *Context) speedAt(l lap, coord float64) float64 { return c.derivedAt(l, c.speed, coord) }

// minSpeedAt returns the held corner minimum speed in display units.
func (c *Context) minSpeedAt(l lap, coord float64) float64 {
	return c.derivedAt(l, c.minSpeed, coord)
}

// DeltaAt returns primary minus secondary elapsed time in seconds.
func (c *Context) DeltaAt(coord float64) float64 { return c.Mapping.DeltaAt(coord) }

// LineOffsetAt returns the secondary car's lateral offset from the primary
// car in metres, positive to the left.
func (c *Context) LineOffsetAt(coord float64) float64 {
	if !c.hasLine {
		return math.NaN()
	}
	return telemetry.SampleLinear(c.lineOffsets, coord)
}

// slipAt returns the under/oversteer proxy of a lap in radians: positive
// when the car points left of its direction of travel.
func (c *Context) slipAt(l lap, coord float64) float64 {
	if !c.hasSlip {
		return math.NaN()
	}
	if l == lapSecondary {
		return telemetry.SampleLinear(c.slip.Secondary, coord)
	}
	return telemetry.SampleLinear(c.slip.Primary, coord)
}

// logGap records the first missing column of a gap at debug level.
func (c *Context) logGap(st *State, curve string, frame int) {
	c.Logger.Debug("hud column skipped",
		logging.Int("box", st.Box.ID),
		logging.String("kind", string(st.Box.Kind)),
		logging.String("curve", curve),
		logging.Int(logging.FieldFrame, frame),
	)
}

func scaled(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}

func absMax(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			m = math.Max(m, math.Abs(v))
		}
	}
	return m
}
