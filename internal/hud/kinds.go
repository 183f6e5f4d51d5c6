package hud

import (
	"fmt"
	"image/color"
	"math"

	"lapsync/internal/telemetry"
)

// pedalHeadroom leaves space above full throttle/brake and full lock.
const pedalHeadroom = 1.12

// radToDeg converts steering wheel angle to degrees for display.
const radToDeg = 180 / math.Pi

func primaryBright(s Style) color.RGBA   { return s.PrimaryBright }
func primaryDark(s Style) color.RGBA     { return s.PrimaryDark }
func secondaryBright(s Style) color.RGBA { return s.SecondaryBright }
func secondaryDark(s Style) color.RGBA   { return s.SecondaryDark }

func channelCurve(name string, l lap, column string, scale float64, col func(Style) color.RGBA) curve {
	return curve{
		name:  name,
		color: col,
		thick: 2,
		sample: func(ctx *Context, coord float64) float64 {
			return ctx.channelAt(l, column, coord) * scale
		},
	}
}

func plotRenderers() []plotRenderer {
	return []plotRenderer{
		throttleBrakePlot(),
		steeringPlot(),
		deltaPlot(),
		lineDeltaPlot(),
		gearRPMPlot(),
		underOversteerPlot(),
	}
}

// throttleBrakePlot draws both pedals for both laps: throttle in the bright
// lap colour, brake in the dark one, with ABS activity as marker strips.
func throttleBrakePlot() plotRenderer {
	absBand := func(name string, l lap, band int, col func(Style) color.RGBA) curve {
		return curve{
			name:  name,
			color: col,
			band:  band,
			sample: func(ctx *Context, coord float64) float64 {
				return ctx.channelAt(l, telemetry.ColABSActive, coord)
			},
		}
	}
	return plotRenderer{
		kind: KindThrottleBrake,
		curves: []curve{
			channelCurve("primary brake", lapPrimary, telemetry.ColBrake, 1, primaryDark),
			channelCurve("secondary brake", lapSecondary, telemetry.ColBrake, 1, secondaryDark),
			channelCurve("primary throttle", lapPrimary, telemetry.ColThrottle, 1, primaryBright),
			channelCurve("secondary throttle", lapSecondary, telemetry.ColThrottle, 1, secondaryBright),
			absBand("primary abs", lapPrimary, 1, primaryBright),
			absBand("secondary abs", lapSecondary, 5, secondaryBright),
		},
		valueFn: func(*Context) (float64, float64) { return 0, pedalHeadroom },
		labelFn: func(v float64) string { return fmt.Sprintf("%.0f%%", v*100) },
		readout: func(ctx *Context, frame int) []segment {
			f := float64(frame)
			pct := func(l lap, column string) string {
				v := ctx.channelAt(l, column, f)
				if math.IsNaN(v) {
					return "--"
				}
				return fmt.Sprintf("%.0f", v*100)
			}
			return []segment{
				{fmt.Sprintf("T %s B %s", pct(lapPrimary, telemetry.ColThrottle), pct(lapPrimary, telemetry.ColBrake)), ctx.Style.PrimaryBright},
				{"   ", ctx.Style.Text},
				{fmt.Sprintf("T %s B %s", pct(lapSecondary, telemetry.ColThrottle), pct(lapSecondary, telemetry.ColBrake)), ctx.Style.SecondaryBright},
			}
		},
	}
}

// steeringPlot draws steering wheel angle in degrees, symmetric around zero.
func steeringPlot() plotRenderer {
	return plotRenderer{
		kind: KindSteering,
		curves: []curve{
			channelCurve("primary steering", lapPrimary, telemetry.ColSteering, radToDeg, primaryBright),
			channelCurve("secondary steering", lapSecondary, telemetry.ColSteering, radToDeg, secondaryBright),
		},
		valueFn: func(ctx *Context) (float64, float64) {
			a := ctx.steerAbsMax * radToDeg * pedalHeadroom
			if a <= 0 {
				a = 90
			}
			return -a, a
		},
		labelFn: func(v float64) string { return fmt.Sprintf("%.0f°", v) },
		zero:    true,
		readout: func(ctx *Context, frame int) []segment {
			f := float64(frame)
			deg := func(l lap) string {
				v := ctx.channelAt(l, telemetry.ColSteering, f)
				if math.IsNaN(v) {
					return "--"
				}
				return fmt.Sprintf("%+.0f°", v*radToDeg)
			}
			return []segment{
				{deg(lapPrimary), ctx.Style.PrimaryBright},
				{" / ", ctx.Style.Text},
				{deg(lapSecondary), ctx.Style.SecondaryBright},
			}
		},
	}
}

// deltaPlot draws primary minus secondary elapsed time. Zero sits at the
// bottom when the delta never goes negative, otherwise between the extremes.
func deltaPlot() plotRenderer {
	return plotRenderer{
		kind: KindDelta,
		curves: []curve{{
			name:   "delta",
			color:  func(s Style) color.RGBA { return s.Text },
			thick:  2,
			sample: func(ctx *Context, coord float64) float64 { return ctx.DeltaAt(coord) },
		}},
		valueFn: func(ctx *Context) (float64, float64) {
			lo, hi := ctx.deltaLo, ctx.deltaHi
			if lo >= 0 {
				lo = 0
			}
			if hi <= lo {
				hi = lo + 1
			}
			pad := (hi - lo) * 0.1
			if lo < 0 {
				lo -= pad
			}
			return lo, hi + pad
		},
		labelFn: func(v float64) string { return fmt.Sprintf("%+gs", v) },
		zero:    true,
		readout: func(ctx *Context, frame int) []segment {
			d := ctx.DeltaAt(float64(frame))
			if math.IsNaN(d) {
				return []segment{{"--", ctx.Style.Text}}
			}
			col := ctx.Style.SecondaryBright
			if d > 0 {
				col = ctx.Style.PrimaryBright
			}
			return []segment{{fmt.Sprintf("%+.3f s", d), col}}
		},
	}
}

// lineDeltaPlot draws the secondary car's lateral offset from the primary
// car's line, positive to the left.
func lineDeltaPlot() plotRenderer {
	return plotRenderer{
		kind: KindLineDelta,
		curves: []curve{{
			name:   "line offset",
			color:  secondaryBright,
			thick:  2,
			sample: func(ctx *Context, coord float64) float64 { return ctx.LineOffsetAt(coord) },
		}},
		valueFn: func(ctx *Context) (float64, float64) {
			a := math.Max(ctx.lineAbsMax*1.1, 0.5)
			return -a, a
		},
		labelFn: func(v float64) string { return fmt.Sprintf("%gm", v) },
		zero:    true,
		readout: func(ctx *Context, frame int) []segment {
			v := ctx.LineOffsetAt(float64(frame))
			if math.IsNaN(v) {
				return []segment{{"--", ctx.Style.Text}}
			}
			return []segment{{fmt.Sprintf("%+.2f m", v), ctx.Style.SecondaryBright}}
		},
	}
}

// gearRPMPlot scrolls the selected gear of both laps as stepped bands, one
// row per gear, with the current gear and RPM as readout.
func gearRPMPlot() plotRenderer {
	return plotRenderer{
		kind: KindGearRPM,
		curves: []curve{
			channelCurve("primary gear", lapPrimary, telemetry.ColGear, 1, primaryBright),
			channelCurve("secondary gear", lapSecondary, telemetry.ColGear, 1, secondaryBright),
		},
		valueFn: func(ctx *Context) (float64, float64) {
			top := ctx.maxGear
			if top <= 0 {
				top = 6
			}
			return 0.5, float64(top) + 0.5
		},
		ticksFn: func(lo, hi float64) []float64 {
			var out []float64
			for g := math.Ceil(lo); g <= hi; g++ {
				out = append(out, g)
			}
			return out
		},
		labelFn: func(v float64) string { return fmt.Sprintf("%.0f", v) },
		readout: func(ctx *Context, frame int) []segment {
			f := float64(frame)
			text := func(l lap) string {
				g := ctx.channelAt(l, telemetry.ColGear, f)
				r := ctx.channelAt(l, telemetry.ColRPM, f)
				gs, rs := "-", "--"
				if !math.IsNaN(g) {
					gs = gearLabel(int(g))
				}
				if !math.IsNaN(r) {
					rs = fmt.Sprintf("%.0f", r)
				}
				return fmt.Sprintf("%s / %s rpm", gs, rs)
			}
			return []segment{
				{text(lapPrimary), ctx.Style.PrimaryBright},
				{"   ", ctx.Style.Text},
				{text(lapSecondary), ctx.Style.SecondaryBright},
			}
		},
	}
}

// underOversteerPlot scrolls the slip proxy of both laps around a neutral
// baseline. The range is symmetric and shared so the laps compare directly.
func underOversteerPlot() plotRenderer {
	slipCurve := func(name string, l lap, col func(Style) color.RGBA) curve {
		return curve{
			name:   name,
			color:  col,
			thick:  2,
			sample: func(ctx *Context, coord float64) float64 { return ctx.slipAt(l, coord) * radToDeg },
		}
	}
	return plotRenderer{
		kind: KindUnderOversteer,
		curves: []curve{
			slipCurve("primary slip", lapPrimary, primaryBright),
			slipCurve("secondary slip", lapSecondary, secondaryBright),
		},
		valueFn: func(ctx *Context) (float64, float64) {
			a := ctx.slip.Limit * radToDeg
			if !ctx.hasSlip || a <= 0 {
				a = 1
			}
			return -a, a
		},
		labelFn: func(v float64) string { return fmt.Sprintf("%g°", v) },
		zero:    true,
		readout: func(ctx *Context, frame int) []segment {
			f := float64(frame)
			deg := func(l lap) string {
				v := ctx.slipAt(l, f)
				if math.IsNaN(v) {
					return "--"
				}
				return fmt.Sprintf("%+.1f°", v*radToDeg)
			}
			return []segment{
				{deg(lapPrimary), ctx.Style.PrimaryBright},
				{" / ", ctx.Style.Text},
				{deg(lapSecondary), ctx.Style.SecondaryBright},
			}
		},
	}
}

func gearLabel(g int) string {
	switch {
	case g < 0:
		return "R"
	case g == 0:
		return "N"
	default:
		return fmt.Sprintf("%d", g)
	}
}
