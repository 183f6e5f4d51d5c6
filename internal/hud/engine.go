package hud

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"golang.org/x/image/draw"

	"lapsync/internal/logging"
	"lapsync/internal/services"
)

// minBoxSide is the smallest box edge a renderer can lay out.
const minBoxSide = 16

// Mode reports which path of the state machine produced an overlay.
type Mode int

const (
	ModeReset Mode = iota + 1
	ModeIncremental
)

func (m Mode) String() string {
	switch m {
	case ModeReset:
		return "reset"
	case ModeIncremental:
		return "incremental"
	default:
		return "unknown"
	}
}

// Overlay is the composed image for one box. Image is reused by the engine
// and is only valid until the next call to Render.
type Overlay struct {
	Box   Box
	Image *image.RGBA
	Mode  Mode
}

type activeBox struct {
	box      Box
	renderer Renderer
}

// Engine owns one State per enabled box and evaluates their state machines
// once per frame.
type Engine struct {
	ctx    *Context
	active []activeBox
	states map[int]*State
	window float64
	logger *slog.Logger
}

// NewEngine resolves a renderer for every enabled box. Unknown kinds and
// boxes too small to lay out are configuration errors.
func NewEngine(ctx *Context, boxes []Box, registry *Registry) (*Engine, error) {
	if ctx == nil {
		return nil, fmt.Errorf("hud engine: nil context: %w", services.ErrValidation)
	}
	if registry == nil {
		registry = NewRegistry()
	}
	e := &Engine{
		ctx:    ctx,
		states: make(map[int]*State),
		window: ctx.WindowSeconds,
		logger: ctx.Logger,
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	seen := make(map[int]struct{}, len(boxes))
	for _, box := range boxes {
		if !box.Enabled {
			continue
		}
		if _, dup := seen[box.ID]; dup {
			return nil, fmt.Errorf("hud engine: duplicate box id %d: %w", box.ID, services.ErrConfiguration)
		}
		seen[box.ID] = struct{}{}
		renderer, ok := registry.Lookup(box.Kind)
		if !ok {
			return nil, fmt.Errorf("hud engine: no renderer for kind %q: %w", box.Kind, services.ErrConfiguration)
		}
		if box.Rect.Dx() < minBoxSide || box.Rect.Dy() < minBoxSide {
			return nil, fmt.Errorf("hud engine: box %d (%s) is smaller than %dpx: %w", box.ID, box.Kind, minBoxSide, services.ErrConfiguration)
		}
		if box.Asymmetric() {
			e.logger.Debug("hud window normalised to symmetric",
				logging.Int("box", box.ID),
				logging.String("kind", string(box.Kind)),
				logging.Float64("before_seconds", box.BeforeSeconds),
				logging.Float64("after_seconds", box.AfterSeconds),
				logging.Float64("half_window_seconds", box.HalfWindowSeconds(e.window)),
			)
		}
		e.active = append(e.active, activeBox{box: box, renderer: renderer})
	}
	return e, nil
}

// Boxes returns the enabled boxes in render order.
func (e *Engine) Boxes() []Box {
	out := make([]Box, len(e.active))
	for i, a := range e.active {
		out[i] = a.box
	}
	return out
}

// State returns the state of a box, or nil before its first frame.
func (e *Engine) State(id int) *State {
	return e.states[id]
}

// Reset discards every box state so the next frame takes the RESET path.
// Used when an encode attempt restarts from frame zero.
func (e *Engine) Reset() {
	clear(e.states)
}

// SetWindow changes the run's default window length. Boxes whose effective
// window changes take the RESET path on their next frame.
func (e *Engine) SetWindow(seconds float64) {
	if seconds > 0 {
		e.window = seconds
	}
}

// Render advances every enabled box to frame and returns their composed
// overlays in box order.
func (e *Engine) Render(frame int) []Overlay {
	out := make([]Overlay, 0, len(e.active))
	for _, a := range e.active {
		st := e.states[a.box.ID]
		half := a.box.halfFrames(e.window, e.ctx.FPS)
		mode := ModeIncremental
		if st == nil || frame != st.LastFrame+1 || half != st.HalfFrames {
			mode = ModeReset
			st = e.reset(a, st, frame, half)
		} else {
			e.advance(a, st, frame)
		}
		e.compose(a, st, frame)
		out = append(out, Overlay{Box: a.box, Image: st.Compose, Mode: mode})
	}
	return out
}

// reset rebuilds the static layer when its signature changed, repaints the
// whole dynamic buffer and zeroes the scroll accumulator.
func (e *Engine) reset(a activeBox, st *State, frame, half int) *State {
	if st == nil {
		st = &State{Box: a.box}
		e.states[a.box.ID] = st
	}
	lo, hi := a.renderer.Range(e.ctx)
	sig := Signature{
		Kind:       a.box.Kind,
		W:          a.box.Rect.Dx(),
		H:          a.box.Rect.Dy(),
		FPS:        e.ctx.FPS,
		HalfFrames: half,
		Lo:         lo,
		Hi:         hi,
		Title:      a.box.Title,
		Opacity:    a.box.BackgroundOpacity,
		Style:      e.ctx.Style,
	}
	if st.Static == nil || st.Signature != sig {
		st.Layout = newLayout(a.box, half, lo, hi)
		st.Static = a.renderer.DrawStatic(e.ctx, st.Layout)
		st.Compose = image.NewRGBA(st.Static.Bounds())
		st.Signature = sig
		st.StaticBuilds++
	}

	st.Acc = 0
	st.LastFrame = frame
	st.HalfFrames = half
	st.Resets++

	if a.renderer.Scrolls() {
		bounds := st.Static.Bounds()
		if st.Dynamic == nil || st.Dynamic.Bounds() != bounds {
			st.Dynamic = image.NewRGBA(bounds)
		} else {
			clear(st.Dynamic.Pix)
		}
		st.clearColumnY(0, bounds.Dx())
		st.redrawEnd = 0
		a.renderer.DrawIncremental(e.ctx, st, frame, 0, bounds.Dx())
	}
	return st
}

// advance scrolls the buffer by the whole pixels accumulated since the last
// frame and draws the uncovered right-edge columns. At least one column is
// always redrawn so the newest sample is never more than a frame stale.
func (e *Engine) advance(a activeBox, st *State, frame int) {
	st.LastFrame = frame
	if !a.renderer.Scrolls() {
		return
	}
	w := st.Layout.W
	st.Acc += st.Layout.Rate
	shift := int(math.Floor(st.Acc))
	st.Acc -= float64(shift)
	st.Shifted += shift

	if shift >= w {
		clear(st.Dynamic.Pix)
		st.clearColumnY(0, w)
		st.redrawEnd = 0
		a.renderer.DrawIncremental(e.ctx, st, frame, 0, w)
		return
	}
	scrollLeft(st.Dynamic, shift)
	st.shiftColumnY(shift)
	clearColumns(st.Dynamic, w-shift, w)
	st.clearColumnY(w-shift, w)

	// Without a shift the last column still holds the previous frame; the
	// renderer replaces it only where the new frame has data.
	st.redrawEnd = w - shift
	a.renderer.DrawIncremental(e.ctx, st, frame, w-max(shift, 1), w)
}

// compose layers static and dynamic into the reusable compose image and
// draws the live readout on top of the copy.
func (e *Engine) compose(a activeBox, st *State, frame int) {
	copy(st.Compose.Pix, st.Static.Pix)
	if st.Dynamic != nil {
		draw.Draw(st.Compose, st.Compose.Bounds(), st.Dynamic, image.Point{}, draw.Over)
	}
	a.renderer.DrawReadout(e.ctx, st.Compose, st.Layout, frame)
}
