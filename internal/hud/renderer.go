package hud

import "image"

// Renderer draws one HUD kind. Implementations are stateless: everything
// that changes between frames lives in the State the engine passes in.
type Renderer interface {
	Kind() Kind
	// Scrolls reports whether the kind keeps a dynamic scroll buffer.
	Scrolls() bool
	// Range returns the value range mapped onto the plot height.
	Range(ctx *Context) (lo, hi float64)
	// DrawStatic builds the chrome layer: background, gridlines, labels,
	// title and centre marker.
	DrawStatic(ctx *Context, l *Layout) *image.RGBA
	// DrawIncremental paints dynamic columns [x0, x1) for frame into
	// st.Dynamic, connecting each curve from the previous column.
	DrawIncremental(ctx *Context, st *State, frame, x0, x1 int)
	// DrawReadout writes the live values for frame onto dst.
	DrawReadout(ctx *Context, dst *image.RGBA, l *Layout, frame int)
}

// Registry maps kinds to renderers. The engine resolves every box once at
// setup and never branches on kind inside the frame loop.
type Registry struct {
	renderers map[Kind]Renderer
}

// NewRegistry returns a registry holding every built-in kind.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[Kind]Renderer)}
	r.Register(speedTable{})
	for _, p := range plotRenderers() {
		r.Register(p)
	}
	return r
}

// Register adds or replaces the renderer for its kind.
func (r *Registry) Register(renderer Renderer) {
	r.renderers[renderer.Kind()] = renderer
}

// Lookup returns the renderer for a kind.
func (r *Registry) Lookup(kind Kind) (Renderer, bool) {
	renderer, ok := r.renderers[kind]
	return renderer, ok
}
