package layout

// GateMode controls what happens to a gated subtree when its condition
// stops matching.
type GateMode int

const (
	// GateDynamic unmounts the subtree (releasing its scope) when hidden.
	GateDynamic GateMode = iota
	// GateKeepMounted keeps the subtree mounted and only toggles visibility.
	GateKeepMounted
)

// GateOptions configures a Gate.
type GateOptions struct {
	Mode GateMode

	// Mount is called each time the subtree is mounted with a fresh scope
	// the subtree registers its resources in.
	Mount func(scope *Scope)

	// OnChange is called after every visibility flip, never on no-op updates.
	OnChange func(visible bool)
}

// Gate decides whether a subtree is rendered for the current viewport.
// Resize events call Update; the gate only reports a change (and only
// re-mounts or unmounts) when the boolean result flips.
type Gate struct {
	name      string
	bps       *Breakpoints
	cond      Condition
	opts      GateOptions
	visible   bool
	evaluated bool
	scope     *Scope
}

// NewGate builds a gate. It is not evaluated until the first Update.
func NewGate(name string, bps *Breakpoints, cond Condition, opts GateOptions) *Gate {
	return &Gate{name: name, bps: bps, cond: cond, opts: opts}
}

// Update re-evaluates the condition for width. changed is true on the
// first evaluation and whenever the result differs from the previous one.
func (g *Gate) Update(width int) (visible, changed bool) {
	next := g.bps.ShouldRender(g.cond, width)
	if g.evaluated && next == g.visible {
		return g.visible, false
	}

	g.evaluated = true
	g.visible = next

	switch {
	case next:
		g.mount()
	case g.opts.Mode == GateDynamic:
		g.unmount()
	case g.scope == nil:
		// keep-mounted gates mount on first evaluation even when hidden
		g.mount()
	}

	if g.opts.OnChange != nil {
		g.opts.OnChange(next)
	}
	return next, true
}

func (g *Gate) mount() {
	if g.scope != nil {
		return
	}
	g.scope = NewScope(g.name)
	if g.opts.Mount != nil {
		g.opts.Mount(g.scope)
	}
}

func (g *Gate) unmount() error {
	if g.scope == nil {
		return nil
	}
	scope := g.scope
	g.scope = nil
	return scope.Close()
}

// Close unmounts the subtree regardless of mode.
func (g *Gate) Close() error {
	return g.unmount()
}

func (g *Gate) Name() string { return g.name }

func (g *Gate) Condition() Condition { return g.cond }

// Visible reports the last evaluated result.
func (g *Gate) Visible() bool { return g.visible }

// Mounted reports whether the subtree currently holds a scope.
func (g *Gate) Mounted() bool { return g.scope != nil }
