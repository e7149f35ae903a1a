package layout

import (
	"errors"
	"log/slog"
)

// DrawerOptions wires a Drawer to its host environment.
type DrawerOptions struct {
	// Owner identifies the drawer when claiming the overlay root.
	Owner string

	Root       *OverlayRoot
	Listeners  *Listeners
	ScrollLock *ScrollLock
	Logger     *slog.Logger
}

// Drawer is the mobile drawer controller. While open it holds, in one
// scope, the overlay root claim, an outside-click listener and a body scroll
// lock. Every close path releases that scope.
type Drawer struct {
	shell  *Shell
	opts   DrawerOptions
	logger *slog.Logger
	scope  *Scope
	closed bool
}

// NewDrawer attaches a drawer to shell. A shell carries at most one drawer.
func NewDrawer(shell *Shell, opts DrawerOptions) (*Drawer, error) {
	if opts.Root == nil {
		return nil, errors.New("layout: drawer needs an overlay root")
	}
	if opts.Listeners == nil {
		opts.Listeners = NewListeners()
	}
	if opts.ScrollLock == nil {
		opts.ScrollLock = &ScrollLock{}
	}
	if opts.Owner == "" {
		opts.Owner = "drawer"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Drawer{shell: shell, opts: opts, logger: logger}
	if err := shell.attach(d.acquire, d.release); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Drawer) acquire() error {
	claim, err := d.opts.Root.Claim(d.opts.Owner)
	if err != nil {
		return err
	}

	scope := NewScope(d.opts.Owner)
	scope.Acquire("overlay", claim.Release)
	scope.Acquire("outside_click", d.opts.Listeners.Add(EventOutsideClick, func(ev Event) {
		// clicks inside the drawer report its owner as the target
		if ev.Target == d.opts.Owner {
			return
		}
		d.shell.OutsideClick()
	}))
	scope.Acquire("scroll_lock", d.opts.ScrollLock.Lock())
	d.scope = scope
	return nil
}

func (d *Drawer) release(trigger Trigger) {
	if d.scope == nil {
		return
	}
	scope := d.scope
	d.scope = nil
	if err := scope.Close(); err != nil {
		d.logger.Error("drawer release failed", "owner", d.opts.Owner, "trigger", trigger, "error", err)
	}
}

func (d *Drawer) Toggle() error { return d.shell.ToggleMenu() }

func (d *Drawer) Open() error { return d.shell.OpenMenu() }

func (d *Drawer) Close() bool { return d.shell.Close() }

func (d *Drawer) IsOpen() bool { return d.shell.IsOpen() }

// Holding reports whether the open-state resources are currently held.
func (d *Drawer) Holding() bool { return d.scope != nil }

// Unmount closes the drawer, releases anything still held and detaches it
// from the shell. Safe to call more than once.
func (d *Drawer) Unmount() {
	if d.closed {
		return
	}
	d.closed = true
	d.shell.closeWith(TriggerUnmount)
	d.release(TriggerUnmount)
	d.shell.detach()
}
