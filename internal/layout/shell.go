package layout

import (
	"errors"
	"log/slog"
)

// ErrDrawerAttached is returned when a second drawer is attached to a shell.
var ErrDrawerAttached = errors.New("layout: shell already has a drawer")

// DrawerState is the mobile drawer state owned by the shell.
type DrawerState int

const (
	DrawerClosed DrawerState = iota
	DrawerOpen
)

func (s DrawerState) String() string {
	if s == DrawerOpen {
		return "open"
	}
	return "closed"
}

// Trigger records why the drawer changed state.
type Trigger string

const (
	TriggerMenu         Trigger = "menu"
	TriggerOpen         Trigger = "open"
	TriggerClose        Trigger = "close"
	TriggerOutsideClick Trigger = "outside_click"
	TriggerRouteChange  Trigger = "route_change"
	TriggerUnmount      Trigger = "unmount"
)

// DrawerObserver is notified after every actual state transition.
type DrawerObserver func(from, to DrawerState, trigger Trigger)

// Shell owns the page skeleton state: the drawer state machine and the last
// observed route. It is not safe for concurrent use; callers serialize
// events (one live session per tab does).
type Shell struct {
	logger *slog.Logger

	state     DrawerState
	path      string
	routeSeen bool

	beforeOpen func() error
	afterClose func(Trigger)
	observers  []DrawerObserver
}

// NewShell returns a shell in the Closed state with no route observed.
func NewShell(logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{logger: logger}
}

func (s *Shell) State() DrawerState { return s.state }

func (s *Shell) IsOpen() bool { return s.state == DrawerOpen }

// CurrentPath is the last observed normalised path, "" before the first.
func (s *Shell) CurrentPath() string { return s.path }

// OnDrawerChange registers an observer.
func (s *Shell) OnDrawerChange(fn DrawerObserver) {
	s.observers = append(s.observers, fn)
}

// attach installs the open guard and close hook of a drawer controller.
func (s *Shell) attach(beforeOpen func() error, afterClose func(Trigger)) error {
	if s.beforeOpen != nil || s.afterClose != nil {
		return ErrDrawerAttached
	}
	s.beforeOpen = beforeOpen
	s.afterClose = afterClose
	return nil
}

func (s *Shell) detach() {
	s.beforeOpen = nil
	s.afterClose = nil
}

// ToggleMenu flips the drawer, as the header menu button does.
func (s *Shell) ToggleMenu() error {
	if s.state == DrawerOpen {
		s.transition(DrawerClosed, TriggerMenu)
		return nil
	}
	return s.transition(DrawerOpen, TriggerMenu)
}

// OpenMenu opens the drawer. Opening an open drawer is a no-op.
func (s *Shell) OpenMenu() error {
	return s.transition(DrawerOpen, TriggerOpen)
}

// Close is the explicit close. It reports whether the state changed.
func (s *Shell) Close() bool {
	return s.closeWith(TriggerClose)
}

// OutsideClick closes an open drawer.
func (s *Shell) OutsideClick() bool {
	return s.closeWith(TriggerOutsideClick)
}

// RouteChanged observes the current path. The first observation only
// records it; later observations close the drawer when the path differs
// after normalisation, so query or fragment-only changes keep it open.
// The close happens before RouteChanged returns.
func (s *Shell) RouteChanged(path string) bool {
	next := NormalizePath(path)
	if !s.routeSeen {
		s.routeSeen = true
		s.path = next
		return false
	}
	if next == s.path {
		return false
	}
	s.path = next
	return s.closeWith(TriggerRouteChange)
}

func (s *Shell) closeWith(trigger Trigger) bool {
	if s.state == DrawerClosed {
		return false
	}
	s.transition(DrawerClosed, trigger)
	return true
}

func (s *Shell) transition(to DrawerState, trigger Trigger) error {
	from := s.state
	if from == to {
		return nil
	}

	if to == DrawerOpen && s.beforeOpen != nil {
		if err := s.beforeOpen(); err != nil {
			s.logger.Debug("drawer open rejected", "trigger", trigger, "error", err)
			return err
		}
	}

	s.state = to
	if to == DrawerClosed && s.afterClose != nil {
		s.afterClose(trigger)
	}

	s.logger.Debug("drawer transition", "from", from.String(), "to", to.String(), "trigger", trigger)
	for _, fn := range s.observers {
		fn(from, to, trigger)
	}
	return nil
}
