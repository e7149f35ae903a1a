package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"runtime/debug"
	"sync"

	"soup_web/internal/editor"
	"soup_web/internal/layout"
	"soup_web/internal/theme"
	"soup_web/internal/views"
)

// DrawerOwner is the overlay owner name of the mobile drawer. Clicks inside
// the drawer are reported with it as the target.
const DrawerOwner = "mobile-drawer"

const loginOwner = "login-modal"

// AuthSource is the auth collaborator as a session sees it.
type AuthSource interface {
	SnapshotFor(ctx context.Context, cookie string) layout.AuthSnapshot
	Revalidate(ctx context.Context, cookie string) layout.AuthSnapshot
}

// Recorder receives session metrics.
type Recorder interface {
	SessionOpened()
	SessionClosed()
	LiveEvent(kind string)
	DrawerTransition(to, trigger string)
	GateFlip(gate string, visible bool)
}

type nopRecorder struct{}

func (nopRecorder) SessionOpened() {}

func (nopRecorder) SessionClosed() {}

func (nopRecorder) LiveEvent(string) {}

func (nopRecorder) DrawerTransition(string, string) {}

func (nopRecorder) GateFlip(string, bool) {}

var errSessionPanicked = errors.New("live: session panicked")

// session is the per-tab state. Everything in it is touched only from the
// goroutine reading the tab's events.
type session struct {
	id     string
	cookie string
	deps   Deps
	logger *slog.Logger

	auth layout.AuthSnapshot
	mode theme.Mode

	shell     *layout.Shell
	listeners *layout.Listeners
	scroll    *layout.ScrollLock
	root      *layout.OverlayRoot
	drawer    *layout.Drawer
	mobile    *layout.Gate
	desktop   *layout.Gate

	popups map[string]func()
	login  *layout.OverlayClaim
	editor *editor.Editor

	batch     []Patch
	closeOnce sync.Once
}

func newSession(id, cookie string, auth layout.AuthSnapshot, mode theme.Mode, deps Deps, logger *slog.Logger) (*session, error) {
	overlays := layout.NewOverlayHost()
	root, err := overlays.Resolve(layout.DefaultOverlay)
	if err != nil {
		return nil, err
	}

	s := &session{
		id:        id,
		cookie:    cookie,
		deps:      deps,
		logger:    logger.With("session_id", id),
		auth:      auth,
		mode:      mode,
		shell:     layout.NewShell(logger),
		listeners: layout.NewListeners(),
		scroll:    &layout.ScrollLock{},
		root:      root,
		popups:    make(map[string]func()),
	}

	s.shell.OnDrawerChange(func(_, to layout.DrawerState, trigger layout.Trigger) {
		s.queue(drawerPatch(to == layout.DrawerOpen))
		s.deps.Metrics.DrawerTransition(to.String(), string(trigger))
	})

	bps := deps.Shell.Breakpoints()
	s.mobile = layout.NewGate(views.GateMobile, bps, deps.Shell.MobileCondition(), layout.GateOptions{
		Mode:     layout.GateDynamic,
		Mount:    s.mountDrawer,
		OnChange: s.gateChanged(views.GateMobile),
	})
	s.desktop = layout.NewGate(views.GateDesktop, bps, deps.Shell.DesktopCondition(), layout.GateOptions{
		Mode:     layout.GateKeepMounted,
		OnChange: s.gateChanged(views.GateDesktop),
	})
	return s, nil
}

// mountDrawer runs whenever the mobile chrome mounts. The drawer lives in
// the gate's scope, so hiding the mobile chrome unmounts it and releases
// whatever it holds.
func (s *session) mountDrawer(scope *layout.Scope) {
	d, err := layout.NewDrawer(s.shell, layout.DrawerOptions{
		Owner:      DrawerOwner,
		Root:       s.root,
		Listeners:  s.listeners,
		ScrollLock: s.scroll,
		Logger:     s.logger,
	})
	if err != nil {
		s.logger.Error("failed to mount drawer", "error", err)
		return
	}
	s.drawer = d
	scope.Acquire("drawer", func() {
		d.Unmount()
		s.drawer = nil
	})
}

func (s *session) gateChanged(name string) func(bool) {
	return func(visible bool) {
		s.queue(gatePatch(name, visible))
		s.deps.Metrics.GateFlip(name, visible)
	}
}

func (s *session) queue(p Patch) {
	s.batch = append(s.batch, p)
}

// handle applies one event and returns the patches it produced, in order.
// A panic is contained: the session reports it and asks to be closed.
func (s *session) handle(ctx context.Context, ev Event) (patches []Patch, err error) {
	s.batch = nil
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("live event panicked",
				"type", ev.Type,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			s.batch = append(s.batch, errorPatch("something went wrong, reconnecting"))
			err = errSessionPanicked
		}
		patches, s.batch = s.batch, nil
	}()

	s.deps.Metrics.LiveEvent(ev.Type)

	switch ev.Type {
	case EventHello:
		s.shell.RouteChanged(ev.Path)
		s.resize(ev.Width)
	case EventResize:
		s.resize(ev.Width)
	case EventMenu:
		s.toggleMenu()
	case EventClose:
		if s.drawer != nil {
			s.drawer.Close()
		}
	case EventOutsideClick:
		s.listeners.Dispatch(layout.Event{Kind: layout.EventOutsideClick, Target: ev.Target})
	case EventRoute:
		s.shell.RouteChanged(ev.Path)
	case EventNav:
		s.activate(ctx, ev.Index)
	case EventLogin:
		s.showLogin()
	case EventDismissLogin:
		s.dismissLogin()
	case EventPopup:
		s.togglePopup(ev.Name)
	case EventTheme:
		s.toggleTheme()
	case EventEditor:
		s.runEditor(ev.Command, ev.Arg)
	default:
		s.queue(errorPatch(fmt.Sprintf("unknown event %q", ev.Type)))
	}
	return s.batch, nil
}

func (s *session) resize(width int) {
	s.mobile.Update(width)
	s.desktop.Update(width)
	s.listeners.Dispatch(layout.Event{Kind: layout.EventResize, Width: width})
}

func (s *session) toggleMenu() {
	if s.drawer == nil {
		return
	}
	if err := s.drawer.Toggle(); err != nil {
		s.logger.Warn("drawer did not open", "error", err)
		s.queue(errorPatch("menu is unavailable right now"))
	}
}

// activate runs a navigation entry. An anonymous user trying a gated entry
// gets one revalidation first, which is the retry path after a failed or
// slow auth fetch.
func (s *session) activate(ctx context.Context, index int) {
	entries := s.deps.Shell.Nav().Entries()
	if index >= 0 && index < len(entries) && entries[index].RequiresAuth && !s.auth.Authenticated {
		s.auth = s.deps.Auth.Revalidate(ctx, s.cookie)
	}

	outcome, err := s.deps.Shell.Nav().Activate(index, s.auth,
		layout.NavigatorFunc(s.navigate),
		layout.LoginPrompterFunc(s.showLogin),
	)
	if err != nil {
		s.queue(errorPatch(err.Error()))
		return
	}
	s.logger.Debug("navigation entry activated", "index", index, "outcome", outcome.String())
}

// navigate tells the page to go to path and observes the route change in
// the same batch, so the drawer is already closed when the page moves.
func (s *session) navigate(path string) {
	s.queue(navigatePatch(path))
	s.shell.RouteChanged(path)
}

// showLogin raises the login modal in the overlay root. When the root is
// held (the drawer is open) the page goes to the login screen instead.
func (s *session) showLogin() {
	if s.login != nil {
		return
	}
	claim, err := s.root.Claim(loginOwner)
	if errors.Is(err, layout.ErrOverlayClaimed) {
		next := s.shell.CurrentPath()
		s.navigate(s.deps.Shell.LoginPath() + "?next=" + url.QueryEscape(next))
		return
	}
	if err != nil {
		s.queue(errorPatch(err.Error()))
		return
	}
	s.login = claim
	s.queue(loginPatch(true))
}

func (s *session) dismissLogin() {
	if s.login == nil {
		return
	}
	s.login.Release()
	s.login = nil
	s.queue(loginPatch(false))
}

// togglePopup opens or closes a header popup. An open popup listens for
// outside clicks and stops listening when it closes.
func (s *session) togglePopup(name string) {
	if _, open := s.popups[name]; open {
		s.closePopup(name)
		return
	}
	if !knownPopup(name) {
		s.queue(errorPatch(fmt.Sprintf("unknown popup %q", name)))
		return
	}

	own := "popup-" + name
	s.popups[name] = s.listeners.Add(layout.EventOutsideClick, func(ev layout.Event) {
		if ev.Target != own {
			s.closePopup(name)
		}
	})
	s.queue(popupPatch(name, true))
}

func (s *session) closePopup(name string) {
	remove, ok := s.popups[name]
	if !ok {
		return
	}
	delete(s.popups, name)
	remove()
	s.queue(popupPatch(name, false))
}

func knownPopup(name string) bool {
	for _, p := range views.Popups {
		if p == name {
			return true
		}
	}
	return false
}

func (s *session) toggleTheme() {
	from := s.mode
	to := from.Opposite()

	var after func()
	if s.deps.ThemeHook != nil {
		after = s.deps.ThemeHook(from, to)
	}
	s.mode = to
	s.queue(themePatch(from, to))
	if after != nil {
		after()
	}
}

func (s *session) runEditor(command, arg string) {
	if s.editor == nil {
		s.editor = editor.New(nil)
	}
	if _, err := s.editor.Execute(command, arg); err != nil {
		s.queue(errorPatch(err.Error()))
	}

	p, err := editorPatch(s.editor)
	if err != nil {
		s.logger.Error("failed to build editor patch", "error", err)
		s.queue(errorPatch("editor is unavailable right now"))
		return
	}
	s.queue(p)
}

// close releases everything the session holds. It runs once; the drawer is
// unmounted through its gate scope.
func (s *session) close() {
	s.closeOnce.Do(func() {
		for name := range s.popups {
			remove := s.popups[name]
			delete(s.popups, name)
			remove()
		}
		if err := s.mobile.Close(); err != nil {
			s.logger.Error("failed to unmount mobile chrome", "error", err)
		}
		if err := s.desktop.Close(); err != nil {
			s.logger.Error("failed to unmount desktop chrome", "error", err)
		}
		if s.login != nil {
			s.login.Release()
			s.login = nil
		}
		s.batch = nil
	})
}
