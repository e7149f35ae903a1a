// Package views renders the page shell and its screens with gomponents.
//
// Everything responsive is rendered for every breakpoint and tagged with the
// media classes layout.MediaCSS generates, so the first paint is right for
// any viewport. The live session takes over from there.
package views

import (
	"log/slog"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"soup_web/internal/layout"
	"soup_web/internal/theme"
)

// Gate names shared with the live session and the client script.
const (
	GateMobile  = "mobile"
	GateDesktop = "desktop"
)

// ShellConfig wires the shell renderer.
type ShellConfig struct {
	Breakpoints *layout.Breakpoints
	Grid        *layout.Grid
	Nav         *layout.NavPanel
	Styles      *layout.StyleTable
	LoginPath   string
	LivePath    string
	Logger      *slog.Logger
}

// Shell renders full pages: header, side navigation, mobile drawer and the
// page container around a content slot.
type Shell struct {
	cfg      ShellConfig
	mobile   layout.Condition
	desktop  layout.Condition
	mediaCSS string
	logger   *slog.Logger
}

// NewShell precomputes the media stylesheet and the gate conditions.
func NewShell(cfg ShellConfig) *Shell {
	if cfg.Breakpoints == nil {
		cfg.Breakpoints = layout.DefaultBreakpoints()
	}
	if cfg.Grid == nil {
		cfg.Grid = layout.NewGrid(cfg.Breakpoints, layout.DefaultGridConfig(cfg.Breakpoints))
	}
	if cfg.Nav == nil {
		cfg.Nav = layout.NewNavPanel(DefaultNavigation()...)
	}
	if cfg.Styles == nil {
		cfg.Styles = layout.NewStyleTable(cfg.Breakpoints)
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.LivePath == "" {
		cfg.LivePath = "/live"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	smallest := cfg.Breakpoints.Smallest()
	return &Shell{
		cfg:      cfg,
		mobile:   layout.At(smallest),
		desktop:  layout.GreaterThan(smallest),
		mediaCSS: layout.MediaCSS(cfg.Breakpoints),
		logger:   logger,
	}
}

// MobileCondition and DesktopCondition are the gates that swap the chrome.
func (s *Shell) MobileCondition() layout.Condition { return s.mobile }

func (s *Shell) DesktopCondition() layout.Condition { return s.desktop }

func (s *Shell) Breakpoints() *layout.Breakpoints { return s.cfg.Breakpoints }

func (s *Shell) Nav() *layout.NavPanel { return s.cfg.Nav }

func (s *Shell) LoginPath() string { return s.cfg.LoginPath }

// Page is one render request.
type Page struct {
	// Title goes in <title>; the section header uses Layout.Title.
	Title  string
	Path   string
	Auth   layout.AuthSnapshot
	Theme  theme.Mode
	Layout PageLayout

	// Viewport is the last width the client reported, 0 when unknown.
	Viewport int

	// Content fills the page container. Errors and panics are contained.
	Content func() (g.Node, error)
}

// token picks the breakpoint used for server-side sizing. Without a hint the
// desktop layout is assumed.
func (s *Shell) token(viewport int) layout.Token {
	if viewport <= 0 {
		return s.cfg.Breakpoints.Largest()
	}
	return s.cfg.Breakpoints.Resolve(viewport)
}

// Render composes the whole document.
func (s *Shell) Render(p Page) g.Node {
	tok := s.token(p.Viewport)
	items := s.cfg.Nav.Items(p.Path, p.Auth)
	cols := s.cfg.Grid.ComputeColumns(p.Layout.Width, tok)

	content := Boundary("content", s.logger, p.Content)

	return Document(DocumentProps{
		Title:    p.Title,
		Theme:    p.Theme,
		MediaCSS: s.mediaCSS,
		Path:     p.Path,
		LivePath: s.cfg.LivePath,
	},
		html.Div(html.Class("body-container"),
			Header(HeaderProps{
				Auth:      p.Auth,
				LoginPath: s.cfg.LoginPath,
				Mobile:    s.mobile,
				Desktop:   s.desktop,
			}),
			gated(GateDesktop, s.desktop,
				Sidebar(items, s.cfg.Styles, tok),
			),
			html.Main(html.ID("content"), html.Class("content"),
				PageContainer(cols, p.Layout, content),
			),
		),
		OverlayRoot(
			gated(GateMobile, s.mobile,
				MobileDrawer(items, s.cfg.Styles, s.cfg.Breakpoints.Smallest()),
			),
			LoginModal(s.cfg.LoginPath, p.Path),
		),
	)
}

// gated wraps a subtree in the media class of cond and tags it for the live
// session.
func gated(name string, cond layout.Condition, children ...g.Node) g.Node {
	return html.Div(
		html.Class("gate "+cond.Class()),
		html.Data("gate", name),
		html.Data("condition", cond.String()),
		g.Group(children),
	)
}
