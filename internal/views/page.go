package views

import (
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"soup_web/internal/layout"
)

// PageLayout describes a routed page. A zero Width uses the grid default;
// an empty Title renders no section header.
type PageLayout struct {
	Title       string
	Description string
	Width       int
}

// DefaultPageLayout has no section header and the default width.
var DefaultPageLayout = PageLayout{}

// PageContainer centers its children in the page grid.
func PageContainer(cols layout.Columns, p PageLayout, children ...g.Node) g.Node {
	return html.Div(
		html.Class("page-container"),
		html.Style(cols.Style()),
		html.Data("token", string(cols.Token)),
		g.If(p.Title != "", SectionHeader(p.Title, p.Description)),
		g.Group(children),
	)
}

// SectionHeader is the title block at the top of a page.
func SectionHeader(title, description string) g.Node {
	return html.Div(html.Class("section-header"),
		html.H1(html.Class("section-header__title"), g.Text(title)),
		g.If(description != "",
			html.P(html.Class("section-header__description"), g.Text(description)),
		),
	)
}

// OverlayRoot is the single attachment point drawers and modals render into.
func OverlayRoot(children ...g.Node) g.Node {
	return html.Div(
		html.ID(layout.DefaultOverlay),
		html.Class("overlay-root"),
		html.Data("overlay", layout.DefaultOverlay),
		g.Group(children),
	)
}
