package views

import (
	"strconv"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"soup_web/internal/layout"
)

// DefaultNavigation is the side navigation of the site.
func DefaultNavigation() []layout.Entry {
	return []layout.Entry{
		{Label: "홈", Target: "/", Exact: true, Icon: "home"},
		{Label: "프로젝트", Target: "/projects", Icon: "article"},
		{Label: "글쓰기", Target: "/projects/write", Exact: true, RequiresAuth: true, Icon: "edit"},
	}
}

// Sidebar is the persistent side panel shown above the smallest breakpoint.
func Sidebar(items []layout.Item, styles *layout.StyleTable, tok layout.Token) g.Node {
	return html.Aside(html.Class("sidebar"),
		navList(items, styles, tok),
	)
}

// MobileDrawer is the overlay variant of the side panel. It is always
// rendered closed; the live session opens it.
func MobileDrawer(items []layout.Item, styles *layout.StyleTable, tok layout.Token) g.Node {
	return html.Div(
		html.ID("mobile-drawer"),
		html.Class("drawer"),
		html.Data("state", layout.DrawerClosed.String()),
		g.Attr("hidden"),
		html.Div(html.Class("drawer__backdrop"), html.Data("action", "close")),
		html.Aside(html.Class("drawer__panel sidebar"), html.Role("dialog"), html.Aria("modal", "true"),
			navList(items, styles, tok),
		),
	)
}

func navList(items []layout.Item, styles *layout.StyleTable, tok layout.Token) g.Node {
	return html.Nav(html.Class("nav"),
		html.Ul(
			g.Map(items, func(it layout.Item) g.Node {
				return navItem(it, styles.ForItem(it, tok))
			}),
		),
	)
}

// navItem renders one entry. Entries that need a login keep their href so
// they work without the live session; the server redirects to the login
// page in that case.
func navItem(it layout.Item, style layout.Style) g.Node {
	class := style.Class
	if style.Compact {
		class += " nav-item--compact"
	}
	return html.Li(
		html.A(
			html.Class(class),
			html.Href(it.Target),
			html.Data("nav-index", strconv.Itoa(it.Index)),
			g.If(it.Active, html.Aria("current", "page")),
			g.If(it.RequiresLogin, html.Data("requires-login", "true")),
			g.If(it.Icon != "", icon(it.Icon)),
			html.Span(html.Class("nav-item__label"), g.Text(it.Label)),
		),
	)
}
