package views

import (
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"soup_web/internal/layout"
)

// Header popups. Each one is closed by a click outside of it.
const (
	PopupNotifications = "notifications"
	PopupMessages      = "messages"
)

// Popups lists the header popups in render order.
var Popups = []string{PopupNotifications, PopupMessages}

// HeaderProps configures the fixed page header.
type HeaderProps struct {
	Auth      layout.AuthSnapshot
	LoginPath string
	Mobile    layout.Condition
	Desktop   layout.Condition
}

// Header renders the logo, the mobile menu toggle, the desktop search and
// popups, and either the login button or the signed-in user.
func Header(p HeaderProps) g.Node {
	return html.Header(html.Class("header"),
		html.Div(html.Class("header__brand"),
			gated(GateMobile, p.Mobile,
				html.Button(
					html.ID("menu-toggle"),
					html.Type("button"),
					html.Class("button button--icon button--transparent"),
					html.Data("action", "menu"),
					html.Aria("label", "메뉴"),
					html.Aria("controls", "mobile-drawer"),
					html.Aria("expanded", "false"),
					icon("menu"),
				),
				html.Div(html.Class("header__divider")),
			),
			html.A(html.Class("header__logo"), html.Href("/"), g.Text("SouP")),
		),
		html.Div(html.Class("header__menu"),
			gated(GateDesktop, p.Desktop,
				html.A(html.Class("button header__search"), html.Href("/projects"),
					icon("search"),
					g.Text("프로젝트 찾아보기"),
				),
				popup(PopupNotifications, "notifications", "알림"),
				popup(PopupMessages, "mail", "메시지"),
			),
			html.Button(
				html.ID("theme-toggle"),
				html.Type("button"),
				html.Class("button button--icon button--transparent"),
				html.Data("action", "theme"),
				html.Aria("label", "테마 전환"),
				icon("dark_mode"),
			),
			account(p.Auth, p.LoginPath),
		),
	)
}

func popup(name, iconName, title string) g.Node {
	return html.Div(html.Class("popup"), html.Data("popup", name),
		html.Button(
			html.Type("button"),
			html.Class("button button--icon"),
			html.Data("action", "popup"),
			html.Data("name", name),
			html.Aria("label", title),
			icon(iconName),
		),
		html.Div(
			html.ID("popup-"+name),
			html.Class("popup__panel"),
			g.Attr("hidden"),
			html.Div(html.Class("popup__title"), g.Text(title)),
			html.Hr(),
			html.P(html.Class("popup__empty"), g.Text("새로운 소식이 없습니다")),
		),
	)
}

func account(auth layout.AuthSnapshot, loginPath string) g.Node {
	if !auth.Authenticated {
		return html.A(
			html.Class("button button--primary"),
			html.Href(loginPath),
			html.Data("action", "login"),
			g.Text("로그인"),
		)
	}

	name := auth.DisplayName
	if name == "" {
		name = auth.UserID
	}
	return html.Div(html.Class("header__user"), html.Data("user", auth.UserID),
		g.If(auth.AvatarURL != "",
			html.Img(html.Class("avatar"), html.Src(auth.AvatarURL), html.Alt(name)),
		),
		html.Span(html.Class("header__username"), g.Text(name)),
	)
}
