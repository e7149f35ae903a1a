package views

import (
	"net/url"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// LoginPrompt is the sign-in panel. The SouP API owns authentication, so
// the prompt only links to its providers and carries the page to return to.
func LoginPrompt(apiBase, next string) g.Node {
	return html.Div(html.Class("login"),
		html.H2(html.Class("login__title"), g.Text("로그인")),
		html.P(html.Class("login__description"), g.Text("로그인하고 프로젝트를 공유해보세요.")),
		html.Div(html.Class("login__providers"),
			provider(apiBase, "github", "GitHub로 계속하기", next),
			provider(apiBase, "google", "Google로 계속하기", next),
		),
	)
}

func provider(apiBase, name, label, next string) g.Node {
	href := apiBase + "/auth/" + name
	if next != "" {
		href += "?next=" + url.QueryEscape(next)
	}
	return html.A(html.Class("button login__provider login__provider--"+name), html.Href(href), g.Text(label))
}

// LoginModal is the prompt rendered hidden in the overlay root; the live
// session reveals it when a gated entry is activated.
func LoginModal(loginPath, next string) g.Node {
	return html.Div(
		html.ID("login-modal"),
		html.Class("modal"),
		html.Role("dialog"),
		html.Aria("modal", "true"),
		g.Attr("hidden"),
		html.Div(html.Class("modal__backdrop"), html.Data("action", "dismiss-login")),
		html.Div(html.Class("modal__panel"),
			html.A(
				html.Class("button button--primary"),
				html.Href(loginPath+"?next="+url.QueryEscape(next)),
				g.Text("로그인하러 가기"),
			),
		),
	)
}
