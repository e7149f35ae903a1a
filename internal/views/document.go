package views

import (
	"strings"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"soup_web/internal/theme"
)

// DocumentProps configures the outer HTML document.
type DocumentProps struct {
	Title    string
	Theme    theme.Mode
	MediaCSS string
	Path     string
	LivePath string
}

// Document is the <html> skeleton shared by every page.
func Document(p DocumentProps, body ...g.Node) g.Node {
	title := "SouP"
	if p.Title != "" {
		title = p.Title + " | SouP"
	}
	mode := p.Theme
	if mode == "" {
		mode = theme.Light
	}

	return html.Doctype(
		html.HTML(
			html.Lang("ko"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
				html.TitleEl(g.Text(title)),
				html.Link(html.Rel("stylesheet"), html.Href("https://fonts.googleapis.com/icon?family=Material+Icons+Outlined")),
				html.Link(html.Rel("stylesheet"), html.Href("/static/app.css")),
				html.StyleEl(g.Raw(p.MediaCSS)),
				html.Script(html.Src("/static/app.js"), html.Defer()),
			),
			html.Body(
				html.Class("theme-"+string(mode)),
				html.Data("theme", string(mode)),
				html.Data("path", p.Path),
				html.Data("live", p.LivePath),
				g.Group(body),
			),
		),
	)
}

// icon renders a Material icon ligature.
func icon(name string) g.Node {
	return html.Span(html.Class("material-icons-outlined icon"), html.Aria("hidden", "true"), g.Text(name))
}

// String renders n to a string, for live patches that carry markup.
func String(n g.Node) (string, error) {
	var sb strings.Builder
	if err := n.Render(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
