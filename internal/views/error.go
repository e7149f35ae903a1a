package views

import (
	"net/http"
	"strconv"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// ErrorPage is the standalone page served when a request fails before or
// outside the shell, such as a recovered panic or an unknown route.
func ErrorPage(status int, message string) g.Node {
	title := http.StatusText(status)
	return Document(DocumentProps{Title: title},
		html.Main(html.Class("error-page"), html.Role("alert"),
			html.H1(g.Text(strconv.Itoa(status)+" "+title)),
			html.P(g.Text(message)),
			html.A(html.Href("/"), html.Class("button"), g.Text("홈으로")),
		),
	)
}

// RenderError writes ErrorPage with status.
func RenderError(w http.ResponseWriter, status int, message string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return ErrorPage(status, message).Render(w)
}
