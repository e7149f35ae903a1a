package views

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// Boundary isolates a content component from the shell around it. The
// content is rendered into a buffer first; if it returns an error or panics
// nothing of it reaches the page and an inline fallback panel is written
// instead, leaving the header and navigation intact.
func Boundary(name string, logger *slog.Logger, content func() (g.Node, error)) g.Node {
	if logger == nil {
		logger = slog.Default()
	}
	return g.NodeFunc(func(w io.Writer) error {
		if content == nil {
			return nil
		}
		var buf bytes.Buffer
		if err := renderContained(&buf, content); err != nil {
			logger.Error("component failed to render", "component", name, "error", err)
			return Fallback().Render(w)
		}
		_, err := buf.WriteTo(w)
		return err
	})
}

func renderContained(w io.Writer, content func() (g.Node, error)) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()

	n, err := content()
	if err != nil {
		return err
	}
	if n == nil {
		return nil
	}
	return n.Render(w)
}

// Fallback is the panel shown in place of a failed component.
func Fallback() g.Node {
	return html.Div(html.Class("fallback"), html.Role("alert"),
		icon("error_outline"),
		html.P(g.Text("이 영역을 불러오지 못했습니다.")),
		html.A(html.Class("button"), html.Href(""), g.Text("다시 시도")),
	)
}
