package views_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"soup_web/internal/editor"
	"soup_web/internal/layout"
	"soup_web/internal/theme"
	"soup_web/internal/views"
)

func render(t *testing.T, n g.Node) string {
	t.Helper()
	out, err := views.String(n)
	require.NoError(t, err)
	return out
}

func page(path string, auth layout.AuthSnapshot, content func() (g.Node, error)) views.Page {
	return views.Page{
		Title:   "프로젝트",
		Path:    path,
		Auth:    auth,
		Theme:   theme.Dark,
		Layout:  views.PageLayout{Title: "프로젝트", Description: "모든 프로젝트", Width: 900},
		Content: content,
	}
}

func TestShellRender(t *testing.T) {
	s := views.NewShell(views.ShellConfig{})
	out := render(t, s.Render(page("/projects/write", layout.AuthSnapshot{}, func() (g.Node, error) {
		return html.P(g.Text("hello")), nil
	})))

	assert.Contains(t, out, "<!doctype html>")
	assert.Contains(t, out, "<title>프로젝트 | SouP</title>")
	assert.Contains(t, out, `class="theme-dark"`)
	assert.Contains(t, out, ".media-at-sm{display:none!important}")
	assert.Contains(t, out, `data-gate="mobile"`)
	assert.Contains(t, out, `data-gate="desktop"`)
	assert.Contains(t, out, "<p>hello</p>")
	assert.Contains(t, out, "모든 프로젝트")
	assert.Contains(t, out, "min(100%, 900px) minmax(0px, 298px)")

	assert.Contains(t, out, `data-action="login"`, "anonymous users get the login button")
	assert.Contains(t, out, `data-requires-login="true"`)

	// the drawer is mounted closed inside the overlay root
	overlay := out[strings.Index(out, `id="overlay"`):]
	assert.Contains(t, overlay, `id="mobile-drawer"`)
	assert.Contains(t, overlay, `data-state="closed"`)
}

func TestShellRender_ActiveEntries(t *testing.T) {
	s := views.NewShell(views.ShellConfig{})
	auth := layout.AuthSnapshot{Authenticated: true, UserID: "7", DisplayName: "soup", AvatarURL: "https://cdn.example/a.png"}
	out := render(t, s.Render(page("/projects/write", auth, nil)))

	// projects (prefix) and write (exact) are active; home is not
	assert.Equal(t, 4, strings.Count(out, `aria-current="page"`), "two entries in sidebar and drawer")
	assert.NotContains(t, out, `data-requires-login`)
	assert.Contains(t, out, `src="https://cdn.example/a.png"`)
	assert.NotContains(t, out, `data-action="login"`)
}

func TestShellRender_ViewportHint(t *testing.T) {
	s := views.NewShell(views.ShellConfig{})
	p := page("/", layout.AuthSnapshot{}, nil)
	p.Viewport = 400
	out := render(t, s.Render(p))
	assert.Contains(t, out, `data-token="sm"`)
	assert.Contains(t, out, "padding: 0 12px")

	p.Viewport = 0
	out = render(t, s.Render(p))
	assert.Contains(t, out, `data-token="lg"`)
}

func TestBoundaryContainsFailures(t *testing.T) {
	s := views.NewShell(views.ShellConfig{})

	for name, content := range map[string]func() (g.Node, error){
		"error": func() (g.Node, error) { return nil, errors.New("boom") },
		"panic": func() (g.Node, error) { panic("editor exploded") },
		"render panic": func() (g.Node, error) {
			return g.NodeFunc(func(w io.Writer) error {
				_, _ = w.Write([]byte("<p>half"))
				panic("mid-render")
			}), nil
		},
	} {
		t.Run(name, func(t *testing.T) {
			out := render(t, s.Render(page("/", layout.AuthSnapshot{}, content)))
			assert.Contains(t, out, `class="fallback"`)
			assert.NotContains(t, out, "<p>half")
			assert.Contains(t, out, `class="header"`, "header survives")
			assert.Contains(t, out, `class="sidebar"`, "navigation survives")
		})
	}
}

func TestRenderDocument(t *testing.T) {
	doc, err := editor.ParseDocument([]byte(`{"type":"doc","content":[
		{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Title"}]},
		{"type":"paragraph","content":[{"type":"text","text":"<b>","marks":[{"type":"bold"},{"type":"italic"}]}]},
		{"type":"youtube","attrs":{"src":"https://www.youtube.com/embed/abc"}}
	]}`))
	require.NoError(t, err)

	out := render(t, views.RenderDocument(doc, 1))
	assert.Contains(t, out, "<h2>Title</h2>")
	assert.Contains(t, out, "<em><strong>&lt;b&gt;</strong></em>")
	assert.Contains(t, out, `<div class="block is-selected" data-index="1">`)
	assert.Contains(t, out, `<iframe src="https://www.youtube.com/embed/abc"`)
}

func TestEditorScreen(t *testing.T) {
	ed := editor.New(nil)
	out := render(t, views.EditorScreen(ed))

	assert.Contains(t, out, `data-command="bold"`)
	assert.Contains(t, out, `data-prompt="URL"`)
	assert.Regexp(t, `data-command="undo"[^>]*disabled`, out)
}

func TestLoginPrompt(t *testing.T) {
	out := render(t, views.LoginPrompt("https://api.soup.example", "/projects/write"))
	assert.Contains(t, out, `href="https://api.soup.example/auth/github?next=%2Fprojects%2Fwrite"`)
}
