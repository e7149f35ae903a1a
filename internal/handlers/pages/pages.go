package pages

import (
	"net/http"
	"strings"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"soup_web/internal/editor"
	"soup_web/internal/handlers"
	"soup_web/internal/views"
)

type PageHandler struct {
	h *handlers.Handler
}

func NewPageHandler(h *handlers.Handler) *PageHandler {
	return &PageHandler{h: h}
}

// Home renders the landing page.
func (p *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	page := p.h.Page(r, "", views.DefaultPageLayout)
	page.Content = func() (g.Node, error) {
		return html.Section(html.Class("home"),
			html.H1(g.Text("함께할 팀원을 찾아보세요")),
			html.P(g.Text("SouP에서 사이드 프로젝트와 스터디를 모집하고 참여할 수 있어요.")),
			html.A(html.Href("/projects"), html.Class("button button--primary"), g.Text("프로젝트 둘러보기")),
		), nil
	}
	p.h.Render(w, r, http.StatusOK, page)
}

// Projects renders the project board.
func (p *PageHandler) Projects(w http.ResponseWriter, r *http.Request) {
	page := p.h.Page(r, "프로젝트", views.PageLayout{
		Title:       "프로젝트",
		Description: "모집 중인 프로젝트와 스터디",
	})
	page.Content = func() (g.Node, error) {
		return html.Div(html.Class("empty"),
			html.P(g.Text("아직 등록된 프로젝트가 없어요.")),
			html.A(html.Href("/projects/write"), html.Class("button"), g.Text("첫 프로젝트 작성하기")),
		), nil
	}
	p.h.Render(w, r, http.StatusOK, page)
}

// Write renders the editor screen. The route requires authentication.
func (p *PageHandler) Write(w http.ResponseWriter, r *http.Request) {
	page := p.h.Page(r, "글쓰기", views.PageLayout{
		Title:       "프로젝트 작성",
		Description: "함께할 사람을 모집해 보세요",
		Width:       900,
	})
	page.Content = func() (g.Node, error) {
		return views.EditorScreen(editor.New(nil)), nil
	}
	p.h.Render(w, r, http.StatusOK, page)
}

// Login renders the login prompt. Signed-in users go straight to next.
func (p *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	next := SafeNext(r.URL.Query().Get("next"))
	page := p.h.Page(r, "로그인", views.DefaultPageLayout)
	if page.Auth.Authenticated {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	page.Content = func() (g.Node, error) {
		return views.LoginPrompt(p.h.APIBase, next), nil
	}
	p.h.Render(w, r, http.StatusOK, page)
}

// NotFound renders unknown routes inside the shell so navigation keeps
// working.
func (p *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	page := p.h.Page(r, "페이지를 찾을 수 없어요", views.DefaultPageLayout)
	page.Content = func() (g.Node, error) {
		return html.Div(html.Class("empty"),
			html.P(g.Text("요청하신 페이지를 찾을 수 없어요.")),
			html.A(html.Href("/"), html.Class("button"), g.Text("홈으로")),
		), nil
	}
	p.h.Render(w, r, http.StatusNotFound, page)
}

// SafeNext keeps post-login redirects on this site.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
