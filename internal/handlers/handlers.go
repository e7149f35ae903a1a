package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"soup_web/internal/api"
	"soup_web/internal/auth"
	"soup_web/internal/theme"
	"soup_web/internal/views"
)

// ViewportCookie holds the last viewport width the client reported. Pages
// use it to size the first render; it is only a hint.
const ViewportCookie = "soup_vw"

// DraftSaver forwards editor drafts to the SouP API.
type DraftSaver interface {
	SaveProject(ctx context.Context, cookie string, draft api.Draft) (api.SaveResult, error)
}

type Handler struct {
	Shell     *views.Shell
	Themes    *theme.Store
	ThemeHook theme.TransitionHook
	Drafts    DraftSaver
	APIBase   string
	Logger    *slog.Logger
}

func NewHandler(shell *views.Shell, themes *theme.Store, drafts DraftSaver, apiBase string, l *slog.Logger) *Handler {
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		Shell:   shell,
		Themes:  themes,
		Drafts:  drafts,
		APIBase: apiBase,
		Logger:  l,
	}
}

// Viewport returns the width hint from the request, 0 when absent or
// malformed.
func Viewport(r *http.Request) int {
	c, err := r.Cookie(ViewportCookie)
	if err != nil {
		return 0
	}
	w, err := strconv.Atoi(c.Value)
	if err != nil || w < 0 || w > 10000 {
		return 0
	}
	return w
}

// Page fills the request-derived fields of a shell page.
func (h *Handler) Page(r *http.Request, title string, layout views.PageLayout) views.Page {
	return views.Page{
		Title:    title,
		Path:     r.URL.Path,
		Auth:     auth.FromContext(r.Context()),
		Theme:    h.Themes.Current(r),
		Layout:   layout,
		Viewport: Viewport(r),
	}
}

// Render writes a full shell page.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request, status int, p views.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := h.Shell.Render(p).Render(w); err != nil {
		h.Logger.Error("failed to render page", "path", p.Path, "error", err)
	}
}
