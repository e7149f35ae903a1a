package preferences

import (
	"net/http"
	"net/url"
	"strings"

	"soup_web/internal/config"
	"soup_web/internal/handlers"
	"soup_web/internal/theme"
)

type ThemeHandler struct {
	h *handlers.Handler
}

func NewThemeHandler(h *handlers.Handler) *ThemeHandler {
	return &ThemeHandler{h: h}
}

// Set persists the theme. With a mode form value it stores that mode (the
// live session already switched the page); without one it toggles, which
// is the no-script path of the header button.
// Endpoint: POST /theme
func (t *ThemeHandler) Set(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		config.RespondBadRequest(w, "Invalid form", err.Error())
		return
	}

	var (
		mode theme.Mode
		err  error
	)
	if raw := r.PostForm.Get("mode"); raw != "" {
		mode, err = theme.ParseMode(raw)
		if err != nil {
			config.RespondBadRequest(w, "Invalid theme mode", err.Error())
			return
		}
		err = t.h.Themes.Set(w, mode)
	} else {
		mode, err = t.h.Themes.Toggle(w, r, t.h.ThemeHook)
	}
	if err != nil {
		config.RespondInternalError(w, err, t.h.Logger)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		config.RespondJSON(w, http.StatusOK, map[string]string{"mode": string(mode)})
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo returns the referring page when it is on this host.
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || ref.Path == "" {
		return "/"
	}
	return ref.RequestURI()
}
