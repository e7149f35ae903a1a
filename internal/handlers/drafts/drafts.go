package drafts

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"soup_web/internal/api"
	"soup_web/internal/config"
	"soup_web/internal/editor"
	"soup_web/internal/handlers"
	"soup_web/internal/observability"
)

const (
	maxTitleLength = 100
	maxDraftSize   = 1 << 20
)

type SaveDraftRequest struct {
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

type DraftHandler struct {
	h *handlers.Handler
}

func NewDraftHandler(h *handlers.Handler) *DraftHandler {
	return &DraftHandler{h: h}
}

// Save forwards an editor document to the SouP API on behalf of the
// signed-in user.
// Endpoint: POST /api/drafts
func (d *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), d.h.Logger)

	// Browsers cannot send application/json cross-site without a
	// preflight, which this endpoint never answers.
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
		config.RespondError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", "", nil)
		return
	}

	var req SaveDraftRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDraftSize)).Decode(&req); err != nil {
		config.RespondBadRequest(w, "Invalid request payload", err.Error())
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		config.RespondBadRequest(w, "Title is required", "")
		return
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLength {
		config.RespondBadRequest(w, "Title is too long", "")
		return
	}

	// the API stores the document verbatim
	doc, err := editor.ParseDocument(req.Content)
	if err != nil {
		config.RespondBadRequest(w, "Invalid document", err.Error())
		return
	}
	if blank(doc) {
		config.RespondBadRequest(w, "Document is empty", "")
		return
	}

	res, err := d.h.Drafts.SaveProject(r.Context(), r.Header.Get("Cookie"), api.Draft{
		Title:   req.Title,
		Content: req.Content,
	})
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		config.RespondUnauthorized(w, "Please sign in again")
		return
	case err != nil:
		logger.Error("failed to save draft", "error", err)
		config.RespondBadGateway(w, "Could not save the draft, please try again")
		return
	}

	logger.Info("draft saved", "project_id", res.ID)
	config.RespondCreated(w, "draft saved", map[string]any{"id": res.ID})
}

// blank reports whether doc holds nothing but empty paragraphs.
func blank(doc *editor.Node) bool {
	for _, n := range doc.Content {
		if n.Type != editor.TypeParagraph || strings.TrimSpace(n.PlainText()) != "" {
			return false
		}
	}
	return true
}
