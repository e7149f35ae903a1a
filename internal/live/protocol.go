// Package live runs one WebSocket session per browser tab. A session owns
// the tab's navigation shell, drawer, render gates, header popups and
// editor, feeds them the UI events the page reports and answers every
// event with one batch of patches.
package live

import (
	"encoding/json"

	"soup_web/internal/editor"
	"soup_web/internal/theme"
	"soup_web/internal/views"
)

// Client event types.
const (
	EventHello        = "hello"
	EventResize       = "resize"
	EventMenu         = "menu"
	EventClose        = "close"
	EventOutsideClick = "outside_click"
	EventRoute        = "route"
	EventNav          = "nav"
	EventLogin        = "login"
	EventDismissLogin = "dismiss_login"
	EventPopup        = "popup"
	EventTheme        = "theme"
	EventEditor       = "editor"
)

// Patch ops.
const (
	OpDrawer   = "drawer"
	OpGate     = "gate"
	OpNavigate = "navigate"
	OpLogin    = "login"
	OpPopup    = "popup"
	OpTheme    = "theme"
	OpEditor   = "editor"
	OpError    = "error"
)

// Event is a message from the page.
type Event struct {
	Type    string `json:"type"`
	Path    string `json:"path,omitempty"`
	Width   int    `json:"width,omitempty"`
	Target  string `json:"target,omitempty"`
	Index   int    `json:"index,omitempty"`
	Name    string `json:"name,omitempty"`
	Command string `json:"command,omitempty"`
	Arg     string `json:"arg,omitempty"`
}

// Patch is one state change for the page to apply. Only the fields of its
// op are set.
type Patch struct {
	Op      string          `json:"op"`
	Name    string          `json:"name,omitempty"`
	Open    *bool           `json:"open,omitempty"`
	Visible *bool           `json:"visible,omitempty"`
	Path    string          `json:"path,omitempty"`
	Mode    theme.Mode      `json:"mode,omitempty"`
	From    theme.Mode      `json:"from,omitempty"`
	Doc     json.RawMessage `json:"doc,omitempty"`
	HTML    string          `json:"html,omitempty"`
	Toolbar string          `json:"toolbar,omitempty"`
	Active  map[string]bool `json:"active,omitempty"`
	CanUndo *bool           `json:"can_undo,omitempty"`
	CanRedo *bool           `json:"can_redo,omitempty"`
	Message string          `json:"message,omitempty"`
}

func flag(b bool) *bool { return &b }

func drawerPatch(open bool) Patch { return Patch{Op: OpDrawer, Open: flag(open)} }

func gatePatch(name string, visible bool) Patch {
	return Patch{Op: OpGate, Name: name, Visible: flag(visible)}
}

func navigatePatch(path string) Patch { return Patch{Op: OpNavigate, Path: path} }

func loginPatch(open bool) Patch { return Patch{Op: OpLogin, Open: flag(open)} }

func popupPatch(name string, open bool) Patch {
	return Patch{Op: OpPopup, Name: name, Open: flag(open)}
}

func themePatch(from, to theme.Mode) Patch { return Patch{Op: OpTheme, Mode: to, From: from} }

func errorPatch(message string) Patch { return Patch{Op: OpError, Message: message} }

// editorPatch carries the document both as JSON, for saving, and as
// rendered markup with the toolbar state.
func editorPatch(ed *editor.Editor) (Patch, error) {
	doc, err := ed.JSON()
	if err != nil {
		return Patch{}, err
	}
	body, err := views.String(views.RenderDocument(ed.Document(), ed.Cursor()))
	if err != nil {
		return Patch{}, err
	}
	state := ed.State()
	toolbar, err := views.String(views.EditorToolbar(state))
	if err != nil {
		return Patch{}, err
	}

	active := make(map[string]bool)
	for _, row := range state {
		for _, b := range row {
			if b.Active {
				active[b.Command] = true
			}
		}
	}
	return Patch{
		Op:      OpEditor,
		Doc:     doc,
		HTML:    body,
		Toolbar: toolbar,
		Active:  active,
		CanUndo: flag(ed.CanUndo()),
		CanRedo: flag(ed.CanRedo()),
	}, nil
}
