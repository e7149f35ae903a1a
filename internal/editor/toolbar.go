package editor

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownCommand is returned by Execute for names not in the command table.
var ErrUnknownCommand = errors.New("editor: unknown command")

// Button is one toolbar control.
type Button struct {
	Command string
	Label   string
	Icon    string
	// Prompt is shown to collect the argument, empty for plain toggles.
	Prompt string
	// ActiveName and ActiveLevel feed IsActive; empty means never active.
	ActiveName  string
	ActiveLevel int
}

// Group is a cluster of related buttons.
type Group struct {
	Name    string
	Buttons []Button
}

// ButtonState is the per-render state of a button.
type ButtonState struct {
	Button
	Active   bool
	Disabled bool
}

var toolbar = []Group{
	{Name: "insert", Buttons: []Button{
		{Command: "image", Label: "Image", Icon: "image", Prompt: "URL"},
		{Command: "youtube", Label: "YouTube", Icon: "smart_display", Prompt: "Youtube Link"},
	}},
	{Name: "marks", Buttons: []Button{
		{Command: "bold", Label: "Bold", Icon: "format_bold", ActiveName: MarkBold},
		{Command: "italic", Label: "Italic", Icon: "format_italic", ActiveName: MarkItalic},
		{Command: "strike", Label: "Strikethrough", Icon: "format_strikethrough", ActiveName: MarkStrike},
		{Command: "clear", Label: "Clear formatting", Icon: "format_clear"},
	}},
	{Name: "headings", Buttons: []Button{
		{Command: "heading1", Label: "Heading 1", Icon: "looks_one", ActiveName: TypeHeading, ActiveLevel: 1},
		{Command: "heading2", Label: "Heading 2", Icon: "looks_two", ActiveName: TypeHeading, ActiveLevel: 2},
	}},
	{Name: "blocks", Buttons: []Button{
		{Command: "bulletList", Label: "Bullet list", Icon: "format_list_bulleted", ActiveName: TypeBulletList},
		{Command: "orderedList", Label: "Numbered list", Icon: "format_list_numbered", ActiveName: TypeOrderedList},
		{Command: "codeBlock", Label: "Code", Icon: "code", ActiveName: TypeCodeBlock},
		{Command: "blockquote", Label: "Quote", Icon: "format_quote", ActiveName: TypeBlockquote},
		{Command: "horizontalRule", Label: "Divider", Icon: "horizontal_rule"},
	}},
	{Name: "history", Buttons: []Button{
		{Command: "hardBreak", Label: "Line break", Icon: "splitscreen"},
		{Command: "undo", Label: "Undo", Icon: "undo"},
		{Command: "redo", Label: "Redo", Icon: "redo"},
	}},
}

// Toolbar returns the toolbar layout.
func Toolbar() []Group {
	out := make([]Group, len(toolbar))
	for i, g := range toolbar {
		out[i] = Group{Name: g.Name, Buttons: append([]Button(nil), g.Buttons...)}
	}
	return out
}

// State computes active and disabled flags for every toolbar button.
func (e *Editor) State() [][]ButtonState {
	out := make([][]ButtonState, len(toolbar))
	for i, g := range toolbar {
		row := make([]ButtonState, len(g.Buttons))
		for j, b := range g.Buttons {
			st := ButtonState{Button: b}
			if b.ActiveName != "" {
				st.Active = e.IsActive(b.ActiveName, b.ActiveLevel)
			}
			switch b.Command {
			case "undo":
				st.Disabled = !e.CanUndo()
			case "redo":
				st.Disabled = !e.CanRedo()
			}
			row[j] = st
		}
		out[i] = row
	}
	return out
}

// Execute runs a command by name. arg carries the prompt answer for
// image/youtube, the block index for select and the text for text and
// paragraph. changed reports whether the document or cursor moved.
func (e *Editor) Execute(command, arg string) (changed bool, err error) {
	switch command {
	case "image":
		return e.SetImage(arg)
	case "youtube":
		return e.SetEmbeddedVideo(arg)
	case "bold":
		return e.ToggleBold(), nil
	case "italic":
		return e.ToggleItalic(), nil
	case "strike":
		return e.ToggleStrike(), nil
	case "clear":
		return e.ClearMarks(), nil
	case "heading1":
		return e.ToggleHeading(1), nil
	case "heading2":
		return e.ToggleHeading(2), nil
	case "bulletList":
		return e.ToggleBulletList(), nil
	case "orderedList":
		return e.ToggleOrderedList(), nil
	case "codeBlock":
		return e.ToggleCodeBlock(), nil
	case "blockquote":
		return e.ToggleBlockquote(), nil
	case "horizontalRule":
		return e.InsertHorizontalRule(), nil
	case "hardBreak":
		return e.InsertHardBreak(), nil
	case "undo":
		return e.Undo(), nil
	case "redo":
		return e.Redo(), nil
	case "text":
		return e.SetText(arg), nil
	case "paragraph":
		return e.InsertParagraph(arg), nil
	case "select":
		i, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("editor: select index %q: %w", arg, err)
		}
		before := e.cursor
		e.Select(i)
		return e.cursor != before, nil
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownCommand, command)
}
