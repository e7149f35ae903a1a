package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const defaultHistoryLimit = 100

// ErrInvalidImageURL is returned by SetImage for non-http sources.
var ErrInvalidImageURL = errors.New("editor: invalid image url")

type revision struct {
	doc    *Node
	cursor int
}

// Editor applies commands to a document. The cursor is the index of the
// top-level block commands act on. Every command is safe to repeat: a
// command with nothing to do leaves the document and history untouched.
type Editor struct {
	doc    *Node
	cursor int

	undo  []revision
	redo  []revision
	limit int
}

// New creates an editor over doc (nil means an empty document).
func New(doc *Node) *Editor {
	if doc == nil || doc.Type != TypeDoc {
		doc = NewDocument()
	}
	if len(doc.Content) == 0 {
		doc.Content = []*Node{{Type: TypeParagraph}}
	}
	return &Editor{doc: doc.Clone(), limit: defaultHistoryLimit}
}

// Document returns a copy of the current tree.
func (e *Editor) Document() *Node { return e.doc.Clone() }

// JSON serialises the current tree.
func (e *Editor) JSON() ([]byte, error) { return json.Marshal(e.doc) }

func (e *Editor) Cursor() int { return e.cursor }

func (e *Editor) CanUndo() bool { return len(e.undo) > 0 }

func (e *Editor) CanRedo() bool { return len(e.redo) > 0 }

func (e *Editor) current() *Node { return e.doc.Content[e.cursor] }

// Select moves the cursor, clamped to the document. It is not recorded in
// history.
func (e *Editor) Select(index int) {
	e.cursor = max(0, min(index, len(e.doc.Content)-1))
}

// apply runs fn on a working copy and commits it only if fn reports a change.
func (e *Editor) apply(fn func(doc *Node) (cursor int, changed bool)) bool {
	work := e.doc.Clone()
	cursor, changed := fn(work)
	if !changed {
		return false
	}

	e.undo = append(e.undo, revision{doc: e.doc, cursor: e.cursor})
	if len(e.undo) > e.limit {
		e.undo = e.undo[len(e.undo)-e.limit:]
	}
	e.redo = nil
	e.doc = work
	e.Select(cursor)
	return true
}

// Undo restores the previous revision. It reports false on empty history.
func (e *Editor) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	prev := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, revision{doc: e.doc, cursor: e.cursor})
	e.doc, e.cursor = prev.doc, prev.cursor
	return true
}

// Redo re-applies an undone revision.
func (e *Editor) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	next := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.undo = append(e.undo, revision{doc: e.doc, cursor: e.cursor})
	e.doc, e.cursor = next.doc, next.cursor
	return true
}

func (e *Editor) ToggleBold() bool   { return e.toggleMark(MarkBold) }
func (e *Editor) ToggleItalic() bool { return e.toggleMark(MarkItalic) }
func (e *Editor) ToggleStrike() bool { return e.toggleMark(MarkStrike) }

// toggleMark removes mark when every text node in the block has it and
// adds it everywhere otherwise. Code blocks take no marks.
func (e *Editor) toggleMark(mark string) bool {
	on := !e.markActive(mark)
	return e.apply(func(doc *Node) (int, bool) {
		block := doc.Content[e.cursor]
		changed := false
		block.walkText(func(t *Node) {
			if t.HasMark(mark) != on {
				t.setMark(mark, on)
				changed = true
			}
		})
		return e.cursor, changed && block.Type != TypeCodeBlock
	})
}

// ClearMarks strips all marks from the current block.
func (e *Editor) ClearMarks() bool {
	return e.apply(func(doc *Node) (int, bool) {
		changed := false
		doc.Content[e.cursor].walkText(func(t *Node) {
			if len(t.Marks) > 0 {
				t.Marks = nil
				changed = true
			}
		})
		return e.cursor, changed
	})
}

func (e *Editor) markActive(mark string) bool {
	if e.current().Type == TypeCodeBlock {
		return false
	}
	seen, all := false, true
	e.current().walkText(func(t *Node) {
		seen = true
		if !t.HasMark(mark) {
			all = false
		}
	})
	return seen && all
}

// ToggleHeading turns the current textblock into a heading of level, or
// back into a paragraph when it already is one. Levels are 1 and 2.
func (e *Editor) ToggleHeading(level int) bool {
	if level < 1 || level > 2 {
		return false
	}
	return e.apply(func(doc *Node) (int, bool) {
		tb := doc.Content[e.cursor].firstTextblock()
		if tb == nil {
			return e.cursor, false
		}
		if tb.Type == TypeHeading && tb.headingLevel() == level {
			tb.Type = TypeParagraph
			tb.Attrs = nil
			return e.cursor, true
		}
		tb.Type = TypeHeading
		tb.Attrs = map[string]any{"level": level}
		return e.cursor, true
	})
}

func (e *Editor) ToggleBulletList() bool  { return e.toggleList(TypeBulletList) }
func (e *Editor) ToggleOrderedList() bool { return e.toggleList(TypeOrderedList) }

func (e *Editor) toggleList(listType string) bool {
	return e.apply(func(doc *Node) (int, bool) {
		block := doc.Content[e.cursor]
		switch block.Type {
		case listType:
			// unwrap: each item's children become top-level blocks
			var lifted []*Node
			for _, item := range block.Content {
				lifted = append(lifted, item.Content...)
			}
			if len(lifted) == 0 {
				lifted = []*Node{{Type: TypeParagraph}}
			}
			doc.Content = splice(doc.Content, e.cursor, lifted...)
			return e.cursor, true
		case TypeBulletList, TypeOrderedList:
			block.Type = listType
			return e.cursor, true
		case TypeParagraph, TypeHeading:
			doc.Content[e.cursor] = &Node{Type: listType, Content: []*Node{
				{Type: TypeListItem, Content: []*Node{block}},
			}}
			return e.cursor, true
		}
		return e.cursor, false
	})
}

// ToggleBlockquote wraps the current block in a quote or unwraps it.
func (e *Editor) ToggleBlockquote() bool {
	return e.apply(func(doc *Node) (int, bool) {
		block := doc.Content[e.cursor]
		switch block.Type {
		case TypeBlockquote:
			inner := block.Content
			if len(inner) == 0 {
				inner = []*Node{{Type: TypeParagraph}}
			}
			doc.Content = splice(doc.Content, e.cursor, inner...)
			return e.cursor, true
		case TypeHorizontalRule, TypeImage, TypeYoutube:
			return e.cursor, false
		}
		doc.Content[e.cursor] = &Node{Type: TypeBlockquote, Content: []*Node{block}}
		return e.cursor, true
	})
}

// ToggleCodeBlock converts the current textblock to a code block (dropping
// marks) or back to a paragraph.
func (e *Editor) ToggleCodeBlock() bool {
	return e.apply(func(doc *Node) (int, bool) {
		block := doc.Content[e.cursor]
		if block.Type == TypeCodeBlock {
			block.Type = TypeParagraph
			block.Attrs = nil
			return e.cursor, true
		}
		if block.Type != TypeParagraph && block.Type != TypeHeading {
			return e.cursor, false
		}
		text := block.PlainText()
		code := &Node{Type: TypeCodeBlock, Attrs: map[string]any{"language": nil}}
		if text != "" {
			code.Content = []*Node{{Type: TypeText, Text: text}}
		}
		doc.Content[e.cursor] = code
		return e.cursor, true
	})
}

// InsertHorizontalRule inserts a rule after the current block. A trailing
// rule gets an empty paragraph after it so the cursor has somewhere to go.
func (e *Editor) InsertHorizontalRule() bool {
	return e.insertBlock(&Node{Type: TypeHorizontalRule})
}

// InsertHardBreak appends a line break to the current textblock.
func (e *Editor) InsertHardBreak() bool {
	return e.apply(func(doc *Node) (int, bool) {
		tb := doc.Content[e.cursor].firstTextblock()
		if tb == nil {
			return e.cursor, false
		}
		if tb.Type == TypeCodeBlock {
			tb.Content = append(tb.Content, &Node{Type: TypeText, Text: "\n"})
		} else {
			tb.Content = append(tb.Content, &Node{Type: TypeHardBreak})
		}
		return e.cursor, true
	})
}

// SetImage inserts an image after the current block. An empty url is a
// no-op, matching a dismissed prompt.
func (e *Editor) SetImage(src string) (bool, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return false, nil
	}
	if !validImageSource(src) {
		return false, fmt.Errorf("%w: %q", ErrInvalidImageURL, src)
	}
	return e.insertBlock(&Node{Type: TypeImage, Attrs: map[string]any{"src": src}}), nil
}

func validImageSource(src string) bool {
	if strings.HasPrefix(src, "/") && !strings.HasPrefix(src, "//") {
		return true
	}
	u, err := url.Parse(src)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SetEmbeddedVideo inserts a YouTube embed for link.
func (e *Editor) SetEmbeddedVideo(link string) (bool, error) {
	if strings.TrimSpace(link) == "" {
		return false, nil
	}
	v, err := ParseVideoURL(link)
	if err != nil {
		return false, err
	}
	return e.insertBlock(&Node{Type: TypeYoutube, Attrs: map[string]any{"src": v.EmbedURL()}}), nil
}

// SetText replaces the current textblock's content, keeping the marks of
// its first text node.
func (e *Editor) SetText(text string) bool {
	return e.apply(func(doc *Node) (int, bool) {
		tb := doc.Content[e.cursor].firstTextblock()
		if tb == nil {
			return e.cursor, false
		}
		if len(tb.Content) == 1 && tb.Content[0].Type == TypeText && tb.Content[0].Text == text {
			return e.cursor, false
		}
		var marks []Mark
		tb.walkText(func(t *Node) {
			if marks == nil && len(t.Marks) > 0 {
				marks = append([]Mark(nil), t.Marks...)
			}
		})
		if text == "" {
			changed := len(tb.Content) > 0
			tb.Content = nil
			return e.cursor, changed
		}
		tb.Content = []*Node{{Type: TypeText, Text: text, Marks: marks}}
		return e.cursor, true
	})
}

// InsertParagraph adds a paragraph after the current block and selects it.
func (e *Editor) InsertParagraph(text string) bool {
	p := &Node{Type: TypeParagraph}
	if text != "" {
		p.Content = []*Node{{Type: TypeText, Text: text}}
	}
	return e.apply(func(doc *Node) (int, bool) {
		doc.Content = insertAfter(doc.Content, e.cursor, p)
		return e.cursor + 1, true
	})
}

func (e *Editor) insertBlock(n *Node) bool {
	return e.apply(func(doc *Node) (int, bool) {
		at := e.cursor + 1
		doc.Content = insertAfter(doc.Content, e.cursor, n)
		if at == len(doc.Content)-1 {
			doc.Content = append(doc.Content, &Node{Type: TypeParagraph})
		}
		return at + 1, true
	})
}

// IsActive reports toolbar state: a mark name, a block type, or
// "heading" with a level.
func (e *Editor) IsActive(name string, level int) bool {
	switch name {
	case MarkBold, MarkItalic, MarkStrike:
		return e.markActive(name)
	case TypeHeading:
		tb := e.current().firstTextblock()
		return tb != nil && tb.Type == TypeHeading && tb.headingLevel() == level
	}
	return e.current().Type == name
}

func insertAfter(list []*Node, i int, n *Node) []*Node {
	out := make([]*Node, 0, len(list)+1)
	out = append(out, list[:i+1]...)
	out = append(out, n)
	return append(out, list[i+1:]...)
}

// splice replaces list[i] with repl.
func splice(list []*Node, i int, repl ...*Node) []*Node {
	out := make([]*Node, 0, len(list)-1+len(repl))
	out = append(out, list[:i]...)
	out = append(out, repl...)
	return append(out, list[i+1:]...)
}
