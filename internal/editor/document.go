// Package editor holds the rich-text document model behind the project
// write screen and the command surface its toolbar drives.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Node types.
const (
	TypeDoc            = "doc"
	TypeParagraph      = "paragraph"
	TypeHeading        = "heading"
	TypeText           = "text"
	TypeBulletList     = "bulletList"
	TypeOrderedList    = "orderedList"
	TypeListItem       = "listItem"
	TypeBlockquote     = "blockquote"
	TypeCodeBlock      = "codeBlock"
	TypeHorizontalRule = "horizontalRule"
	TypeHardBreak      = "hardBreak"
	TypeImage          = "image"
	TypeYoutube        = "youtube"
)

// Mark types.
const (
	MarkBold   = "bold"
	MarkItalic = "italic"
	MarkStrike = "strike"
)

// ErrInvalidDocument is returned when decoding a tree without a doc root.
var ErrInvalidDocument = errors.New("editor: invalid document")

// Mark is an inline text decoration.
type Mark struct {
	Type string `json:"type"`
}

// Node is one element of the document tree. The JSON shape is the one the
// browser editor reads and writes.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// NewDocument returns a document holding one empty paragraph.
func NewDocument() *Node {
	return &Node{Type: TypeDoc, Content: []*Node{{Type: TypeParagraph}}}
}

// ParseDocument decodes and validates a document tree.
func ParseDocument(raw []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if n.Type != TypeDoc {
		return nil, fmt.Errorf("%w: root is %q", ErrInvalidDocument, n.Type)
	}
	if len(n.Content) == 0 {
		n.Content = []*Node{{Type: TypeParagraph}}
	}
	return &n, nil
}

// Clone deep-copies the subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Type: n.Type, Text: n.Text}
	if n.Attrs != nil {
		out.Attrs = make(map[string]any, len(n.Attrs))
		for k, v := range n.Attrs {
			out.Attrs[k] = v
		}
	}
	if n.Marks != nil {
		out.Marks = append([]Mark(nil), n.Marks...)
	}
	if n.Content != nil {
		out.Content = make([]*Node, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = c.Clone()
		}
	}
	return out
}

func (n *Node) isTextblock() bool {
	switch n.Type {
	case TypeParagraph, TypeHeading, TypeCodeBlock:
		return true
	}
	return false
}

// HasMark reports whether a text node carries mark.
func (n *Node) HasMark(mark string) bool {
	for _, m := range n.Marks {
		if m.Type == mark {
			return true
		}
	}
	return false
}

func (n *Node) setMark(mark string, on bool) {
	if on == n.HasMark(mark) {
		return
	}
	if on {
		n.Marks = append(n.Marks, Mark{Type: mark})
		return
	}
	kept := n.Marks[:0]
	for _, m := range n.Marks {
		if m.Type != mark {
			kept = append(kept, m)
		}
	}
	n.Marks = kept
	if len(n.Marks) == 0 {
		n.Marks = nil
	}
}

// headingLevel reads attrs.level, which decodes from JSON as float64.
func (n *Node) headingLevel() int {
	switch v := n.Attrs["level"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Level is the heading level, 0 for other nodes.
func (n *Node) Level() int {
	if n.Type != TypeHeading {
		return 0
	}
	return n.headingLevel()
}

// Attr returns a string attribute, "" when missing.
func (n *Node) Attr(name string) string {
	s, _ := n.Attrs[name].(string)
	return s
}

// walkText visits every text node below n.
func (n *Node) walkText(fn func(*Node)) {
	for _, c := range n.Content {
		if c.Type == TypeText {
			fn(c)
			continue
		}
		c.walkText(fn)
	}
}

// firstTextblock finds the first paragraph, heading or code block at or
// below n.
func (n *Node) firstTextblock() *Node {
	if n.isTextblock() {
		return n
	}
	for _, c := range n.Content {
		if tb := c.firstTextblock(); tb != nil {
			return tb
		}
	}
	return nil
}

// PlainText concatenates the text below n.
func (n *Node) PlainText() string {
	var s []byte
	n.walkText(func(t *Node) { s = append(s, t.Text...) })
	return string(s)
}
