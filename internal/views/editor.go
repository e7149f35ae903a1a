package views

import (
	"strconv"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"soup_web/internal/editor"
)

// EditorScreen is the project write screen: title input, toolbar and the
// document surface. The live session keeps both in sync with the Editor.
func EditorScreen(ed *editor.Editor) g.Node {
	return html.Div(html.ID("editor"), html.Class("editor"),
		html.Input(
			html.ID("editor-title"),
			html.Class("editor__title"),
			html.Type("text"),
			html.Name("title"),
			html.Placeholder("제목을 입력하세요"),
		),
		EditorToolbar(ed.State()),
		html.Div(html.ID("editor-doc"), html.Class("editor__doc"),
			RenderDocument(ed.Document(), ed.Cursor()),
		),
		html.Div(html.Class("editor__actions"),
			html.Button(
				html.Type("button"),
				html.Class("button button--primary"),
				html.Data("action", "save-draft"),
				g.Text("저장"),
			),
		),
	)
}

// EditorToolbar renders one button per command, grouped.
func EditorToolbar(state [][]editor.ButtonState) g.Node {
	groups := editor.Toolbar()
	rows := make([]g.Node, 0, len(state))
	for i, row := range state {
		name := ""
		if i < len(groups) {
			name = groups[i].Name
		}
		rows = append(rows, html.Div(html.Class("editor__group"), html.Data("group", name),
			g.Map(row, toolbarButton),
		))
	}
	return html.Div(html.ID("editor-toolbar"), html.Class("editor__toolbar"), html.Role("toolbar"),
		g.Group(rows),
	)
}

func toolbarButton(b editor.ButtonState) g.Node {
	class := "button button--icon editor__button"
	if b.Active {
		class += " is-active"
	}
	return html.Button(
		html.Type("button"),
		html.Class(class),
		html.Title(b.Label),
		html.Data("command", b.Command),
		g.If(b.Prompt != "", html.Data("prompt", b.Prompt)),
		g.If(b.Active, html.Aria("pressed", "true")),
		g.If(b.Disabled, html.Disabled()),
		icon(b.Icon),
	)
}

// RenderDocument renders a document tree as HTML. Top level blocks carry
// their index so the client can report selection; the block at cursor is
// marked selected. A negative cursor marks nothing.
func RenderDocument(doc *editor.Node, cursor int) g.Node {
	if doc == nil {
		return g.Group(nil)
	}
	blocks := make([]g.Node, 0, len(doc.Content))
	for i, n := range doc.Content {
		class := "block"
		if i == cursor {
			class += " is-selected"
		}
		blocks = append(blocks, html.Div(
			html.Class(class),
			html.Data("index", strconv.Itoa(i)),
			renderNode(n),
		))
	}
	return g.Group(blocks)
}

func renderNode(n *editor.Node) g.Node {
	switch n.Type {
	case editor.TypeText:
		return renderText(n)
	case editor.TypeParagraph:
		return html.P(children(n))
	case editor.TypeHeading:
		if n.Level() == 1 {
			return html.H1(children(n))
		}
		return html.H2(children(n))
	case editor.TypeBulletList:
		return html.Ul(children(n))
	case editor.TypeOrderedList:
		return html.Ol(children(n))
	case editor.TypeListItem:
		return html.Li(children(n))
	case editor.TypeBlockquote:
		return g.El("blockquote", children(n))
	case editor.TypeCodeBlock:
		return html.Pre(html.Code(children(n)))
	case editor.TypeHorizontalRule:
		return html.Hr()
	case editor.TypeHardBreak:
		return html.Br()
	case editor.TypeImage:
		return html.Img(html.Src(n.Attr("src")), html.Alt(n.Attr("alt")))
	case editor.TypeYoutube:
		return html.Div(html.Class("video"),
			g.El("iframe",
				html.Src(n.Attr("src")),
				g.Attr("allowfullscreen"),
				g.Attr("frameborder", "0"),
			),
		)
	}
	return children(n)
}

func children(n *editor.Node) g.Node {
	out := make([]g.Node, 0, len(n.Content))
	for _, c := range n.Content {
		out = append(out, renderNode(c))
	}
	return g.Group(out)
}

func renderText(n *editor.Node) g.Node {
	node := g.Text(n.Text)
	for _, m := range n.Marks {
		switch m.Type {
		case editor.MarkBold:
			node = html.Strong(node)
		case editor.MarkItalic:
			node = html.Em(node)
		case editor.MarkStrike:
			node = html.Span(html.Class("strike"), node)
		}
	}
	return node
}
