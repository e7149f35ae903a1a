package layout

import "fmt"

const (
	// DefaultMaxPageWidth is the widest the centered page column gets.
	DefaultMaxPageWidth = 1198

	compactGutter = 12
	defaultGutter = 24
)

// GridConfig configures the page container grid.
type GridConfig struct {
	// MaxPageWidth caps content + trailing spacer.
	MaxPageWidth int

	// DefaultWidth is used when a page does not request a width.
	DefaultWidth int

	// Gutters holds the minimum horizontal padding per breakpoint.
	Gutters map[Token]int

	// DefaultGutter applies to tokens missing from Gutters.
	DefaultGutter int
}

// DefaultGridConfig returns the stock grid: a 1198px page, 12px gutters on
// the smallest breakpoint and 24px everywhere else.
func DefaultGridConfig(b *Breakpoints) GridConfig {
	gutters := make(map[Token]int, len(b.points))
	for i, bp := range b.points {
		if i == 0 {
			gutters[bp.Token] = compactGutter
		} else {
			gutters[bp.Token] = defaultGutter
		}
	}
	return GridConfig{
		MaxPageWidth:  DefaultMaxPageWidth,
		DefaultWidth:  DefaultMaxPageWidth,
		Gutters:       gutters,
		DefaultGutter: defaultGutter,
	}
}

// Grid computes page container columns.
type Grid struct {
	bps *Breakpoints
	cfg GridConfig
}

// NewGrid fills in missing config values and returns a Grid.
func NewGrid(b *Breakpoints, cfg GridConfig) *Grid {
	if cfg.MaxPageWidth <= 0 {
		cfg.MaxPageWidth = DefaultMaxPageWidth
	}
	if cfg.DefaultWidth <= 0 || cfg.DefaultWidth > cfg.MaxPageWidth {
		cfg.DefaultWidth = cfg.MaxPageWidth
	}
	if cfg.DefaultGutter <= 0 {
		cfg.DefaultGutter = defaultGutter
	}
	if cfg.Gutters == nil {
		cfg.Gutters = DefaultGridConfig(b).Gutters
	}
	return &Grid{bps: b, cfg: cfg}
}

func (g *Grid) Config() GridConfig { return g.cfg }

// Columns describes the page container for one render.
type Columns struct {
	Token         Token
	MaxPageWidth  int
	ContentWidth  int
	TrailingWidth int
	Gutter        int
}

// ComputeColumns lays out a page that requested width pixels of content.
// Requests above the page maximum are clamped silently; zero or negative
// requests fall back to the default width.
func (g *Grid) ComputeColumns(requestedWidth int, token Token) Columns {
	width := requestedWidth
	if width <= 0 {
		width = g.cfg.DefaultWidth
	}
	if width > g.cfg.MaxPageWidth {
		width = g.cfg.MaxPageWidth
	}

	gutter, ok := g.cfg.Gutters[token]
	if !ok {
		_, known := g.bps.Index(token)
		assertf(known, "columns requested for unknown token %s", token)
		gutter = g.cfg.DefaultGutter
	}

	return Columns{
		Token:         token,
		MaxPageWidth:  g.cfg.MaxPageWidth,
		ContentWidth:  width,
		TrailingWidth: g.cfg.MaxPageWidth - width,
		Gutter:        gutter,
	}
}

// ColumnsForViewport resolves the token from a viewport width first.
func (g *Grid) ColumnsForViewport(requestedWidth, viewportWidth int) Columns {
	return g.ComputeColumns(requestedWidth, g.bps.Resolve(viewportWidth))
}

// TemplateColumns is the CSS grid-template-columns value. The content track
// never exceeds 100% of the container, so it cannot overflow.
func (c Columns) TemplateColumns() string {
	return fmt.Sprintf("1fr min(100%%, %dpx) minmax(0px, %dpx) 1fr", c.ContentWidth, c.TrailingWidth)
}

// Style renders the inline style for the page container element.
func (c Columns) Style() string {
	return fmt.Sprintf("grid-template-columns: %s; --container-width: %dpx; padding: 0 %dpx;",
		c.TemplateColumns(), c.ContentWidth, c.Gutter)
}

// Tracks are concrete pixel widths of the four grid tracks.
type Tracks struct {
	LeadingGutter  int
	Content        int
	Trailing       int
	TrailingGutter int
}

func (t Tracks) Total() int {
	return t.LeadingGutter + t.Content + t.Trailing + t.TrailingGutter
}

// Fit resolves the columns against a concrete viewport. The tracks always
// add up to the viewport width: gutters shrink first when the viewport is
// narrower than twice the gutter, then the content track shrinks.
func (c Columns) Fit(viewportWidth int) Tracks {
	if viewportWidth < 0 {
		viewportWidth = 0
	}

	gutter := c.Gutter
	if 2*gutter > viewportWidth {
		gutter = viewportWidth / 2
	}
	available := viewportWidth - 2*gutter

	content := min(available, c.ContentWidth)
	trailing := min(available-content, c.TrailingWidth)
	rest := available - content - trailing

	return Tracks{
		LeadingGutter:  gutter + rest/2,
		Content:        content,
		Trailing:       trailing,
		TrailingGutter: gutter + rest - rest/2,
	}
}
