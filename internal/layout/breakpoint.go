package layout

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrInvalidBreakpoints = errors.New("layout: invalid breakpoints")
	ErrUnknownToken       = errors.New("layout: unknown breakpoint token")
)

// Token names a breakpoint ("sm", "md", "lg", ...)
type Token string

// Breakpoint associates a token with the smallest viewport width (in pixels)
// at which it applies.
type Breakpoint struct {
	Token    Token
	MinWidth int
}

// Breakpoints is an immutable, strictly ordered set of breakpoints.
//
// Resolution is desktop-first: a width maps to the breakpoint with the
// largest MinWidth that is <= the width. Widths below the first threshold
// resolve to the first token, widths beyond the last threshold to the last.
type Breakpoints struct {
	points []Breakpoint
	index  map[Token]int
}

// NewBreakpoints validates and orders the given breakpoints.
func NewBreakpoints(points ...Breakpoint) (*Breakpoints, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: at least one breakpoint is required", ErrInvalidBreakpoints)
	}

	sorted := make([]Breakpoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinWidth < sorted[j].MinWidth
	})

	index := make(map[Token]int, len(sorted))
	for i, bp := range sorted {
		if bp.Token == "" {
			return nil, fmt.Errorf("%w: empty token", ErrInvalidBreakpoints)
		}
		if bp.MinWidth < 0 {
			return nil, fmt.Errorf("%w: %s has negative threshold %d", ErrInvalidBreakpoints, bp.Token, bp.MinWidth)
		}
		if _, dup := index[bp.Token]; dup {
			return nil, fmt.Errorf("%w: duplicate token %s", ErrInvalidBreakpoints, bp.Token)
		}
		if i > 0 && sorted[i-1].MinWidth == bp.MinWidth {
			return nil, fmt.Errorf("%w: %s and %s share threshold %d",
				ErrInvalidBreakpoints, sorted[i-1].Token, bp.Token, bp.MinWidth)
		}
		index[bp.Token] = i
	}

	return &Breakpoints{points: sorted, index: index}, nil
}

// DefaultBreakpoints returns the stock sm/md/lg set.
func DefaultBreakpoints() *Breakpoints {
	bps, err := NewBreakpoints(
		Breakpoint{Token: "sm", MinWidth: 0},
		Breakpoint{Token: "md", MinWidth: 768},
		Breakpoint{Token: "lg", MinWidth: 1024},
	)
	if err != nil {
		panic(err)
	}
	return bps
}

// ParseBreakpoints parses a "token:width" list such as "sm:0,md:768,lg:1024".
func ParseBreakpoints(list string) (*Breakpoints, error) {
	var points []Breakpoint
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, width, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not token:width", ErrInvalidBreakpoints, part)
		}
		px, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(width, "px")))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidBreakpoints, part, err)
		}
		points = append(points, Breakpoint{Token: Token(strings.TrimSpace(name)), MinWidth: px})
	}
	return NewBreakpoints(points...)
}

// Resolve maps a viewport width to its breakpoint token. It never fails:
// negative widths are clamped to zero.
func (b *Breakpoints) Resolve(width int) Token {
	return b.points[b.resolveIndex(width)].Token
}

func (b *Breakpoints) resolveIndex(width int) int {
	assertf(width >= 0, "negative viewport width %d", width)
	if width < 0 {
		width = 0
	}
	i := sort.Search(len(b.points), func(i int) bool {
		return b.points[i].MinWidth > width
	}) - 1
	if i < 0 {
		return 0
	}
	return i
}

// Index returns the position of token in ascending threshold order.
func (b *Breakpoints) Index(token Token) (int, bool) {
	i, ok := b.index[token]
	return i, ok
}

// Lookup returns the breakpoint for token.
func (b *Breakpoints) Lookup(token Token) (Breakpoint, error) {
	i, ok := b.index[token]
	if !ok {
		return Breakpoint{}, fmt.Errorf("%w: %s", ErrUnknownToken, token)
	}
	return b.points[i], nil
}

// Next returns the breakpoint following token, if any.
func (b *Breakpoints) Next(token Token) (Breakpoint, bool) {
	i, ok := b.index[token]
	if !ok || i+1 >= len(b.points) {
		return Breakpoint{}, false
	}
	return b.points[i+1], true
}

// Tokens lists tokens in ascending threshold order.
func (b *Breakpoints) Tokens() []Token {
	tokens := make([]Token, len(b.points))
	for i, bp := range b.points {
		tokens[i] = bp.Token
	}
	return tokens
}

// Points returns a copy of the ordered breakpoints.
func (b *Breakpoints) Points() []Breakpoint {
	out := make([]Breakpoint, len(b.points))
	copy(out, b.points)
	return out
}

func (b *Breakpoints) Smallest() Token { return b.points[0].Token }

func (b *Breakpoints) Largest() Token { return b.points[len(b.points)-1].Token }

// String renders the set in the same form ParseBreakpoints accepts.
func (b *Breakpoints) String() string {
	parts := make([]string, len(b.points))
	for i, bp := range b.points {
		parts[i] = fmt.Sprintf("%s:%d", bp.Token, bp.MinWidth)
	}
	return strings.Join(parts, ",")
}
