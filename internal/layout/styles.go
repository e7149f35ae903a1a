package layout

import "strings"

// StyleKey selects a navigation item style.
type StyleKey struct {
	Token      Token
	Active     bool
	Authorized bool
}

// Style is the resolved presentation of one key.
type Style struct {
	Class string
	// Compact items render icon and label stacked.
	Compact bool
}

// StyleTable maps every StyleKey to its Style. It is built once and never
// mutated, so a render only performs lookups.
type StyleTable struct {
	rules    map[StyleKey]Style
	fallback Style
}

// NewStyleTable builds the table for every token of bps.
func NewStyleTable(bps *Breakpoints) *StyleTable {
	t := &StyleTable{
		rules:    make(map[StyleKey]Style, len(bps.points)*4),
		fallback: Style{Class: "nav-item"},
	}
	smallest := bps.Smallest()
	for _, tok := range bps.Tokens() {
		for _, active := range []bool{false, true} {
			for _, authorized := range []bool{false, true} {
				key := StyleKey{Token: tok, Active: active, Authorized: authorized}
				t.rules[key] = buildStyle(key, tok == smallest)
			}
		}
	}
	return t
}

func buildStyle(k StyleKey, compact bool) Style {
	classes := []string{"nav-item", "nav-item--" + string(k.Token)}
	if k.Active {
		classes = append(classes, "nav-item--active")
	}
	if !k.Authorized {
		classes = append(classes, "nav-item--locked")
	}
	return Style{Class: strings.Join(classes, " "), Compact: compact}
}

// Lookup returns the style for k. Unknown tokens get the bare item style.
func (t *StyleTable) Lookup(k StyleKey) Style {
	if s, ok := t.rules[k]; ok {
		return s
	}
	return t.fallback
}

// ForItem is Lookup keyed from a rendered item.
func (t *StyleTable) ForItem(item Item, token Token) Style {
	return t.Lookup(StyleKey{Token: token, Active: item.Active, Authorized: !item.RequiresLogin})
}

func (t *StyleTable) Len() int { return len(t.rules) }
