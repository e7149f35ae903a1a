package layout

import (
	"fmt"
	"strings"
)

// ConditionKind selects how a Condition compares the resolved token.
type ConditionKind int

const (
	CondAt ConditionKind = iota
	CondGreaterThan
	CondLessThan
)

func (k ConditionKind) String() string {
	switch k {
	case CondAt:
		return "at"
	case CondGreaterThan:
		return "gt"
	case CondLessThan:
		return "lt"
	default:
		return "unknown"
	}
}

// Condition is a breakpoint predicate used to gate rendering.
type Condition struct {
	Kind  ConditionKind
	Token Token
}

func At(token Token) Condition          { return Condition{Kind: CondAt, Token: token} }
func GreaterThan(token Token) Condition { return Condition{Kind: CondGreaterThan, Token: token} }
func LessThan(token Token) Condition    { return Condition{Kind: CondLessThan, Token: token} }

// String returns the condition as "kind:token", e.g. "gt:sm".
func (c Condition) String() string {
	return c.Kind.String() + ":" + string(c.Token)
}

// Class is the CSS class MediaCSS generates for this condition.
func (c Condition) Class() string {
	return "media-" + c.Kind.String() + "-" + string(c.Token)
}

// ParseCondition parses the String form back into a Condition.
func ParseCondition(s string) (Condition, error) {
	kind, token, ok := strings.Cut(s, ":")
	if !ok || token == "" {
		return Condition{}, fmt.Errorf("layout: malformed condition %q", s)
	}
	switch kind {
	case "at":
		return At(Token(token)), nil
	case "gt":
		return GreaterThan(Token(token)), nil
	case "lt":
		return LessThan(Token(token)), nil
	}
	return Condition{}, fmt.Errorf("layout: unknown condition kind %q", kind)
}

// ShouldRender evaluates cond against a viewport width. It is a pure
// function of the width. A condition naming an unknown token never renders.
func (b *Breakpoints) ShouldRender(cond Condition, width int) bool {
	target, ok := b.index[cond.Token]
	assertf(ok, "condition %s names unknown token", cond)
	if !ok {
		return false
	}

	current := b.resolveIndex(width)
	switch cond.Kind {
	case CondAt:
		return current == target
	case CondGreaterThan:
		return current > target
	case CondLessThan:
		return current < target
	}
	return false
}
