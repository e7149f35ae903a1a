package layout

import (
	"fmt"
	"strings"
)

// MediaCSS generates the stylesheet that hides gated markup outside its
// breakpoint range. Server-rendered pages emit both the mobile and the
// desktop chrome; these rules keep the page correct before the live
// session connects and starts mounting and unmounting subtrees.
func MediaCSS(b *Breakpoints) string {
	var sb strings.Builder
	hide := func(class string) string {
		return fmt.Sprintf(".%s{display:none!important}", class)
	}

	for i, bp := range b.points {
		at := At(bp.Token).Class()
		gt := GreaterThan(bp.Token).Class()
		lt := LessThan(bp.Token).Class()

		// at: visible in [MinWidth, next.MinWidth)
		if bp.MinWidth > 0 {
			fmt.Fprintf(&sb, "@media (max-width:%dpx){%s}\n", bp.MinWidth-1, hide(at))
		}
		if i+1 < len(b.points) {
			next := b.points[i+1].MinWidth
			fmt.Fprintf(&sb, "@media (min-width:%dpx){%s}\n", next, hide(at))
			// gt: visible from the next threshold up
			fmt.Fprintf(&sb, "@media (max-width:%dpx){%s}\n", next-1, hide(gt))
		} else {
			sb.WriteString(hide(gt) + "\n")
		}

		// lt: visible below this threshold
		if i == 0 {
			sb.WriteString(hide(lt) + "\n")
		} else {
			fmt.Fprintf(&sb, "@media (min-width:%dpx){%s}\n", bp.MinWidth, hide(lt))
		}
	}
	return sb.String()
}
