// Package layout implements the responsive page shell: breakpoint
// resolution, render gates, the page container grid, side navigation,
// the drawer state machine and the overlay/listener bookkeeping the
// drawer depends on.
//
// Everything here is a pure state machine. A live session owns one Shell,
// one Drawer and its gates and feeds them events from a single goroutine;
// none of the stateful types are meant to be shared between sessions.
package layout

import "fmt"

func assertf(cond bool, format string, args ...any) {
	if debugAssertions && !cond {
		panic(fmt.Sprintf("layout: "+format, args...))
	}
}
