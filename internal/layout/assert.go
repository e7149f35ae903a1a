//go:build !layoutdebug

package layout

// debugAssertions turns caller programming errors (negative widths, unknown
// tokens) into panics. Build with -tags layoutdebug to enable.
const debugAssertions = false
