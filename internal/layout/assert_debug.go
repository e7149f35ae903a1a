//go:build layoutdebug

package layout

const debugAssertions = true
