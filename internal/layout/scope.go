package layout

import (
	"errors"
	"fmt"
)

// Scope collects the resources a mounted subtree acquires (listeners,
// timers, overlay claims, locks) and releases them together.
type Scope struct {
	name     string
	releases []scopeEntry
	closed   bool
}

type scopeEntry struct {
	name    string
	release func()
}

// NewScope returns an open scope.
func NewScope(name string) *Scope {
	return &Scope{name: name}
}

// Acquire records a release function. If the scope is already closed the
// release runs immediately so nothing outlives its owner.
func (s *Scope) Acquire(name string, release func()) {
	if release == nil {
		return
	}
	if s.closed {
		release()
		return
	}
	s.releases = append(s.releases, scopeEntry{name: name, release: release})
}

// Close runs every release in reverse acquisition order, exactly once.
// A panicking release does not prevent the others from running; the
// panics are returned as a joined error. Closing twice is a no-op.
func (s *Scope) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for i := len(s.releases) - 1; i >= 0; i-- {
		if err := runRelease(s.releases[i]); err != nil {
			errs = append(errs, err)
		}
	}
	s.releases = nil
	return errors.Join(errs...)
}

func runRelease(e scopeEntry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("release %s: %v", e.name, r)
		}
	}()
	e.release()
	return nil
}

// Len reports how many resources are currently held.
func (s *Scope) Len() int { return len(s.releases) }

func (s *Scope) Closed() bool { return s.closed }

func (s *Scope) Name() string { return s.name }
