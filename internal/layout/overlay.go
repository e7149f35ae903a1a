package layout

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrOverlayClaimed is returned when an overlay root is claimed twice.
	ErrOverlayClaimed = errors.New("layout: overlay root already claimed")
	// ErrUnknownOverlay is returned for unregistered attachment points.
	ErrUnknownOverlay = errors.New("layout: unknown overlay root")
)

// DefaultOverlay is the attachment point the drawer and modals paint into.
const DefaultOverlay = "overlay"

// OverlayHost resolves named attachment points. In the browser an overlay
// root is a fixed element at the end of the body; on the server it is just
// the slot the page renders last.
type OverlayHost struct {
	mu    sync.Mutex
	roots map[string]*OverlayRoot
}

// NewOverlayHost registers the given attachment point names. With no names,
// DefaultOverlay is registered.
func NewOverlayHost(names ...string) *OverlayHost {
	if len(names) == 0 {
		names = []string{DefaultOverlay}
	}
	h := &OverlayHost{roots: make(map[string]*OverlayRoot, len(names))}
	for _, n := range names {
		h.roots[n] = &OverlayRoot{name: n}
	}
	return h
}

func (h *OverlayHost) Resolve(name string) (*OverlayRoot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	root, ok := h.roots[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOverlay, name)
	}
	return root, nil
}

// OverlayRoot is a single shared anchor; only one owner may hold it.
type OverlayRoot struct {
	mu         sync.Mutex
	name       string
	owner      string
	generation uint64
}

// OverlayClaim is held by the current owner of an overlay root.
type OverlayClaim struct {
	root       *OverlayRoot
	owner      string
	generation uint64
	once       sync.Once
}

// Claim takes the root for owner. A second claim before the first is
// released is rejected, never overwritten.
func (r *OverlayRoot) Claim(owner string) (*OverlayClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.owner != "" {
		return nil, fmt.Errorf("%w: %s held by %s, requested by %s", ErrOverlayClaimed, r.name, r.owner, owner)
	}
	r.generation++
	r.owner = owner
	return &OverlayClaim{root: r, owner: owner, generation: r.generation}, nil
}

// Owner returns the current owner, or "" when free.
func (r *OverlayRoot) Owner() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owner
}

func (r *OverlayRoot) Name() string { return r.name }

// Release frees the root. It is idempotent, and a stale claim never frees a
// root that has since been claimed by someone else.
func (c *OverlayClaim) Release() {
	c.once.Do(func() {
		r := c.root
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.generation == c.generation {
			r.owner = ""
		}
	})
}

func (c *OverlayClaim) Owner() string { return c.owner }

// ScrollLock counts outstanding body scroll locks.
type ScrollLock struct {
	mu    sync.Mutex
	count int
}

// Lock increments the counter. The returned release decrements it once.
func (s *ScrollLock) Lock() (release func()) {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.count--
			s.mu.Unlock()
		})
	}
}

func (s *ScrollLock) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count > 0
}
