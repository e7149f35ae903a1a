package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEntryOutOfRange is returned when activating an index the panel does not have.
var ErrEntryOutOfRange = errors.New("layout: navigation entry out of range")

// AuthSnapshot is the read-only view of the auth collaborator's state.
// The zero value is unauthenticated.
type AuthSnapshot struct {
	Authenticated bool
	UserID        string
	DisplayName   string
	AvatarURL     string
}

// Entry is a static navigation target.
type Entry struct {
	Label        string
	Target       string
	Exact        bool
	RequiresAuth bool
	Icon         string
}

// NormalizePath strips query and fragment and trailing slashes. The empty
// path normalises to "/".
func NormalizePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// IsActive reports whether currentPath selects the entry. Non-exact entries
// also match descendants, but only across a path segment boundary: /projects
// matches /projects/write and not /projects-archive. The root target only
// ever matches exactly.
func IsActive(e Entry, currentPath string) bool {
	target := NormalizePath(e.Target)
	current := NormalizePath(currentPath)

	if current == target {
		return true
	}
	if e.Exact || target == "/" {
		return false
	}
	return strings.HasPrefix(current, target+"/")
}

// Item is an entry decorated for one render.
type Item struct {
	Entry
	Index         int
	Active        bool
	RequiresLogin bool
}

// RenderEntries derives the per-render items. Order is preserved.
func RenderEntries(entries []Entry, currentPath string, auth AuthSnapshot) []Item {
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{
			Entry:         e,
			Index:         i,
			Active:        IsActive(e, currentPath),
			RequiresLogin: e.RequiresAuth && !auth.Authenticated,
		}
	}
	return items
}

// Navigator is the routing collaborator.
type Navigator interface {
	Navigate(path string)
}

// LoginPrompter raises the login prompt on shared UI state.
type LoginPrompter interface {
	ShowLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// LoginPrompterFunc adapts a function to LoginPrompter.
type LoginPrompterFunc func()

func (f LoginPrompterFunc) ShowLogin() { f() }

// Outcome is the result of activating an entry.
type Outcome int

const (
	OutcomeNavigated Outcome = iota
	OutcomeLoginRequired
)

func (o Outcome) String() string {
	if o == OutcomeLoginRequired {
		return "login_required"
	}
	return "navigated"
}

// Activate handles selection of an entry. Gated entries never navigate while
// unauthenticated; they raise the login prompt once instead.
func Activate(e Entry, auth AuthSnapshot, nav Navigator, prompt LoginPrompter) Outcome {
	if e.RequiresAuth && !auth.Authenticated {
		prompt.ShowLogin()
		return OutcomeLoginRequired
	}
	nav.Navigate(e.Target)
	return OutcomeNavigated
}

// NavPanel is the side navigation panel: a fixed list of entries.
type NavPanel struct {
	entries []Entry
}

// NewNavPanel copies entries; later changes to the slice have no effect.
func NewNavPanel(entries ...Entry) *NavPanel {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &NavPanel{entries: cp}
}

// Entries returns a copy of the configured entries.
func (p *NavPanel) Entries() []Entry {
	cp := make([]Entry, len(p.entries))
	copy(cp, p.entries)
	return cp
}

func (p *NavPanel) Len() int { return len(p.entries) }

func (p *NavPanel) Items(currentPath string, auth AuthSnapshot) []Item {
	return RenderEntries(p.entries, currentPath, auth)
}

// Active returns the first active entry for currentPath.
func (p *NavPanel) Active(currentPath string) (Entry, bool) {
	for _, e := range p.entries {
		if IsActive(e, currentPath) {
			return e, true
		}
	}
	return Entry{}, false
}

// Activate selects the entry at index.
func (p *NavPanel) Activate(index int, auth AuthSnapshot, nav Navigator, prompt LoginPrompter) (Outcome, error) {
	if index < 0 || index >= len(p.entries) {
		return 0, fmt.Errorf("%w: %d", ErrEntryOutOfRange, index)
	}
	return Activate(p.entries[index], auth, nav, prompt), nil
}
