package layout

import "sync"

// EventKind names a class of asynchronous UI callbacks.
type EventKind string

const (
	EventOutsideClick EventKind = "outside_click"
	EventResize       EventKind = "resize"
)

// Event is delivered to listeners.
type Event struct {
	Kind   EventKind
	Target string
	Width  int
}

type listener struct {
	id int
	fn func(Event)
}

// Listeners is a registry of callbacks keyed by kind.
type Listeners struct {
	mu     sync.Mutex
	nextID int
	byKind map[EventKind][]listener
}

func NewListeners() *Listeners {
	return &Listeners{byKind: make(map[EventKind][]listener)}
}

// Add registers fn and returns its remove function. Calling remove more
// than once is a no-op.
func (l *Listeners) Add(kind EventKind, fn func(Event)) (remove func()) {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.byKind[kind] = append(l.byKind[kind], listener{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(kind, id) })
	}
}

func (l *Listeners) remove(kind EventKind, id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list := l.byKind[kind]
	for i, ln := range list {
		if ln.id == id {
			l.byKind[kind] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(l.byKind[kind]) == 0 {
		delete(l.byKind, kind)
	}
}

// Dispatch calls every listener registered for ev.Kind at the time of the
// call. Listeners removed during dispatch that have not run yet are skipped.
// It returns the number of listeners invoked.
func (l *Listeners) Dispatch(ev Event) int {
	l.mu.Lock()
	snapshot := append([]listener(nil), l.byKind[ev.Kind]...)
	l.mu.Unlock()

	n := 0
	for _, ln := range snapshot {
		if !l.registered(ev.Kind, ln.id) {
			continue
		}
		ln.fn(ev)
		n++
	}
	return n
}

func (l *Listeners) registered(kind EventKind, id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ln := range l.byKind[kind] {
		if ln.id == id {
			return true
		}
	}
	return false
}

// Len reports how many listeners are registered for kind.
func (l *Listeners) Len(kind EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKind[kind])
}
