// Package navigation provides a browser-style location history whose
// back/forward moves are published to subscribers as pop-state events.
package navigation

import "sync"

// subscriberBuffer is how many undelivered events a subscriber may hold
// before further events are dropped for it.
const subscriberBuffer = 8

// EventType classifies a location event.
type EventType int

const (
	// PopState is emitted when the current entry changes through history
	// traversal or an explicit Notify.
	PopState EventType = iota
)

func (t EventType) String() string {
	switch t {
	case PopState:
		return "popstate"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers when the location changes.
type Event struct {
	Type EventType
	Path string
}

// Location is a history stack with a cursor. Go and ReplaceState change the
// current entry silently; Back, Forward and Notify publish events.
// It is safe for concurrent use.
type Location struct {
	mu      sync.Mutex
	history []string
	index   int
	subs    map[int]chan Event
	nextID  int
}

// NewLocation returns a Location whose only entry is initial ("/" if empty).
func NewLocation(initial string) *Location {
	if initial == "" {
		initial = "/"
	}
	return &Location{
		history: []string{initial},
		subs:    make(map[int]chan Event),
	}
}

// Path returns the current entry.
func (l *Location) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.history[l.index]
}

// Go pushes path, discarding any forward entries.
func (l *Location) Go(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if path == l.history[l.index] {
		return
	}
	l.history = append(l.history[:l.index+1], path)
	l.index++
}

// ReplaceState overwrites the current entry.
func (l *Location) ReplaceState(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history[l.index] = path
}

// Back moves to the previous entry. It reports false at the start of history.
func (l *Location) Back() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.index == 0 {
		return false
	}
	l.index--
	l.emitLocked()
	return true
}

// Forward moves to the next entry. It reports false at the end of history.
func (l *Location) Forward() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.index >= len(l.history)-1 {
		return false
	}
	l.index++
	l.emitLocked()
	return true
}

// CanGoBack reports whether Back would move.
func (l *Location) CanGoBack() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index > 0
}

// CanGoForward reports whether Forward would move.
func (l *Location) CanGoForward() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index < len(l.history)-1
}

// Notify publishes a PopState event for the current entry without moving.
func (l *Location) Notify() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emitLocked()
}

// Subscribe registers for events. The returned cancel func unregisters and
// closes the channel; it is safe to call more than once.
func (l *Location) Subscribe() (<-chan Event, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	ch := make(chan Event, subscriberBuffer)
	l.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of active subscriptions.
func (l *Location) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// emitLocked never blocks: a full subscriber misses the event.
func (l *Location) emitLocked() {
	ev := Event{Type: PopState, Path: l.history[l.index]}
	for _, ch := range l.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
