// Package pressed tracks the keys that are currently held down.
//
// A Set records, for every held key, the key-down event that pressed it.
// Every mutation reports whether the set actually changed so callers can
// re-evaluate bindings on real transitions only: pressing a key that is
// already held (keyboard auto-repeat) is not a transition.
package pressed

import (
	"slices"

	"github.com/dshills/keyscope/internal/input/key"
)

// Entry is a held key together with the event that pressed it.
type Entry struct {
	Key   string
	Event key.RawEvent
}

// Set is the live set of held keys. It is not safe for concurrent use.
type Set struct {
	events map[string]key.RawEvent
	order  []string
}

// New creates an empty set.
func New() *Set {
	return &Set{
		events: make(map[string]key.RawEvent),
	}
}

// Press records a key-down event. It returns true if the key was not
// already held. Events whose key normalizes to "" are ignored.
func (s *Set) Press(ev key.RawEvent) bool {
	k := ev.Normalized()
	if k == "" {
		return false
	}
	if _, held := s.events[k]; held {
		return false
	}
	s.events[k] = ev
	s.order = append(s.order, k)
	return true
}

// PressKey records a key-down for a bare key name.
func (s *Set) PressKey(name string) bool {
	return s.Press(key.NewRawEvent(name))
}

// Release removes a key. Releasing a key that is not held is a no-op
// and returns false.
func (s *Set) Release(name string) bool {
	k := key.NormalizeKey(name)
	if _, held := s.events[k]; !held {
		return false
	}
	delete(s.events, k)
	if i := slices.Index(s.order, k); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

// Reset releases every key. It returns false if nothing was held.
func (s *Set) Reset() bool {
	if len(s.events) == 0 {
		return false
	}
	clear(s.events)
	s.order = s.order[:0]
	return true
}

// Has reports whether a normalized key is held.
func (s *Set) Has(k string) bool {
	_, held := s.events[k]
	return held
}

// Event returns the key-down event of a held key.
func (s *Set) Event(k string) (key.RawEvent, bool) {
	ev, held := s.events[k]
	return ev, held
}

// Len returns the number of held keys.
func (s *Set) Len() int {
	return len(s.events)
}

// Keys returns the held keys in the order they were pressed.
func (s *Set) Keys() []string {
	return slices.Clone(s.order)
}

// Entries returns the held keys with their events in press order.
func (s *Set) Entries() []Entry {
	entries := make([]Entry, 0, len(s.order))
	for _, k := range s.order {
		entries = append(entries, Entry{Key: k, Event: s.events[k]})
	}
	return entries
}

// Modifiers returns the modifier flags implied by the held modifier keys.
func (s *Set) Modifiers() key.Modifier {
	return key.ModifiersHeld(s.Has)
}
