package key

import (
	"slices"
	"strings"
)

// Hotkey is one key combination: a set of required modifiers plus the
// non-modifier keys that must all be held at the same time.
// Hotkey values are immutable; construct them with NewHotkey or Parse.
type Hotkey struct {
	modifiers Modifier
	keys      []string
	canonical string
}

// NewHotkey creates a Hotkey from modifiers and key names.
// Key names are normalized; empty names are dropped.
func NewHotkey(mods Modifier, keys ...string) Hotkey {
	normalized := make([]string, 0, len(keys))
	for _, k := range keys {
		if nk := NormalizeKey(k); nk != "" {
			normalized = append(normalized, nk)
		}
	}
	h := Hotkey{modifiers: mods, keys: normalized}
	h.canonical = h.buildCanonical()
	return h
}

// Modifiers returns the required modifiers.
func (h Hotkey) Modifiers() Modifier {
	return h.modifiers
}

// Keys returns a copy of the required non-modifier keys in the order
// they were written.
func (h Hotkey) Keys() []string {
	return slices.Clone(h.keys)
}

// KeyCount returns the number of non-modifier keys.
func (h Hotkey) KeyCount() int {
	return len(h.keys)
}

// IsZero returns true for the zero Hotkey, which requires nothing.
func (h Hotkey) IsZero() bool {
	return h.modifiers == ModNone && len(h.keys) == 0
}

// Equal reports whether two hotkeys require the same modifiers and the
// same keys. Key order does not matter.
func (h Hotkey) Equal(other Hotkey) bool {
	return h.Canonical() == other.Canonical()
}

// Canonical returns an order-independent identity string: modifiers in
// canonical order followed by the sorted, de-duplicated keys.
func (h Hotkey) Canonical() string {
	if h.canonical == "" && !h.IsZero() {
		return h.buildCanonical()
	}
	return h.canonical
}

func (h Hotkey) buildCanonical() string {
	keys := slices.Clone(h.keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)
	return joinSpec(h.modifiers, keys)
}

// String returns the hotkey as a spec, keeping the written key order.
// The result parses back to an equal Hotkey.
func (h Hotkey) String() string {
	return joinSpec(h.modifiers, h.keys)
}

func joinSpec(mods Modifier, keys []string) string {
	var sb strings.Builder
	sb.WriteString(mods.String())
	for _, k := range keys {
		if sb.Len() > 0 {
			sb.WriteByte('+')
		}
		sb.WriteString(k)
	}
	return sb.String()
}

// Matches reports whether the hotkey is satisfied by a held-key predicate.
// Every required modifier must be implied by held modifier keys and every
// required key must be held. Modifiers the hotkey does not list are ignored.
func (h Hotkey) Matches(held func(string) bool) bool {
	satisfied := true
	h.modifiers.Each(func(mod Modifier) {
		if !held(mod.HeldKey()) {
			satisfied = false
		}
	})
	if !satisfied {
		return false
	}
	for _, k := range h.keys {
		if !held(k) {
			return false
		}
	}
	return true
}

// HotkeySet is a set of alternative hotkeys. Any one alternative
// satisfies a binding. Iteration order is stable (sorted by canonical form).
type HotkeySet struct {
	items []Hotkey
}

// NewHotkeySet creates a set from the given hotkeys, dropping duplicates.
func NewHotkeySet(hotkeys ...Hotkey) HotkeySet {
	var s HotkeySet
	for _, h := range hotkeys {
		s = s.With(h)
	}
	return s
}

// With returns a new set that also contains h.
func (s HotkeySet) With(h Hotkey) HotkeySet {
	if s.Contains(h) {
		return s
	}
	items := make([]Hotkey, 0, len(s.items)+1)
	items = append(items, s.items...)
	items = append(items, h)
	slices.SortStableFunc(items, func(a, b Hotkey) int {
		return strings.Compare(a.Canonical(), b.Canonical())
	})
	return HotkeySet{items: items}
}

// Union returns a set containing the alternatives of both sets.
func (s HotkeySet) Union(other HotkeySet) HotkeySet {
	out := s
	for _, h := range other.items {
		out = out.With(h)
	}
	return out
}

// Contains reports whether an equal hotkey is in the set.
func (s HotkeySet) Contains(h Hotkey) bool {
	c := h.Canonical()
	for _, item := range s.items {
		if item.Canonical() == c {
			return true
		}
	}
	return false
}

// Len returns the number of alternatives.
func (s HotkeySet) Len() int {
	return len(s.items)
}

// Hotkeys returns a copy of the alternatives in iteration order.
func (s HotkeySet) Hotkeys() []Hotkey {
	return slices.Clone(s.items)
}

// Equal reports whether both sets hold the same alternatives.
func (s HotkeySet) Equal(other HotkeySet) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for i := range s.items {
		if !s.items[i].Equal(other.items[i]) {
			return false
		}
	}
	return true
}

// Match returns the first alternative satisfied by the held-key predicate.
func (s HotkeySet) Match(held func(string) bool) (Hotkey, bool) {
	for _, h := range s.items {
		if h.Matches(held) {
			return h, true
		}
	}
	return Hotkey{}, false
}

// String returns the alternatives joined by ",".
func (s HotkeySet) String() string {
	parts := make([]string, len(s.items))
	for i, h := range s.items {
		parts[i] = h.String()
	}
	return strings.Join(parts, ",")
}
