package key

import (
	"strings"
	"time"
)

// RawEvent is a key event as delivered by an input source.
// The engine keeps the key-down RawEvent of every held key so that a
// match can tell the source which of its events should have their
// default action suppressed.
type RawEvent struct {
	// Key is the key identifier reported by the source, before normalization.
	// Browser sources report KeyboardEvent.key values ("Control", "k", "ArrowUp").
	Key string

	// Repeat is true when the source flagged the event as an auto-repeat.
	Repeat bool

	// Timestamp is when the event occurred.
	Timestamp time.Time

	// Native holds the source-specific payload, if any.
	Native any
}

// NewRawEvent creates a raw event for the given key with the current timestamp.
func NewRawEvent(k string) RawEvent {
	return RawEvent{
		Key:       k,
		Timestamp: time.Now(),
	}
}

// WithNative returns a copy of the event carrying a source payload.
func (e RawEvent) WithNative(native any) RawEvent {
	e.Native = native
	return e
}

// WithRepeat returns a copy of the event with the repeat flag set.
func (e RawEvent) WithRepeat(repeat bool) RawEvent {
	e.Repeat = repeat
	return e
}

// Normalized returns the normalized key identifier of the event.
func (e RawEvent) Normalized() string {
	return NormalizeKey(e.Key)
}

// heldAliases canonicalizes alternate names that sources use for modifiers.
var heldAliases = map[string]string{
	"ctrl":     "control",
	"cmd":      "meta",
	"command":  "meta",
	"spacebar": "space",
}

// NormalizeKey lowercases and trims a raw key identifier.
//
// A key made only of whitespace (browsers report the space bar as " ")
// becomes "space". Alternate modifier names are folded onto the names
// that imply modifier flags: "ctrl" becomes "control" and "cmd" or
// "command" become "meta".
func NormalizeKey(raw string) string {
	k := strings.ToLower(strings.TrimSpace(raw))
	if k == "" {
		if raw != "" {
			return "space"
		}
		return ""
	}
	if alias, ok := heldAliases[k]; ok {
		return alias
	}
	return k
}
