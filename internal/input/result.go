package input

import (
	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
)

// Trigger identifies the state change that started an evaluation pass.
type Trigger uint8

const (
	// TriggerPress is a key-down for a key that was not held.
	TriggerPress Trigger = iota
	// TriggerRepeat is a key-down for a held key with FireOnRepeat set.
	TriggerRepeat
	// TriggerRelease is a key-up for a held key.
	TriggerRelease
	// TriggerReset is a blur that released held keys.
	TriggerReset
	// TriggerScope is a scope being enabled or disabled.
	TriggerScope
)

// String returns a string representation of the trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerPress:
		return "press"
	case TriggerRepeat:
		return "repeat"
	case TriggerRelease:
		return "release"
	case TriggerReset:
		return "reset"
	case TriggerScope:
		return "scope"
	default:
		return "unknown"
	}
}

// Suppression asks the event source to prevent the default action of a
// key. Event is the key-down event that pressed the key.
type Suppression struct {
	Key   string
	Event key.RawEvent
}

// Suppressor receives the suppressions of every evaluation pass that
// fired at least one binding, including passes started by scope changes.
type Suppressor interface {
	Suppress(s []Suppression)
}

// SuppressorFunc adapts a function to the Suppressor interface.
type SuppressorFunc func(s []Suppression)

// Suppress implements Suppressor.
func (f SuppressorFunc) Suppress(s []Suppression) {
	f(s)
}

// Result describes the outcome of one Context operation.
type Result struct {
	// Changed is true if the operation mutated the pressed-key or scope set.
	Changed bool

	// Evaluated is true if an evaluation pass ran.
	Evaluated bool

	// Fired lists the bindings that fired, in firing order.
	Fired []keymap.Handle

	// Suppressed lists the keys whose default should be prevented.
	// Each key appears at most once.
	Suppressed []Suppression
}

// Matched returns true if at least one binding fired.
func (r Result) Matched() bool {
	return len(r.Fired) > 0
}

// SuppressedKeys returns the suppressed key names.
func (r Result) SuppressedKeys() []string {
	keys := make([]string, len(r.Suppressed))
	for i, s := range r.Suppressed {
		keys[i] = s.Key
	}
	return keys
}

// IsSuppressed reports whether a normalized key is suppressed.
func (r Result) IsSuppressed(k string) bool {
	for _, s := range r.Suppressed {
		if s.Key == k {
			return true
		}
	}
	return false
}

func (r *Result) addSuppression(s Suppression) {
	if r.IsSuppressed(s.Key) {
		return
	}
	r.Suppressed = append(r.Suppressed, s)
}

// Fire describes one binding firing. It is passed to hooks.
type Fire struct {
	Binding    *keymap.Binding
	Hotkey     key.Hotkey
	Trigger    Trigger
	Suppressed []Suppression
}
