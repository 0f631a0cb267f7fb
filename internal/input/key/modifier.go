package key

import "strings"

// Modifier represents the reserved modifier keys of a Hotkey.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModMeta indicates the Meta key (Cmd on macOS, Win on Windows).
	ModMeta
)

// allModifiers lists the modifiers in canonical display order.
var allModifiers = []Modifier{ModCtrl, ModShift, ModAlt, ModMeta}

// Has returns true if m contains all of the specified modifiers.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod == mod && mod != ModNone
}

// HasShift returns true if Shift is set.
func (m Modifier) HasShift() bool {
	return m.Has(ModShift)
}

// HasCtrl returns true if Control is set.
func (m Modifier) HasCtrl() bool {
	return m.Has(ModCtrl)
}

// HasAlt returns true if Alt is set.
func (m Modifier) HasAlt() bool {
	return m.Has(ModAlt)
}

// HasMeta returns true if Meta is set.
func (m Modifier) HasMeta() bool {
	return m.Has(ModMeta)
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// Each calls fn for every modifier set in m, in canonical order.
func (m Modifier) Each(fn func(Modifier)) {
	for _, mod := range allModifiers {
		if m.Has(mod) {
			fn(mod)
		}
	}
}

// String returns the canonical spec form like "ctrl+shift".
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}

	var parts []string
	m.Each(func(mod Modifier) {
		parts = append(parts, modifierTokens[mod])
	})
	return strings.Join(parts, "+")
}

// HeldKey returns the normalized key name whose presence in the pressed
// set implies this single modifier. It returns "" for ModNone or for a
// combination of modifiers.
func (m Modifier) HeldKey() string {
	return modifierHeldKeys[m]
}

// modifierTokens are the canonical spec tokens for each modifier.
var modifierTokens = map[Modifier]string{
	ModCtrl:  "ctrl",
	ModShift: "shift",
	ModAlt:   "alt",
	ModMeta:  "meta",
}

// modifierHeldKeys are the key names input sources report for modifiers.
var modifierHeldKeys = map[Modifier]string{
	ModCtrl:  "control",
	ModShift: "shift",
	ModAlt:   "alt",
	ModMeta:  "meta",
}

// modifierNameMap maps reserved spec tokens (lowercase) to Modifier values.
var modifierNameMap = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
}

// ModifierFromName returns the Modifier for a reserved token.
// The name must already be lowercase. Returns ModNone if the
// name is not reserved.
func ModifierFromName(name string) Modifier {
	if m, ok := modifierNameMap[name]; ok {
		return m
	}
	return ModNone
}

// IsModifierName reports whether name is one of the reserved modifier tokens.
func IsModifierName(name string) bool {
	_, ok := modifierNameMap[name]
	return ok
}

// ModifiersHeld returns the modifiers implied by a set of held keys.
// The held predicate receives normalized key names.
func ModifiersHeld(held func(string) bool) Modifier {
	var mods Modifier
	for _, mod := range allModifiers {
		if held(mod.HeldKey()) {
			mods = mods.With(mod)
		}
	}
	return mods
}
