// Package key provides the hotkey model and the key-combination parser.
//
// This package defines the fundamental types for describing shortcuts:
//
//   - Modifier: A bitmask of the reserved modifier keys (Ctrl, Shift, Alt, Meta)
//   - Hotkey: One combination that must be held simultaneously
//   - HotkeySet: A set of alternative Hotkeys, any one of which satisfies a binding
//   - RawEvent: A key event as delivered by an input source
//
// # Combination Specifications
//
// A specification joins simultaneously-held tokens with "+" and separates
// alternatives with ",":
//
//   - Single key: "k", "escape", "arrowup"
//   - With modifiers: "ctrl+k", "ctrl+shift+p", "cmd+enter"
//   - Alternatives: "g,h", "ctrl+k,meta+k"
//
// Tokens are trimmed and lowercased. The reserved tokens ctrl/control,
// shift, alt and meta/cmd/command set modifier flags; every other token is
// kept verbatim as a key name. Key names are not checked against a list of
// known keys: a name the input source never reports simply never matches.
//
// # Normalization
//
// Keys reported by input sources go through NormalizeKey before they are
// tracked, so matching is case-insensitive on both sides.
package key
