package key

import (
	"errors"
	"fmt"
	"strings"
)

// Parse errors
var (
	ErrEmptySpec  = errors.New("empty key specification")
	ErrEmptyToken = errors.New("empty token in key specification")
)

// Separators used in combination specifications.
const (
	ComboSeparator       = "+"
	AlternativeSeparator = ","
)

// ParseError describes a specification that could not be parsed.
type ParseError struct {
	// Spec is the full specification passed by the caller.
	Spec string

	// Part is the offending comma-separated sub-specification.
	Part string

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Part != "" && e.Part != e.Spec {
		return fmt.Sprintf("parse %q: alternative %q: %v", e.Spec, e.Part, e.Err)
	}
	return fmt.Sprintf("parse %q: %v", e.Spec, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses a single combination like "ctrl+shift+k" into a Hotkey.
//
// The spec is split on "+"; each token is trimmed and lowercased.
// Reserved modifier tokens set modifier flags, all other tokens become
// keys in the order written. A spec that contains "," is rejected; use
// ParseSet for alternatives.
func Parse(spec string) (Hotkey, error) {
	if strings.Contains(spec, AlternativeSeparator) {
		set, err := ParseSet(spec)
		if err != nil {
			return Hotkey{}, err
		}
		if set.Len() != 1 {
			return Hotkey{}, &ParseError{Spec: spec, Err: errors.New("multiple alternatives, use ParseSet")}
		}
		return set.items[0], nil
	}
	h, err := parseCombination(spec)
	if err != nil {
		return Hotkey{}, &ParseError{Spec: spec, Err: err}
	}
	return h, nil
}

// ParseSet parses a specification with comma-separated alternatives like
// "ctrl+k,meta+k" into a HotkeySet. Equal alternatives collapse.
func ParseSet(spec string) (HotkeySet, error) {
	if strings.TrimSpace(spec) == "" {
		return HotkeySet{}, &ParseError{Spec: spec, Err: ErrEmptySpec}
	}

	var set HotkeySet
	for _, part := range strings.Split(spec, AlternativeSeparator) {
		h, err := parseCombination(part)
		if err != nil {
			return HotkeySet{}, &ParseError{Spec: spec, Part: part, Err: err}
		}
		set = set.With(h)
	}
	return set, nil
}

// parseCombination parses one "+"-joined combination.
func parseCombination(part string) (Hotkey, error) {
	if strings.TrimSpace(part) == "" {
		return Hotkey{}, ErrEmptySpec
	}

	var mods Modifier
	keys := make([]string, 0, 2)
	for _, tok := range strings.Split(part, ComboSeparator) {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			return Hotkey{}, ErrEmptyToken
		}
		if mod := ModifierFromName(tok); mod != ModNone {
			mods = mods.With(mod)
			continue
		}
		keys = append(keys, tok)
	}
	return NewHotkey(mods, keys...), nil
}

// MustParseSet parses a specification and panics on error.
// Use only for known-valid specs in initialization code and tests.
func MustParseSet(spec string) HotkeySet {
	set, err := ParseSet(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return set
}

// MustParse parses a single combination and panics on error.
func MustParse(spec string) Hotkey {
	h, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return h
}

// NormalizeSpec parses and re-formats a specification to its canonical form.
func NormalizeSpec(spec string) (string, error) {
	set, err := ParseSet(spec)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, set.Len())
	for _, h := range set.items {
		parts = append(parts, h.Canonical())
	}
	return strings.Join(parts, AlternativeSeparator), nil
}
