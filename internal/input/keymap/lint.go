package keymap

import (
	"fmt"
	"slices"

	"github.com/agnivade/levenshtein"

	"github.com/dshills/keyscope/internal/input/key"
)

// maxSuggestDistance is the largest edit distance offered as a suggestion.
const maxSuggestDistance = 2

// knownKeys are the key names commonly reported by browsers and terminals,
// normalized. Parsing accepts any name; this list only drives Lint.
var knownKeys = func() []string {
	names := []string{
		"control", "shift", "alt", "meta",
		"enter", "escape", "tab", "space", "backspace", "delete", "insert",
		"home", "end", "pageup", "pagedown",
		"arrowup", "arrowdown", "arrowleft", "arrowright",
		"capslock", "numlock", "scrolllock", "pause", "printscreen", "contextmenu",
		"`", "-", "=", "[", "]", "\\", ";", "'", ".", "/",
	}
	for c := 'a'; c <= 'z'; c++ {
		names = append(names, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		names = append(names, string(c))
	}
	for i := 1; i <= 24; i++ {
		names = append(names, fmt.Sprintf("f%d", i))
	}
	slices.Sort(names)
	return names
}()

// commonMisnames maps names from other key notations to the names
// sources actually report.
var commonMisnames = map[string]string{
	"esc":    "escape",
	"return": "enter",
	"del":    "delete",
	"ins":    "insert",
	"up":     "arrowup",
	"down":   "arrowdown",
	"left":   "arrowleft",
	"right":  "arrowright",
	"pgup":   "pageup",
	"pgdn":   "pagedown",
	"bs":     "backspace",
}

// KnownKeys returns the key names Lint recognizes.
func KnownKeys() []string {
	return slices.Clone(knownKeys)
}

// IsKnownKey reports whether a normalized key name is in the known list.
func IsKnownKey(name string) bool {
	_, found := slices.BinarySearch(knownKeys, name)
	return found
}

// Issue is a non-fatal problem found by Lint.
type Issue struct {
	// Mapping is the index of the mapping in Keymap.Mappings.
	Mapping int

	// Keys is the mapping's key spec.
	Keys string

	// Token is the unrecognized key name.
	Token string

	// Suggestion is the closest known key name, or "".
	Suggestion string
}

// String formats the issue for display.
func (i Issue) String() string {
	msg := fmt.Sprintf("mapping %d (%s): unknown key %q", i.Mapping, i.Keys, i.Token)
	if i.Suggestion != "" {
		msg += fmt.Sprintf(", did you mean %q?", i.Suggestion)
	}
	return msg
}

// Lint reports key names that no common input source produces. Such
// bindings are valid but will likely never fire. Mappings whose spec does
// not parse are skipped; Validate reports those.
func (k *Keymap) Lint() []Issue {
	var issues []Issue
	for i, m := range k.Mappings {
		set, err := key.ParseSet(m.Keys)
		if err != nil {
			continue
		}
		seen := make(map[string]bool)
		for _, h := range set.Hotkeys() {
			for _, tok := range h.Keys() {
				if seen[tok] || IsKnownKey(tok) {
					continue
				}
				seen[tok] = true
				issues = append(issues, Issue{
					Mapping:    i,
					Keys:       m.Keys,
					Token:      tok,
					Suggestion: Suggest(tok),
				})
			}
		}
	}
	return issues
}

// Suggest returns the known key name closest to name, or "" if none is
// within a small edit distance. Ties resolve to the alphabetically first.
func Suggest(name string) string {
	if alt, ok := commonMisnames[name]; ok {
		return alt
	}
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, known := range knownKeys {
		if len(known) == 1 && len(name) > 3 {
			continue
		}
		d := levenshtein.ComputeDistance(name, known)
		if d < bestDist {
			best, bestDist = known, d
		}
	}
	return best
}
