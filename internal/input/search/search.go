package search

import (
	"slices"
	"strings"
	"unicode"

	"github.com/dshills/keyscope/internal/input/keymap"
)

// Result is a matched binding.
type Result struct {
	Binding *keymap.Binding

	// Text is the searchable text built for the binding.
	Text string

	// Score ranks the match. Higher is better.
	Score int

	// Matches are the rune offsets in Text that matched the query.
	Matches []int
}

// Text returns the searchable text for a binding: its description,
// hotkeys and scopes separated by spaces.
func Text(b *keymap.Binding) string {
	parts := make([]string, 0, 3)
	if d := b.Description(); d != "" {
		parts = append(parts, d)
	}
	parts = append(parts, b.Hotkeys().String())
	if scopes := b.Scopes(); len(scopes) > 0 {
		parts = append(parts, strings.Join(scopes, " "))
	}
	return strings.Join(parts, " ")
}

// Bindings returns the bindings matching query, best first. Matching is
// case-insensitive and whitespace in the query is ignored. An empty
// query returns the bindings in their given order. A limit of zero or
// less means no limit.
func Bindings(query string, bindings []*keymap.Binding, limit int) []Result {
	q := []rune(strings.ToLower(strings.Join(strings.Fields(query), "")))

	results := make([]Result, 0, len(bindings))
	for _, b := range bindings {
		text := Text(b)
		if len(q) == 0 {
			results = append(results, Result{Binding: b, Text: text})
			continue
		}
		matches := locate(q, text)
		if matches == nil {
			continue
		}
		results = append(results, Result{
			Binding: b,
			Text:    text,
			Score:   score(q, text, matches),
			Matches: matches,
		})
	}

	if len(q) > 0 {
		slices.SortStableFunc(results, func(a, b Result) int {
			if a.Score != b.Score {
				return b.Score - a.Score
			}
			return strings.Compare(a.Text, b.Text)
		})
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// locate scans text left to right for the query runes in order. It
// returns nil when some rune is missing.
func locate(q []rune, text string) []int {
	runes := []rune(strings.ToLower(text))
	matches := make([]int, 0, len(q))
	qi := 0
	for i := 0; i < len(runes) && qi < len(q); i++ {
		if runes[i] == q[qi] {
			matches = append(matches, i)
			qi++
		}
	}
	if qi != len(q) {
		return nil
	}
	return matches
}

func score(q []rune, text string, matches []int) int {
	original := []rune(text)
	s := 100

	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			s += 20
		}
	}
	for _, idx := range matches {
		if wordStart(original, idx) {
			s += 15
		}
	}

	if matches[0] == 0 {
		s += 25
	} else {
		s -= matches[0]
	}
	if gap := matches[len(matches)-1] - matches[0] - len(matches) + 1; gap > 0 {
		s -= gap * 2
	}
	if n := len(original); n < 20 {
		s += 20 - n
	}
	if strings.HasPrefix(strings.ToLower(text), string(q)) {
		s += 50
	}

	return max(s, 1)
}

// wordStart reports whether idx begins a word: the first rune, a rune
// after a space or punctuation, or an upper case rune after a lower case
// one.
func wordStart(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	prev, cur := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) || prev == '+' {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}
