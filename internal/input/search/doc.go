// Package search finds bindings by fuzzy matching a query against their
// description, hotkeys and scopes.
//
// A query matches an entry when every query rune appears in the entry's
// text in order. Results are ranked so that consecutive runs, word starts
// and prefix matches score higher:
//
//	results := search.Bindings("tog list", engine.Bindings(), 10)
//	for _, r := range results {
//	    fmt.Println(r.Binding.Hotkeys(), r.Binding.Description())
//	}
package search
