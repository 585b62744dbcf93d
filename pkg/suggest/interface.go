// Package suggest turns dictionary lookups into completions for a text
// input: it re-applies the typed capitalisation, filters rare and repeated
// words and remembers recent results.
package suggest

import "github.com/bastiangx/wordpack/pkg/dictionary"

// ICompleter defines the interface for word completion engines
type ICompleter interface {
	// Complete returns up to limit suggestions for a typed prefix, the
	// prefix itself excluded. A limit of zero or less means no limit.
	Complete(prefix string, limit int) []Suggestion

	// Candidates returns the typed word followed by its suggestions, the
	// list shown in a candidate strip.
	Candidates(word string, limit int) []Suggestion

	// Lookup returns the raw fuse result for word, or nil.
	Lookup(word string) *dictionary.QueryResult

	// Reload reads the dictionary file again and drops cached results.
	Reload() error

	// Stats returns statistics about the loaded dictionary and the cache
	Stats() map[string]int
}
