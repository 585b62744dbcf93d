/*
Package dictionary reads packed-trie word dictionaries.

A dictionary file is a 12 byte header followed by the root node array of a
prefix tree. Each node (a PtNode) carries a run of one or more characters, a
frequency when it ends a word, an address of its child array, and optionally
a list of shortcuts and a precomputed suggestion list. The buffer is never
turned into an in-memory tree: every query walks the raw bytes again, so a
loaded Dictionary is immutable and safe for concurrent use.

Two lookups are provided. Query follows the exact path of a word and gathers
the words below it. FuseQuery falls back to a case variant and then to a
search tolerating one typo (substitution, deletion, insertion or a swap of
two neighbouring characters).

	dict, err := dictionary.LoadFile("wordlist.dict")
	if err != nil {
		return err
	}
	res, err := dict.FuseQuery(ctx, "cet")
	// res.Valid == false, res.Suggestions[0].Word == "cat"
*/
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"unicode"
)

// fuseThreshold is the number of suggestions that makes FuseQuery skip its
// later, more expensive stages.
const fuseThreshold = 3

// Dictionary is a loaded, validated dictionary buffer.
type Dictionary struct {
	data   []byte
	header Header
}

// QueryResult is the answer to a lookup. Valid reports whether Word itself is
// stored as a complete word.
type QueryResult struct {
	Word        string           `msgpack:"word"`
	Valid       bool             `msgpack:"valid"`
	Frequency   int              `msgpack:"freq"`
	Suggestions []WeightedString `msgpack:"suggestions"`
}

// Header returns the validated file header.
func (d *Dictionary) Header() Header { return d.header }

// Size returns the size of the underlying buffer in bytes.
func (d *Dictionary) Size() int { return len(d.data) }

// Query looks word up along its exact path. A nil result with a nil error
// means the path does not exist. Errors report a malformed buffer.
func (d *Dictionary) Query(word string) (*QueryResult, error) {
	node, above, err := searchPtNode(d.data, HeaderSize, []rune(word))
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", word, err)
	}
	if node == nil {
		return nil, nil
	}

	prefix := string(above)
	exact := prefix+string(node.Chars) == word

	var words []WeightedString
	if node.HasCachedSuggestions() && len(node.CachedSuggestions) > 0 {
		words = node.CachedSuggestions
	} else {
		words, err = collectWords(d.data, prefix, node)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", word, err)
		}
		if exact && node.IsTerminal() && node.IsWord() && node.HasShortcuts() && len(node.Shortcuts) > 0 {
			words = append(boostedShortcuts(node), words...)
		}
	}

	res := &QueryResult{
		Word:        word,
		Valid:       exact && node.IsTerminal() && node.IsWord(),
		Suggestions: mergeWords(words),
	}
	if res.Valid {
		res.Frequency = node.Frequency
	}
	return res, nil
}

// FuseQuery looks word up tolerating a capitalised first letter and one typo.
//
// The exact lookup runs first; when it offers fewer than three suggestions
// the word is retried with its first letter upper-cased, and if that is
// still thin the trie is searched for paths one edit away. Results of every
// stage are merged, ranked and capped at MaxSuggestions.
//
// If ctx ends during the typo search, the result gathered so far is returned
// together with ctx.Err().
func (d *Dictionary) FuseQuery(ctx context.Context, word string) (*QueryResult, error) {
	if word == "" {
		return nil, nil
	}

	res, err := d.Query(word)
	if err != nil {
		return nil, err
	}
	if res != nil && len(res.Suggestions) >= fuseThreshold {
		return res, nil
	}

	codes := []rune(word)
	if upper := unicode.ToUpper(codes[0]); upper != codes[0] {
		variant := append([]rune{upper}, codes[1:]...)
		upperRes, err := d.Query(string(variant))
		if err != nil {
			return nil, err
		}
		if upperRes != nil && len(upperRes.Suggestions) > 0 {
			if res == nil {
				res = upperRes
			} else {
				res.Suggestions = mergeWords(res.Suggestions, upperRes.Suggestions)
			}
			if len(res.Suggestions) >= fuseThreshold {
				return res, nil
			}
		}
	}

	candidates, searchErr := fuseSearch(ctx, d.data, HeaderSize, codes)
	if searchErr != nil && !isContextErr(searchErr) {
		return nil, fmt.Errorf("fuse query %q: %w", word, searchErr)
	}
	if len(candidates) == 0 {
		return res, searchErr
	}

	var fused []WeightedString
	for _, c := range candidates {
		words, err := collectWords(d.data, c.prefix, c.node)
		if err != nil {
			return nil, fmt.Errorf("fuse query %q: %w", word, err)
		}
		fused = append(fused, words...)
	}
	fused = mergeWords(fused)

	if res == nil {
		return &QueryResult{Word: word, Suggestions: fused}, searchErr
	}
	res.Suggestions = mergeWords(res.Suggestions, fused)
	return res, searchErr
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
