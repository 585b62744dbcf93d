package utils

import (
	"strings"
	"unicode"
)

// CapitalPositions marks, per rune, which characters of s are upper case.
// It returns nil when s has no capitals so callers can skip rewriting.
func CapitalPositions(s string) []bool {
	var positions []bool
	i := 0
	for _, r := range s {
		if unicode.IsUpper(r) {
			if positions == nil {
				positions = make([]bool, len([]rune(s)))
			}
			positions[i] = true
		}
		i++
	}
	return positions
}

// ApplyCapitals upper-cases the runes of word at the marked positions.
// Positions past the end of word are ignored.
func ApplyCapitals(word string, positions []bool) string {
	if len(positions) == 0 {
		return word
	}

	runes := []rune(word)
	changed := false
	for i := 0; i < len(runes) && i < len(positions); i++ {
		if positions[i] && unicode.IsLower(runes[i]) {
			runes[i] = unicode.ToUpper(runes[i])
			changed = true
		}
	}
	if !changed {
		return word
	}
	return string(runes)
}

// HasPrefixFold reports whether s begins with prefix, ignoring case.
func HasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}
