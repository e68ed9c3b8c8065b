package scholinfra

import (
	"strings"
)

// titlePunctuation is removed wherever it occurs in a title.
const titlePunctuation = "\"'?!.,"

// NormalizeTitle reduces a title to a canonical form for cross-provider
// comparison: surrounding whitespace trimmed, the characters " ' ? ! . ,
// removed, internal whitespace runs collapsed to one space, lower-cased.
//
// The transformation is idempotent and is not Unicode-normalization aware.
func NormalizeTitle(title string) string {
	s := strings.Map(func(r rune) rune {
		if strings.ContainsRune(titlePunctuation, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// TitlesMatch reports whether two titles normalize to the same string.
func TitlesMatch(a, b string) bool {
	return NormalizeTitle(a) == NormalizeTitle(b)
}
