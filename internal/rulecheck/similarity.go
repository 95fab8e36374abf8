package rulecheck

import (
	"strings"
	"unicode/utf8"
)

// Similarity returns the Jaccard index of the two texts' token sets:
// intersection size over union size, in [0, 1]. Identical token sets score
// 1.0; disjoint sets score 0. Two texts that both tokenize to nothing
// score 0, never 1.
func Similarity(a, b string) float64 {
	return jaccard(tokenize(a), tokenize(b))
}

// tokenize lowercases s and returns its set of whitespace-separated tokens
// longer than one rune. Rune count, not byte length, so CJK and accented
// words survive the length filter.
func tokenize(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		if utf8.RuneCountInString(tok) > 1 {
			set[tok] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
