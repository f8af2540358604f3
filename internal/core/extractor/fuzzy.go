package extractor

import (
	"strings"
	"unicode/utf8"
)

const (
	matchThreshold = 0.7
	minWordLen     = 2
)

// FuzzyMatch picks the candidate that contains word, or is contained in it,
// with the closest length. The shorter-to-longer length ratio must reach 0.7.
func FuzzyMatch(word string, candidates []string) (string, bool) {
	word = strings.ToLower(word)
	if utf8.RuneCountInString(word) < minWordLen {
		return "", false
	}

	var (
		best      string
		bestScore float64
	)
	for _, c := range candidates {
		if !strings.Contains(c, word) && !strings.Contains(word, c) {
			continue
		}
		score := lengthRatio(word, c)
		if score >= matchThreshold && score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, best != ""
}

func lengthRatio(a, b string) float64 {
	la := float64(utf8.RuneCountInString(a))
	lb := float64(utf8.RuneCountInString(b))
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		return lb / la
	}
	return la / lb
}
