package config

import "github.com/agnivade/levenshtein"

// maxSuggestDistance bounds how far a typo may be from a known name.
const maxSuggestDistance = 2

// Suggest returns the candidate closest to word, or "" when none is within
// edit distance 2. Ties go to the earlier candidate.
func Suggest(word string, candidates []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if c == word {
			continue
		}
		if d := levenshtein.ComputeDistance(word, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
