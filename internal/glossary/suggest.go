package glossary

import "github.com/agext/levenshtein"

// maxSuggestDistance is the largest edit distance still offered as a
// "did you mean" alternative.
const maxSuggestDistance = 2

// suggest picks the closest known value by edit distance, or "" when
// nothing is close enough. Candidates must arrive sorted: on distance ties
// the lexicographically smallest candidate wins, keeping suggestions
// deterministic across runs.
func suggest(input string, known []string) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, candidate := range known {
		if d := levenshtein.Distance(input, candidate, nil); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
