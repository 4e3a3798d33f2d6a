package cleaning

import "strings"

// similarityRatio scores two strings in [0,1] as twice the longest common
// subsequence over the combined length, the same shape of measure the
// upstream standardization used for fuzzy city/channel matching.
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[lb]
	return 2 * float64(lcs) / float64(la+lb)
}

// bestFuzzyMatch finds the canonical candidate closest to value, if any
// clears the threshold. Ties resolve to the earliest candidate so the
// result is deterministic.
func bestFuzzyMatch(value string, candidates []string, threshold float64) (string, float64, bool) {
	needle := strings.ToLower(strings.TrimSpace(value))
	if needle == "" {
		return "", 0, false
	}
	var (
		best      string
		bestScore float64
		found     bool
	)
	for _, candidate := range candidates {
		score := similarityRatio(needle, strings.ToLower(candidate))
		if score >= threshold && score > bestScore {
			best, bestScore, found = candidate, score, true
		}
	}
	return best, bestScore, found
}
