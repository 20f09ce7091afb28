package integrity

import "strings"

// JaccardSimilarity returns the word-set overlap ratio of two texts:
// |intersection| / |union| over whitespace-tokenized, lowercased words.
// Returns 0 when the union is empty (both texts blank).
func JaccardSimilarity(a, b string) float64 {
	wordsA := tokenSet(a)
	wordsB := tokenSet(b)

	union := make(map[string]struct{}, len(wordsA)+len(wordsB))
	for w := range wordsA {
		union[w] = struct{}{}
	}
	for w := range wordsB {
		union[w] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	return float64(intersection) / float64(len(union))
}

func tokenSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// LevenshteinDistance returns the minimum number of single-rune edits
// (insert, delete, substitute) to transform a into b.
func LevenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two-row dynamic programming keeps memory at O(len(b)).
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// LevenshteinSimilarity maps edit distance to [0,1]:
// 1 - distance/max(len(a), len(b)), and 1 when both strings are empty.
func LevenshteinSimilarity(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(LevenshteinDistance(a, b))/float64(maxLen)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
