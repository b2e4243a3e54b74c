// Package similarity scores the textual closeness of two identifiers.
//
// The default scorer computes the longest-matching-blocks ratio: twice the
// total length of the common blocks divided by the combined length of both
// strings. It rewards identifiers that are "almost" equal, such as order
// codes truncated or reformatted by an export, and is used only as a
// tie-break heuristic for identifiers, never for amounts.
//
// A Levenshtein-based scorer is available as an alternative backend; its
// values differ around any fixed acceptance threshold, so it must be opted
// into explicitly.
package similarity

import (
	"github.com/agnivade/levenshtein"
)

// Algorithm selects the scoring backend.
type Algorithm string

const (
	// AlgorithmRatio is the longest-matching-blocks ratio scorer.
	AlgorithmRatio Algorithm = "ratio"

	// AlgorithmLevenshtein scores 1 - distance/maxLen.
	AlgorithmLevenshtein Algorithm = "levenshtein"
)

// IsValid checks if the algorithm is supported.
func (a Algorithm) IsValid() bool {
	return a == AlgorithmRatio || a == AlgorithmLevenshtein
}

// Scorer computes a similarity ratio in [0, 1] between two strings.
// The ratio is symmetric and equals 1 for identical strings.
type Scorer struct {
	algorithm Algorithm
}

// NewScorer creates a scorer for the given algorithm, defaulting to the
// ratio backend when the algorithm is empty or unknown.
func NewScorer(algorithm Algorithm) *Scorer {
	if !algorithm.IsValid() {
		algorithm = AlgorithmRatio
	}
	return &Scorer{algorithm: algorithm}
}

// Score returns the similarity between a and b.
func (s *Scorer) Score(a, b string) float64 {
	if s.algorithm == AlgorithmLevenshtein {
		return levenshteinScore(a, b)
	}
	return Ratio(a, b)
}

// Ratio computes the longest-matching-blocks similarity between a and b:
// 2*M/T where M is the total size of all matching blocks and T the combined
// length of both strings. Identical strings score 1.0, disjoint strings 0.0.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingBlocksSize(ra, rb)) / float64(total)
}

// matchingBlocksSize sums the sizes of all matching blocks between a and b.
// Blocks are found by locating the longest common block, then recursing on
// the pieces to its left and right, so blocks never overlap and appear in
// the same relative order in both strings.
func matchingBlocksSize(a, b []rune) int {
	type region struct {
		alo, ahi, blo, bhi int
	}

	queue := []region{{0, len(a), 0, len(b)}}
	size := 0

	for len(queue) > 0 {
		r := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, r.alo, r.ahi, r.blo, r.bhi)
		if k == 0 {
			continue
		}
		size += k
		queue = append(queue,
			region{r.alo, i, r.blo, j},
			region{i + k, r.ahi, j + k, r.bhi},
		)
	}

	return size
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] within
// a[alo:ahi] and b[blo:bhi]. Of all maximal blocks it returns the one
// starting earliest in a, and of those the one starting earliest in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	b2j := make(map[rune][]int, bhi-blo)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	besti, bestj = alo, blo
	j2len := make(map[int]int)

	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	return besti, bestj, bestsize
}

// levenshteinScore normalizes edit distance into a [0, 1] similarity.
func levenshteinScore(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
