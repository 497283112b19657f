package checker

import "sort"

// LevenshteinDistance computes the classic edit distance between a
// and b, used to rank name-typo suggestions.
//
// Grounded on
// _examples/original_source/compiler/include/types/checker.hpp's
// `levenshtein_distance` declaration.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)
	prev := make([]int, n+1)
	cur := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		cur[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			cur[j] = min3(del, ins, sub)
		}
		prev, cur = cur, prev
	}
	return prev[n]
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

// FindSimilarNames returns up to max candidates from candidates whose
// edit distance to name is within a small relative threshold, closest
// first — the checker's "did you mean" suggestion list.
func FindSimilarNames(name string, candidates []string, max int) []string {
	type scored struct {
		name string
		dist int
	}
	threshold := len(name) / 2
	if threshold < 2 {
		threshold = 2
	}
	var matches []scored
	for _, cand := range candidates {
		if cand == name {
			continue
		}
		d := LevenshteinDistance(name, cand)
		if d <= threshold {
			matches = append(matches, scored{cand, d})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})
	if len(matches) > max {
		matches = matches[:max]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
