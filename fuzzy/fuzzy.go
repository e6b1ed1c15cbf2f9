package fuzzy

import (
	"sort"
	"strings"

	"github.com/craftnet/rconsole/catalog"
)

// Match pairs a catalog entry with its similarity score in [0, 100].
type Match struct {
	Entry catalog.Entry
	Score int
}

// Search ranks every label in the catalog against the query by partial
// similarity and returns the top matches. Ordering is score descending
// with catalog insertion order breaking ties (stable sort), so results
// are deterministic. The top-K by raw score is taken first and only then
// pruned by minScore (rank-then-filter), which matters when limit is
// smaller than the number of entries above the threshold.
//
// An empty query returns nothing rather than dumping the catalog. Search
// never errors; a query matching nothing yields an empty result.
func Search(query string, cat *catalog.Catalog, limit, minScore int) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || cat == nil || limit <= 0 {
		return nil
	}

	matches := make([]Match, 0, cat.Len())
	for _, e := range cat.Entries() {
		matches = append(matches, Match{
			Entry: e,
			Score: PartialRatio(query, strings.ToLower(e.DisplayName)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := matches[:0]
	for _, m := range matches {
		if m.Score >= minScore {
			out = append(out, m)
		}
	}
	return out
}

// PartialRatio scores the similarity of the shorter string against every
// contiguous window of its length in the longer string, returning the
// best alignment's ratio on a 0-100 scale. This rewards queries that are
// prefixes or substrings of long labels: "diam" aligns perfectly inside
// "diamond sword".
func PartialRatio(a, b string) int {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}

	best := 0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		window := longer[start : start+len(shorter)]
		if score := Ratio(shorter, window); score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// Ratio is the edit-distance similarity of two rune slices normalized to
// 0-100: identical strings score 100, completely different ones 0.
func Ratio(a, b []rune) int {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	dist := levenshtein(a, b)
	// 100*(longest-dist)/longest, rounded to nearest.
	return (200*(longest-dist) + longest) / (2 * longest)
}

// levenshtein computes the edit distance using the classic two-row DP.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
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
