// Package similarity provides the string comparison used by the fuzzy search tiers
// Fold pipeline
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization
// 3 Case folding
// 4 Collapse whitespace to single spaces and trim
package similarity

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(), // unicode case folding
		)
	},
}

// Fold returns the whitespace-collapsed case-folded form of s
func Fold(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	return collapseSpaces(ns)
}

// collapseSpaces folds any run of unicode whitespace into a single space and trims
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// Ratio computes the Ratcliff/Obershelp similarity of two strings in [0,1]
// 2*M/T where M is the total size of recursively longest matching blocks and
// T is the combined length; both inputs should be Folded first for
// typo-tolerant comparison
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	matched := matchingRunes(ra, rb)
	return 2 * float64(matched) / float64(total)
}

// matchingRunes sums the lengths of matching blocks between a and b
// mirrors difflib's get_matching_blocks without the autojunk heuristic,
// which is tuned for diff rendering rather than relevance scoring
func matchingRunes(a, b []rune) int {
	// positions of each rune in b, for the longest-match scan
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	stack := []span{{0, len(a), 0, len(b)}}
	matched := 0

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		besti, bestj, bestn := longestMatch(a, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if bestn == 0 {
			continue
		}
		matched += bestn
		if s.alo < besti && s.blo < bestj {
			stack = append(stack, span{s.alo, besti, s.blo, bestj})
		}
		if besti+bestn < s.ahi && bestj+bestn < s.bhi {
			stack = append(stack, span{besti + bestn, s.ahi, bestj + bestn, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block where a[alo:ahi] and b[blo:bhi] agree
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (besti, bestj, bestn int) {
	besti, bestj = alo, blo
	// j2len[j] = length of longest match ending at a[i-1], b[j-1]
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestn {
				besti, bestj, bestn = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestn
}
