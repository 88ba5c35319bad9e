// Package textmatch provides edit-distance based string similarity used by
// the quiz grading and mistake detection services.
package textmatch

import (
	"strings"
	"unicode"
)

// Distance computes the Levenshtein edit distance between two strings.
// Insertions, deletions and substitutions all cost 1. The computation is
// rune-based so multi-byte characters count as single edits.
func Distance(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	n, m := len(ar), len(br)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}

	row := make([]int, m+1)
	for j := 0; j <= m; j++ {
		row[j] = j
	}

	for i := 1; i <= n; i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= m; j++ {
			tmp := row[j]
			cost := 0
			if ar[i-1] != br[j-1] {
				cost = 1
			}
			row[j] = minInt(row[j]+1, minInt(row[j-1]+1, prev+cost))
			prev = tmp
		}
	}

	return row[m]
}

// Similarity returns a normalized similarity score in [0, 1] computed as
// (maxLen - distance) / maxLen. Two empty strings are considered identical.
// The result is symmetric in its arguments.
func Similarity(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}

	return float64(maxLen-Distance(a, b)) / float64(maxLen)
}

// Normalize lowercases the input, trims surrounding whitespace and collapses
// internal runs of whitespace into single spaces. Callers are expected to
// normalize both sides before comparing answers.
func Normalize(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	space := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && builder.Len() > 0 {
			builder.WriteByte(' ')
		}
		space = false
		builder.WriteRune(unicode.ToLower(r))
	}

	return builder.String()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
