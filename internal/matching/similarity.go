package matching

import (
	"math"
	"strings"
	"time"
)

// StringSimilarity scores how alike two strings are on a 0..1 scale using
// Levenshtein distance normalized by the longer string's length. Comparison
// is case-insensitive. Two empty strings score 1; if only one side is empty
// the score is 0.
func StringSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		if a == "" && b == "" {
			return 1
		}
		return 0
	}

	s1 := []rune(strings.ToLower(a))
	s2 := []rune(strings.ToLower(b))

	distance := levenshtein(s1, s2)
	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}

	return 1 - float64(distance)/float64(maxLen)
}

// levenshtein computes the edit distance with unit costs for insertion,
// deletion and substitution. Two rolling rows instead of the full table.
func levenshtein(s1, s2 []rune) int {
	prev := make([]int, len(s1)+1)
	curr := make([]int, len(s1)+1)

	for i := 0; i <= len(s1); i++ {
		prev[i] = i
	}

	for j := 1; j <= len(s2); j++ {
		curr[0] = j
		for i := 1; i <= len(s1); i++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[i] = min3(
				curr[i-1]+1,    // deletion
				prev[i]+1,      // insertion
				prev[i-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(s1)]
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

const millisPerDay = 1000 * 60 * 60 * 24

// DatesInRange reports whether two date strings fall within daysRange whole
// days of each other. The difference is the ceiling of the millisecond gap
// over a day, matching calendar intuition for mixed time-of-day inputs.
// Missing or unparseable dates never match.
func DatesInRange(date1, date2 string, daysRange int) bool {
	d1, ok1 := parseDate(date1)
	d2, ok2 := parseDate(date2)
	if !ok1 || !ok2 {
		return false
	}

	diffMillis := d2.Sub(d1).Milliseconds()
	if diffMillis < 0 {
		diffMillis = -diffMillis
	}
	diffDays := int(math.Ceil(float64(diffMillis) / float64(millisPerDay)))

	return diffDays <= daysRange
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
