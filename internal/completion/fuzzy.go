package completion

import (
	"strings"
	"unicode"
)

// fuzzyMatch reports whether text matches pattern, case-insensitively.
// A substring hit matches; otherwise every pattern rune must appear in text
// in order (subsequence match).
func fuzzyMatch(text, pattern string) bool {
	if pattern == "" {
		return true
	}

	textLower := strings.ToLower(text)
	patternLower := strings.ToLower(pattern)

	if strings.Contains(textLower, patternLower) {
		return true
	}

	textRunes := []rune(textLower)
	patternRunes := []rune(patternLower)

	ti := 0
	for pi := 0; pi < len(patternRunes) && ti < len(textRunes); pi++ {
		for ti < len(textRunes) && textRunes[ti] != patternRunes[pi] {
			ti++
		}
		if ti >= len(textRunes) {
			return false
		}
		ti++
	}
	return true
}

// fuzzyScore rates how well text matches pattern; higher is better.
// Exact match dominates, then prefix, substring and word-boundary hits,
// with a small bonus for consecutive matched runes and a length penalty.
func fuzzyScore(text, pattern string) int {
	if pattern == "" {
		return 0
	}

	textLower := strings.ToLower(text)
	patternLower := strings.ToLower(pattern)

	if textLower == patternLower {
		return 1000
	}

	score := 0
	if strings.HasPrefix(textLower, patternLower) {
		score += 500
	}
	if strings.Contains(textLower, patternLower) {
		score += 200
	}
	if matchesBoundaries(text, pattern) {
		score += 300
	}

	textRunes := []rune(textLower)
	patternRunes := []rune(patternLower)
	consecutive := 0
	ti := 0
	for pi := 0; pi < len(patternRunes) && ti < len(textRunes); pi++ {
		for ti < len(textRunes) && textRunes[ti] != patternRunes[pi] {
			ti++
			consecutive = 0
		}
		if ti < len(textRunes) {
			score += 10 + consecutive
			consecutive += 5
			ti++
		}
	}

	if diff := len(textRunes) - len(patternRunes); diff > 0 {
		score -= diff * 2
	}
	return score
}

// matchesBoundaries checks the pattern against camelCase and snake_case
// word-start runes of text.
func matchesBoundaries(text, pattern string) bool {
	if pattern == "" {
		return true
	}

	boundaries := wordBoundaries(text)
	if len(boundaries) == 0 {
		return false
	}

	patternRunes := []rune(strings.ToLower(pattern))
	pi := 0
	for _, b := range boundaries {
		if pi < len(patternRunes) && unicode.ToLower(b) == patternRunes[pi] {
			pi++
		}
	}
	return pi == len(patternRunes)
}

// wordBoundaries extracts the word-start runes of text.
func wordBoundaries(text string) []rune {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	boundaries := []rune{runes[0]}
	for i := 1; i < len(runes); i++ {
		c, prev := runes[i], runes[i-1]
		if c == '_' {
			continue
		}
		if prev == '_' {
			boundaries = append(boundaries, c)
			continue
		}
		if unicode.IsUpper(c) && unicode.IsLower(prev) {
			boundaries = append(boundaries, c)
		}
	}
	return boundaries
}
