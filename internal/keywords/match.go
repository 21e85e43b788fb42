package keywords

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// Match is the partition of a target keyword set against a text
type Match struct {
	Matched types.KeywordSet
	Missing types.KeywordSet
	Density map[string]int
}

// Coverage returns matched/total, or 0 for an empty target set
func (m Match) Coverage() float64 {
	total := len(m.Matched) + len(m.Missing)
	if total == 0 {
		return 0
	}
	return float64(len(m.Matched)) / float64(total)
}

// MatchKeywords counts case-insensitive whole-word occurrences of every keyword in text.
// Every keyword lands in exactly one of Matched or Missing, in target order.
func MatchKeywords(text string, targets types.KeywordSet) Match {
	m := Match{
		Matched: types.KeywordSet{},
		Missing: types.KeywordSet{},
		Density: make(map[string]int, len(targets)),
	}

	lowered := strings.ToLower(text)
	for _, keyword := range targets {
		kw := strings.ToLower(strings.TrimSpace(keyword))
		if _, dup := m.Density[keyword]; dup {
			continue
		}
		count := 0
		if kw != "" {
			count = countWholeWord(lowered, kw)
		}
		m.Density[keyword] = count
		if count > 0 {
			m.Matched = append(m.Matched, keyword)
		} else {
			m.Missing = append(m.Missing, keyword)
		}
	}
	return m
}

// countWholeWord counts non-overlapping occurrences of needle that are not
// embedded in a longer word. Only letters, digits and '_' join words, so
// "c++" and "ci/cd" match on their literal form.
func countWholeWord(haystack, needle string) int {
	count := 0
	start := 0
	for {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return count
		}
		begin := start + idx
		end := begin + len(needle)
		if isBoundaryBefore(haystack, begin, needle) && isBoundaryAfter(haystack, end, needle) {
			count++
			start = end
		} else {
			start = begin + 1
		}
		if start >= len(haystack) {
			return count
		}
	}
}

func isBoundaryBefore(s string, pos int, needle string) bool {
	first, _ := utf8.DecodeRuneInString(needle)
	if !isWordRune(first) {
		return true
	}
	if pos == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:pos])
	return !isWordRune(prev)
}

func isBoundaryAfter(s string, pos int, needle string) bool {
	last, _ := utf8.DecodeLastRuneInString(needle)
	if !isWordRune(last) {
		return true
	}
	if pos >= len(s) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(s[pos:])
	return !isWordRune(next)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
