// Package keywords extracts ranked and categorized keywords from free text.
package keywords

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// DefaultTopN is used when ExtractKeywords is called with topN <= 0
const DefaultTopN = 20

// minTokenLength is the shortest token kept unless it is a known short term
const minTokenLength = 3

// stopWords are dropped before counting: articles, auxiliaries, prepositions, pronouns
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "any": true, "can": true, "had": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "has": true, "have": true,
	"been": true, "were": true, "will": true, "would": true, "could": true, "should": true,
	"must": true, "may": true, "might": true, "shall": true, "this": true, "that": true,
	"these": true, "those": true, "with": true, "from": true, "into": true, "onto": true,
	"about": true, "over": true, "under": true, "between": true, "through": true,
	"their": true, "them": true, "they": true, "your": true, "yours": true, "his": true,
	"she": true, "him": true, "its": true, "who": true, "whom": true, "which": true,
	"what": true, "when": true, "where": true, "why": true, "how": true, "also": true,
	"able": true, "such": true, "than": true, "then": true, "there": true, "here": true,
	"does": true, "did": true, "doing": true, "being": true, "more": true, "most": true,
	"other": true, "some": true, "very": true, "just": true, "well": true, "within": true,
	"while": true, "because": true, "ours": true, "theirs": true, "etc": true,
}

// shortTerms are technical terms kept despite being shorter than minTokenLength
var shortTerms = map[string]bool{
	"go": true, "ai": true, "ml": true, "ui": true, "ux": true, "qa": true,
	"c": true, "r": true, "js": true, "ts": true, "ci": true, "cd": true,
	"db": true, "os": true, "c#": true, "f#": true,
}

// tokenCleaner strips everything except letters, digits, '+' and '#'
var tokenCleaner = regexp.MustCompile(`[^\p{L}\p{N}+#]`)

// phrasePatterns match multi-word technical terms in the raw text
var phrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bmachine\s+learning\b`),
	regexp.MustCompile(`(?i)\bdeep\s+learning\b`),
	regexp.MustCompile(`(?i)\bfull[\s-]+stack\b`),
	regexp.MustCompile(`(?i)\bci\s*/\s*cd\b`),
	regexp.MustCompile(`(?i)\bdata\s+science\b`),
	regexp.MustCompile(`(?i)\bdata\s+engineering\b`),
	regexp.MustCompile(`(?i)\bnatural\s+language\s+processing\b`),
	regexp.MustCompile(`(?i)\bcomputer\s+vision\b`),
	regexp.MustCompile(`(?i)\bdistributed\s+systems?\b`),
	regexp.MustCompile(`(?i)\bcloud[\s-]+native\b`),
	regexp.MustCompile(`(?i)\brest(?:ful)?\s+apis?\b`),
	regexp.MustCompile(`(?i)\bevent[\s-]+driven\b`),
	regexp.MustCompile(`(?i)\btest[\s-]+driven\s+development\b`),
	regexp.MustCompile(`(?i)\bunit\s+testing\b`),
	regexp.MustCompile(`(?i)\bsystem\s+design\b`),
	regexp.MustCompile(`(?i)\bproject\s+management\b`),
	regexp.MustCompile(`(?i)\bproduct\s+management\b`),
	regexp.MustCompile(`(?i)\binfrastructure\s+as\s+code\b`),
	regexp.MustCompile(`(?i)\bsite\s+reliability\b`),
}

var (
	whitespace   = regexp.MustCompile(`\s+`)
	slashSpacing = regexp.MustCompile(`\s*/\s*`)
)

type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(term string, n int) {
	if _, seen := c.counts[term]; !seen {
		c.order = append(c.order, term)
	}
	c.counts[term] += n
}

// ExtractKeywords returns the topN most frequent keywords of text.
// Ties keep first-appearance order: single tokens in text order, then phrases.
func ExtractKeywords(text string, topN int) types.KeywordSet {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if strings.TrimSpace(text) == "" {
		return types.KeywordSet{}
	}

	c := newCounter()

	for _, raw := range strings.Fields(text) {
		token := normalizeToken(raw)
		if !keepToken(token) {
			continue
		}
		c.add(token, 1)
	}

	// Phrases are collected in text order across all patterns
	type phraseHit struct {
		term string
		pos  int
	}
	var hits []phraseHit
	for _, pattern := range phrasePatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			hits = append(hits, phraseHit{term: normalizePhrase(text[loc[0]:loc[1]]), pos: loc[0]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	for _, hit := range hits {
		c.add(hit.term, 1)
	}

	ranked := make([]string, len(c.order))
	copy(ranked, c.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return c.counts[ranked[i]] > c.counts[ranked[j]]
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return types.KeywordSet(ranked)
}

func normalizeToken(raw string) string {
	return tokenCleaner.ReplaceAllString(strings.ToLower(raw), "")
}

func keepToken(token string) bool {
	if token == "" || stopWords[token] {
		return false
	}
	if shortTerms[token] {
		return true
	}
	// tokens made only of '+' or '#' carry no meaning
	if strings.Trim(token, "+#") == "" {
		return false
	}
	return len([]rune(token)) >= minTokenLength
}

func normalizePhrase(match string) string {
	phrase := strings.ToLower(strings.TrimSpace(match))
	phrase = whitespace.ReplaceAllString(phrase, " ")
	phrase = slashSpacing.ReplaceAllString(phrase, "/")
	return strings.ReplaceAll(phrase, "-", " ")
}
