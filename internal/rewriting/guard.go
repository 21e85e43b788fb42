package rewriting

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// checkForbiddenPhrasesInText returns the phrases found in text, case-insensitively,
// in the order given and without duplicates.
func checkForbiddenPhrasesInText(text string, phrases []string) []string {
	if len(phrases) == 0 {
		return nil
	}

	normalizedText := strings.ToLower(text)

	var found []string
	seen := make(map[string]bool)
	for _, phrase := range phrases {
		normalized := strings.ToLower(strings.TrimSpace(phrase))
		if normalized == "" || seen[normalized] {
			continue
		}
		if strings.Contains(normalizedText, normalized) {
			found = append(found, phrase)
			seen[normalized] = true
		}
	}

	return found
}

// FindForbiddenPhrases checks every free-text field of a resume.
// Returns a map of field location -> phrases found there.
func FindForbiddenPhrases(resume *types.ResumeDocument, phrases []string) map[string][]string {
	if resume == nil || len(phrases) == 0 {
		return map[string][]string{}
	}

	result := make(map[string][]string)
	check := func(location, text string) {
		if found := checkForbiddenPhrasesInText(text, phrases); len(found) > 0 {
			result[location] = found
		}
	}

	check("summary", resume.Summary)
	for i, exp := range resume.Experience {
		for j, achievement := range exp.Achievements {
			check(fmt.Sprintf("experience[%d].achievements[%d]", i, j), achievement)
		}
	}
	for i, project := range resume.Projects {
		check(fmt.Sprintf("projects[%d].description", i), project.Description)
	}

	return result
}

// CheckPreservedFacts compares a revision to its source and lists every
// employer, title or degree that was added, dropped or renamed.
func CheckPreservedFacts(source, revised *types.ResumeDocument) []string {
	if source == nil || revised == nil {
		return nil
	}

	var violations []string
	if !strings.EqualFold(strings.TrimSpace(source.Contact.Name), strings.TrimSpace(revised.Contact.Name)) {
		violations = append(violations, fmt.Sprintf("contact name changed from %q to %q", source.Contact.Name, revised.Contact.Name))
	}

	violations = append(violations, diffFacts("employer", experienceFacts(source), experienceFacts(revised))...)
	violations = append(violations, diffFacts("degree", educationFacts(source), educationFacts(revised))...)
	return violations
}

func experienceFacts(r *types.ResumeDocument) []string {
	facts := make([]string, 0, len(r.Experience))
	for _, exp := range r.Experience {
		facts = append(facts, normalizeFact(exp.Company)+" / "+normalizeFact(exp.Title))
	}
	return facts
}

func educationFacts(r *types.ResumeDocument) []string {
	facts := make([]string, 0, len(r.Education))
	for _, edu := range r.Education {
		facts = append(facts, normalizeFact(edu.Institution)+" / "+normalizeFact(edu.Degree))
	}
	return facts
}

func normalizeFact(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// diffFacts reports multiset differences between source and revised facts
func diffFacts(kind string, source, revised []string) []string {
	counts := make(map[string]int)
	for _, fact := range source {
		counts[fact]++
	}
	for _, fact := range revised {
		counts[fact]--
	}

	var violations []string
	reported := make(map[string]bool)
	for _, fact := range append(append([]string{}, source...), revised...) {
		if reported[fact] {
			continue
		}
		reported[fact] = true
		switch n := counts[fact]; {
		case n > 0:
			violations = append(violations, fmt.Sprintf("%s %q dropped", kind, fact))
		case n < 0:
			violations = append(violations, fmt.Sprintf("%s %q added", kind, fact))
		}
	}
	return violations
}
