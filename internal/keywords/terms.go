package keywords

import (
	"regexp"
	"strings"
)

// Category groups technical terms for consumers that need categorized keywords
type Category string

// Technical term categories
const (
	CategoryLanguages  Category = "languages"
	CategoryFrameworks Category = "frameworks"
	CategoryDatabases  Category = "databases"
	CategoryCloud      Category = "cloud"
	CategoryML         Category = "ml"
)

// Categories lists the technical categories in reporting order
var Categories = []Category{CategoryLanguages, CategoryFrameworks, CategoryDatabases, CategoryCloud, CategoryML}

// boundary-safe patterns: terms like c++ and c# end in non-word characters,
// so matches are anchored on surrounding non-alphanumerics instead of \b
var technicalPatterns = map[Category]*regexp.Regexp{
	CategoryLanguages: regexp.MustCompile(`(?i)(?:^|[^a-z0-9_])(golang|go|python|java|javascript|typescript|rust|ruby|kotlin|swift|scala|php|c\+\+|c#|elixir|haskell|sql|bash)(?:$|[^a-z0-9_+#])`),
	CategoryFrameworks: regexp.MustCompile(`(?i)(?:^|[^a-z0-9_])(react|angular|vue|next\.js|node\.js|express|django|flask|fastapi|spring(?: boot)?|rails|gin|echo|grpc|graphql|\.net|laravel)(?:$|[^a-z0-9_])`),
	CategoryDatabases: regexp.MustCompile(`(?i)(?:^|[^a-z0-9_])(postgresql|postgres|mysql|mongodb|redis|cassandra|dynamodb|elasticsearch|sqlite|clickhouse|kafka|snowflake|bigquery)(?:$|[^a-z0-9_])`),
	CategoryCloud: regexp.MustCompile(`(?i)(?:^|[^a-z0-9_])(aws|gcp|azure|kubernetes|k8s|docker|terraform|helm|ansible|jenkins|github actions|ci/cd|prometheus|grafana|linux)(?:$|[^a-z0-9_])`),
	CategoryML: regexp.MustCompile(`(?i)(?:^|[^a-z0-9_])(machine learning|deep learning|tensorflow|pytorch|scikit-learn|pandas|numpy|nlp|llm|computer vision|langchain|mlops)(?:$|[^a-z0-9_])`),
}

var softSkillPattern = regexp.MustCompile(`(?i)(?:^|[^a-z])(leadership|communication|collaborat(?:ive|ion)|teamwork|problem[- ]solving|mentor(?:ing|ship)?|ownership|adaptab(?:le|ility)|self[- ]starter|detail[- ]oriented|analytical|proactive|creative|organized|strategic|empath(?:y|etic)|cross[- ]functional|stakeholder management)(?:$|[^a-z])`)

// ExtractTechnicalTerms returns deduplicated lowercase technical terms per category.
// Categories with no matches are omitted.
func ExtractTechnicalTerms(text string) map[Category][]string {
	result := make(map[Category][]string)
	if strings.TrimSpace(text) == "" {
		return result
	}

	for _, category := range Categories {
		if terms := findAll(technicalPatterns[category], text, false); len(terms) > 0 {
			result[category] = terms
		}
	}
	return result
}

// ExtractSoftSkills returns deduplicated lowercase soft-skill terms found in text
func ExtractSoftSkills(text string) []string {
	return findAll(softSkillPattern, text, true)
}

// findAll collects group 1 of every match. Separators consumed by one match
// would hide an adjacent term, so scanning restarts right after the term.
func findAll(pattern *regexp.Regexp, text string, unhyphenate bool) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)

	offset := 0
	for offset < len(text) {
		loc := pattern.FindStringSubmatchIndex(text[offset:])
		if loc == nil {
			break
		}
		term := strings.ToLower(text[offset+loc[2] : offset+loc[3]])
		term = whitespace.ReplaceAllString(term, " ")
		if unhyphenate {
			term = strings.ReplaceAll(term, "-", " ")
		}
		if !seen[term] {
			seen[term] = true
			out = append(out, term)
		}
		offset += loc[3]
	}
	return out
}
