package ingestion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Content formats reported in Metadata
const (
	FormatText = "text"
	FormatHTML = "html"
)

var htmlTagPattern = regexp.MustCompile(`(?i)<(html|body|div|p|ul|ol|li|h[1-6]|br|section|article|span)[\s>/]`)

// noiseSelector matches page chrome that never belongs to a job description
const noiseSelector = "nav, footer, header, script, style, noscript, iframe, form, .ad, .advertisement, .sidebar, .cookie-banner, .popup"

// contentSelectors locate the description on common job pages, most specific first
var contentSelectors = []string{
	".job-description",
	"#job-description",
	".job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	"#content",
	".content",
}

// LooksLikeHTML reports whether content contains common block-level markup
func LooksLikeHTML(content string) bool {
	return htmlTagPattern.MatchString(content)
}

// HTMLToText extracts the job description from an HTML page. Headings become
// markdown headings and list items become "- " bullets so CleanText keeps
// the structure.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	var main *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			main = selection.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	main.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level := int(goquery.NodeName(s)[1] - '0')
		s.ReplaceWithHtml("\n\n" + strings.Repeat("#", level) + " " + escapeText(s.Text()) + "\n\n")
	})
	main.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n- " + escapeText(strings.Join(strings.Fields(s.Text()), " ")) + "\n")
	})
	main.Find("br").ReplaceWithHtml("\n")
	main.Find("p, div, section, tr, ul, ol").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
		s.AppendHtml("\n")
	})

	return CleanText(main.Text()), nil
}

// escapeText makes extracted text safe to splice back in as HTML
func escapeText(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(strings.TrimSpace(s))
}
