package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"document", "<html><body>x</body></html>", true},
		{"fragment", "<div class=\"job\">Go</div>", true},
		{"line break", "Go<br/>Rust", true},
		{"uppercase", "<P>Go</P>", true},
		{"plain text", "Senior Go engineer", false},
		{"comparison", "a < b and c > d", false},
		{"markdown", "# Title\n- bullet", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LooksLikeHTML(tt.input))
		})
	}
}

func TestHTMLToText_PrefersJobDescription(t *testing.T) {
	html := `<html><body>
		<header>Careers at Acme</header>
		<div class="sidebar">Other openings</div>
		<main>
			<div class="job-description">
				<h1>Senior Backend Engineer</h1>
				<p>We build   distributed systems.</p>
				<h3>You have</h3>
				<ul><li>5+ years of <b>Go</b></li><li>PostgreSQL &amp; Kafka</li></ul>
			</div>
			<div class="apply">Apply now</div>
		</main>
		<script>track()</script>
		<footer>© Acme</footer>
	</body></html>`

	text, err := HTMLToText(html)
	require.NoError(t, err)

	assert.Contains(t, text, "# Senior Backend Engineer")
	assert.Contains(t, text, "We build distributed systems.")
	assert.Contains(t, text, "### You have")
	assert.Contains(t, text, "- 5+ years of Go")
	assert.Contains(t, text, "- PostgreSQL & Kafka")

	assert.NotContains(t, text, "Careers at Acme")
	assert.NotContains(t, text, "Other openings")
	assert.NotContains(t, text, "Apply now")
	assert.NotContains(t, text, "track()")
	assert.NotContains(t, text, "© Acme")
}

func TestHTMLToText_FallsBackToBody(t *testing.T) {
	text, err := HTMLToText(`<body><p>First paragraph.</p><p>Second<br>line</p></body>`)
	require.NoError(t, err)

	assert.Equal(t, "First paragraph.\n\nSecond\nline", text)
}

func TestHTMLToText_Empty(t *testing.T) {
	text, err := HTMLToText("")
	require.NoError(t, err)
	assert.Empty(t, text)
}
