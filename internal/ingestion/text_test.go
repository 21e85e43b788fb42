package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText_PreserveMarkdownHeadings(t *testing.T) {
	input := "# Title\n## Subtitle\nContent here"
	result := CleanText(input)

	assert.Contains(t, result, "# Title")
	assert.Contains(t, result, "## Subtitle")
	assert.Contains(t, result, "Content here")
}

func TestCleanText_PreserveBulletLists(t *testing.T) {
	input := "- Item 1\n- Item 2\n* Item 3"
	result := CleanText(input)

	assert.Contains(t, result, "- Item 1")
	assert.Contains(t, result, "- Item 2")
	assert.Contains(t, result, "* Item 3")
}

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	input := "Line    with    multiple    spaces"
	result := CleanText(input)

	assert.Contains(t, result, "Line with multiple spaces")
	assert.NotContains(t, result, "    ") // Should not have 4 spaces
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	input := "Line 1\n\n\n\n\nLine 2"
	result := CleanText(input)

	// Should have max 2 consecutive newlines
	assert.NotContains(t, result, "\n\n\n\n")
	// But should preserve up to 2
	assert.Contains(t, result, "\n\n")
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	input := "Line 1\r\nLine 2\rLine 3\nLine 4"
	result := CleanText(input)

	// All should be normalized to LF
	assert.NotContains(t, result, "\r\n")
	assert.NotContains(t, result, "\r")
	assert.Contains(t, result, "\n")
}

func TestCleanText_DeterministicOutput(t *testing.T) {
	input := "Test content   with   spaces\n\n\nMultiple   blank   lines"
	result1 := CleanText(input)
	result2 := CleanText(input)

	// Same input should produce identical output
	assert.Equal(t, result1, result2)
}

func TestCleanText_EmptyInput(t *testing.T) {
	result := CleanText("")
	assert.Empty(t, result)
}

func TestCleanText_OnlyWhitespace(t *testing.T) {
	result := CleanText("   \n  \n  ")
	assert.Empty(t, result)
}

func TestCleanText_SpecialCharacters(t *testing.T) {
	input := "Test with émojis 🚀 and spéciàl chàracters"
	result := CleanText(input)

	assert.Contains(t, result, "émojis")
	assert.Contains(t, result, "🚀")
	assert.Contains(t, result, "spéciàl chàracters")
}

func TestCleanText_PreserveIndentation(t *testing.T) {
	input := "    Indented line\n  Less indented"
	result := CleanText(input)

	// Should preserve relative indentation
	assert.Contains(t, result, "Indented")
	assert.Contains(t, result, "Less indented")
}

func TestCleanText_PreserveUnicodeBullets(t *testing.T) {
	result := CleanText("•   Go experience\n  · Kubernetes")

	assert.Contains(t, result, "•   Go experience")
	assert.Contains(t, result, "  · Kubernetes")
}

func TestIngestFromFile_Success(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.txt")
	err := os.WriteFile(testFile, []byte("# Job Title\n\nDescription    here"), 0644)
	require.NoError(t, err)

	cleanedText, metadata, err := IngestFromFile(testFile)
	require.NoError(t, err)

	assert.Equal(t, "# Job Title\n\nDescription here", cleanedText)
	require.NotNil(t, metadata)
	assert.Equal(t, testFile, metadata.Source)
	assert.Equal(t, FormatText, metadata.Format)
	assert.Len(t, metadata.Hash, 64)
	assert.NotEmpty(t, metadata.Timestamp)
}

func TestIngestFromFile_HTML(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "job.html")
	html := `<html><body><nav>Home | Jobs</nav><main><h2>Requirements</h2><ul><li>Go</li><li>Kubernetes</li></ul></main></body></html>`
	require.NoError(t, os.WriteFile(testFile, []byte(html), 0644))

	cleanedText, metadata, err := IngestFromFile(testFile)
	require.NoError(t, err)

	assert.Equal(t, FormatHTML, metadata.Format)
	assert.Contains(t, cleanedText, "## Requirements")
	assert.Contains(t, cleanedText, "- Go")
	assert.NotContains(t, cleanedText, "Home | Jobs")
	assert.NotContains(t, cleanedText, "<li>")
}

func TestIngestFromFile_FileNotFound(t *testing.T) {
	cleanedText, metadata, err := IngestFromFile("/nonexistent/file.txt")

	assert.Error(t, err)
	assert.Empty(t, cleanedText)
	assert.Nil(t, metadata)
	assert.Contains(t, err.Error(), "file not found")
}

func TestIngestFromFile_HashStability(t *testing.T) {
	tmpDir := t.TempDir()
	testFile1 := filepath.Join(tmpDir, "test1.txt")
	testFile2 := filepath.Join(tmpDir, "test2.txt")
	require.NoError(t, os.WriteFile(testFile1, []byte("Content 1"), 0644))
	require.NoError(t, os.WriteFile(testFile2, []byte("Content 2"), 0644))

	_, first, err := IngestFromFile(testFile1)
	require.NoError(t, err)
	_, again, err := IngestFromFile(testFile1)
	require.NoError(t, err)
	_, other, err := IngestFromFile(testFile2)
	require.NoError(t, err)

	// Same file should produce same hash, different files different hashes
	assert.Equal(t, first.Hash, again.Hash)
	assert.NotEqual(t, first.Hash, other.Hash)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedFormat string
		expected       string
	}{
		{"plain text", "Go   engineer", FormatText, "Go engineer"},
		{"text with angle brackets", "salary > 100k and < 200k", FormatText, "salary > 100k and < 200k"},
		{"html paragraph", "<p>Go   engineer</p>", FormatHTML, "Go engineer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, format, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedFormat, format)
			assert.Equal(t, tt.expected, text)
		})
	}
}
