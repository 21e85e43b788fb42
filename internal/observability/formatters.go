// Package observability provides logging and formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/ats"
	"github.com/jonathan/resume-optimizer/internal/keywords"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/optimizer"
	"github.com/jonathan/resume-optimizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, Truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList writes up to limit items as bullets with an overflow line
func writeList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		fmt.Fprintf(sb, "  • %s\n", items[i])
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
}

// PrintKeywords outputs the target keywords and categorized terms of a job description.
func (p *Printer) PrintKeywords(targets types.KeywordSet, terms map[keywords.Category][]string, softSkills []string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Target keywords (%d):\n", len(targets))
	sb.WriteString(wrapJoined(targets, boxWidth-6))
	sb.WriteString("\n")

	for _, category := range keywords.Categories {
		if found := terms[category]; len(found) > 0 {
			fmt.Fprintf(&sb, "%-11s %s\n", string(category)+":", strings.Join(found, ", "))
		}
	}
	if len(softSkills) > 0 {
		fmt.Fprintf(&sb, "%-11s %s\n", "soft:", strings.Join(softSkills, ", "))
	}

	p.printBox("JOB KEYWORDS", strings.TrimSuffix(sb.String(), "\n"))
}

// wrapJoined joins words with ", " and breaks lines before width
func wrapJoined(words []string, width int) string {
	if len(words) == 0 {
		return "  (none)\n"
	}

	var sb strings.Builder
	line := "  "
	for i, w := range words {
		item := w
		if i < len(words)-1 {
			item += ","
		}
		if len(line)+len(item)+1 > width && strings.TrimSpace(line) != "" {
			sb.WriteString(strings.TrimRight(line, " ") + "\n")
			line = "  "
		}
		line += item + " "
	}
	sb.WriteString(strings.TrimRight(line, " ") + "\n")
	return sb.String()
}

// PrintScore outputs the similarity and ATS breakdown for one scored resume.
func (p *Printer) PrintScore(rec types.IterationRecord) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Combined:   %.2f\n", rec.CombinedScore)
	fmt.Fprintf(&sb, "Similarity: %.2f (cosine %.2f, keywords %.2f)\n",
		rec.Similarity.Score, rec.Similarity.Cosine, rec.Similarity.KeywordScore)
	fmt.Fprintf(&sb, "ATS:        %.2f (coverage %.0f%%)\n", rec.Fit.TotalScore, rec.Fit.KeywordCoverage)
	sb.WriteString("\n")

	for _, dim := range ats.Dimensions {
		if v, ok := rec.Fit.Breakdown[dim]; ok {
			fmt.Fprintf(&sb, "  %-16s %6.1f\n", dim, v)
		}
	}

	if len(rec.Similarity.MissingKeywords) > 0 {
		sb.WriteString("\nMissing keywords:\n")
		writeList(&sb, rec.Similarity.MissingKeywords, maxItemsToShow)
	}
	if len(rec.Fit.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		writeList(&sb, rec.Fit.Recommendations, maxItemsToShow)
	}

	p.printBox("RESUME SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintIterationTrace outputs one line per iteration with the best one marked.
func (p *Printer) PrintIterationTrace(result *types.OptimizationResult) {
	if result == nil || len(result.Iterations) == 0 {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-4s %8s %8s %8s %8s\n", "#", "combined", "delta", "sim", "ats")
	for _, rec := range result.Iterations {
		marker := ""
		if rec.Iteration == result.BestIteration {
			marker = " ★"
		}
		fmt.Fprintf(&sb, "%-4d %8.2f %+8.2f %8.2f %8.2f%s\n",
			rec.Iteration, rec.CombinedScore, rec.ImprovementDelta,
			rec.Similarity.Score, rec.Fit.TotalScore, marker)
	}
	fmt.Fprintf(&sb, "\nStopped: %s", result.TerminalState)

	p.printBox("OPTIMIZATION TRACE", sb.String())
}

// PrintAnalysis outputs the strengths, weak spots and summary of a run.
func (p *Printer) PrintAnalysis(analysis optimizer.Analysis) {
	var sb strings.Builder

	if len(analysis.Strengths) > 0 {
		sb.WriteString("Strengths:\n")
		writeList(&sb, analysis.Strengths, maxItemsToShow)
		sb.WriteString("\n")
	}
	if len(analysis.Improvements) > 0 {
		sb.WriteString("Needs work:\n")
		writeList(&sb, analysis.Improvements, maxItemsToShow)
		sb.WriteString("\n")
	}
	sb.WriteString(analysis.Summary)

	p.printBox("ANALYSIS", sb.String())
}

// PrintRuns outputs recorded runs, newest first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRuns(runs []metrics.Run) {
	if len(runs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "No recorded runs")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	for i, run := range runs {
		fmt.Fprintf(&sb, "%s  %s\n", run.CreatedAt.Format("2006-01-02 15:04"), run.ID)
		fmt.Fprintf(&sb, "  %.2f -> %.2f (%+.2f), %d iterations, %s\n",
			run.BaselineScore, run.FinalScore, run.Improvement, run.Iterations, run.TerminalState)
		if run.JobRef != "" {
			fmt.Fprintf(&sb, "  job: %s\n", run.JobRef)
		}
		if entries, err := run.DecodeTrace(); err == nil && len(entries) > 0 {
			scores := make([]string, len(entries))
			for j, e := range entries {
				scores[j] = fmt.Sprintf("%.1f", e.CombinedScore)
			}
			fmt.Fprintf(&sb, "  trace: %s\n", strings.Join(scores, " -> "))
		}
		if i < len(runs)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("RECORDED RUNS (%d)", len(runs)), strings.TrimSuffix(sb.String(), "\n"))
}
