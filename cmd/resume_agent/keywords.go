package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/keywords"
	"github.com/jonathan/resume-optimizer/internal/observability"
	"github.com/jonathan/resume-optimizer/internal/types"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Extract target keywords from a job description",
	Long:  "Extracts the most frequent job keywords plus categorized technical terms and soft skills from a text or HTML job description.",
	RunE:  runKeywords,
}

var (
	keywordsJobFile string
	keywordsTopN    int
	keywordsJSON    bool
)

func init() {
	keywordsCmd.Flags().StringVarP(&keywordsJobFile, "job", "j", "", "Path to job description file (required)")
	keywordsCmd.Flags().IntVar(&keywordsTopN, "top", keywords.DefaultTopN, "Number of target keywords")
	keywordsCmd.Flags().BoolVar(&keywordsJSON, "json", false, "Print JSON instead of a summary box")

	if err := keywordsCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}

	rootCmd.AddCommand(keywordsCmd)
}

// keywordReport is the JSON output of the keywords command
type keywordReport struct {
	Keywords   types.KeywordSet               `json:"keywords"`
	Technical  map[keywords.Category][]string `json:"technical"`
	SoftSkills []string                       `json:"soft_skills"`
}

func runKeywords(_ *cobra.Command, _ []string) error {
	if keywordsTopN < 0 {
		return fmt.Errorf("--top must be non-negative")
	}

	jobText, _, err := loadJob(keywordsJobFile)
	if err != nil {
		return err
	}

	report := keywordReport{
		Keywords:   keywords.ExtractKeywords(jobText, keywordsTopN),
		Technical:  keywords.ExtractTechnicalTerms(jobText),
		SoftSkills: keywords.ExtractSoftSkills(jobText),
	}

	if keywordsJSON {
		return writeJSON("", report)
	}
	observability.NewPrinter(os.Stdout).PrintKeywords(report.Keywords, report.Technical, report.SoftSkills)
	return nil
}
