package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a resume JSON file",
	Long:  "Checks a resume JSON file against the resume document schema and the structural rules used before scoring.",
	RunE:  runValidate,
}

var validateResumeFile string

func init() {
	validateCmd.Flags().StringVarP(&validateResumeFile, "resume", "r", "", "Path to resume JSON file (required)")

	if err := validateCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	if err := schemas.ValidateResumeFile(validateResumeFile); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("schema validation failed for fields: %s", strings.Join(validationErr.Fields(), ", "))
		}
		return err
	}

	if _, err := loadResume(validateResumeFile); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Resume is valid: %s\n", validateResumeFile)
	return nil
}
