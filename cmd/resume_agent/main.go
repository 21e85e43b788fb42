// Package main provides the resume_agent CLI: keyword extraction, resume
// scoring and iterative resume optimization against a job description.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_agent",
	Short: "Resume-to-job fit scoring and optimization",
	Long: `resume_agent scores a structured resume against a job description using
semantic similarity and an ATS rubric, and iteratively revises it with an LLM
until the combined score reaches a target or stops improving.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
