// Package rewriting revises a structured resume with an LLM and validates the
// result before it is handed back to the optimization loop.
package rewriting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/prompts"
	"github.com/jonathan/resume-optimizer/internal/schemas"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// DefaultRepairAttempts is how many times a malformed response is sent back for correction
const DefaultRepairAttempts = 1

// Reviser rewrites a resume toward a fixed job description
type Reviser struct {
	client           llm.Client
	jobDescription   string
	tier             llm.ModelTier
	repairAttempts   int
	forbiddenPhrases []string
	preserveFacts    bool
	logger           *zap.Logger
}

// Option configures a Reviser
type Option func(*Reviser)

// WithTier selects the model tier used for revisions
func WithTier(tier llm.ModelTier) Option {
	return func(r *Reviser) { r.tier = tier }
}

// WithRepairAttempts sets how many correction round trips are allowed for malformed output
func WithRepairAttempts(n int) Option {
	return func(r *Reviser) {
		if n >= 0 {
			r.repairAttempts = n
		}
	}
}

// WithForbiddenPhrases rejects revisions containing any of phrases
func WithForbiddenPhrases(phrases []string) Option {
	return func(r *Reviser) { r.forbiddenPhrases = append([]string(nil), phrases...) }
}

// WithFactCheck toggles rejection of revisions that alter employers, titles or degrees
func WithFactCheck(enabled bool) Option {
	return func(r *Reviser) { r.preserveFacts = enabled }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reviser) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReviser creates a Reviser for one job description
func NewReviser(client llm.Client, jobDescription string, opts ...Option) *Reviser {
	r := &Reviser{
		client:         client,
		jobDescription: jobDescription,
		tier:           llm.TierAdvanced,
		repairAttempts: DefaultRepairAttempts,
		preserveFacts:  true,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Revise asks the model for a revised resume. Its signature matches optimizer.ReviseFunc.
// Every failure is returned as an error and the caller's resume is never modified.
func (r *Reviser) Revise(ctx context.Context, current *types.ResumeDocument, feedback string) (*types.ResumeDocument, error) {
	if r.client == nil {
		return nil, &APICallError{Message: "LLM client is required"}
	}
	if current == nil {
		return nil, &ParseError{Message: "current resume is nil"}
	}

	prompt, err := buildRevisionPrompt(current, r.jobDescription, feedback)
	if err != nil {
		return nil, err
	}

	output, err := r.client.GenerateJSON(ctx, prompt, r.tier)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate revision", Cause: err}
	}

	revised, parseErr := ParseResume(output)
	for attempt := 1; parseErr != nil && attempt <= r.repairAttempts; attempt++ {
		r.logger.Debug("revision output rejected, requesting repair",
			zap.Int("attempt", attempt),
			zap.Error(parseErr),
		)

		repairPrompt, err := buildRepairPrompt(output, parseErr)
		if err != nil {
			return nil, err
		}
		output, err = r.client.GenerateJSON(ctx, repairPrompt, r.tier)
		if err != nil {
			return nil, &APICallError{Message: "failed to generate repaired revision", Cause: err}
		}
		revised, parseErr = ParseResume(output)
	}
	if parseErr != nil {
		return nil, parseErr
	}

	if violations := r.guardViolations(current, revised); len(violations) > 0 {
		return nil, &GuardError{Violations: violations}
	}

	return revised, nil
}

func (r *Reviser) guardViolations(current, revised *types.ResumeDocument) []string {
	var violations []string
	if r.preserveFacts {
		violations = append(violations, CheckPreservedFacts(current, revised)...)
	}

	found := FindForbiddenPhrases(revised, r.forbiddenPhrases)
	locations := make([]string, 0, len(found))
	for location := range found {
		locations = append(locations, location)
	}
	sort.Strings(locations)
	for _, location := range locations {
		violations = append(violations, fmt.Sprintf("forbidden phrase %s in %s", strings.Join(found[location], ", "), location))
	}
	return violations
}

// ParseResume turns raw model output into a validated resume document.
// The output must be JSON matching the resume schema and pass ResumeDocument.Validate.
func ParseResume(output string) (*types.ResumeDocument, error) {
	cleaned := llm.CleanJSONBlock(output)
	if cleaned == "" {
		return nil, &ParseError{Message: "empty response"}
	}

	if err := schemas.ValidateResumeJSON(cleaned); err != nil {
		return nil, &ParseError{Message: "response does not match resume schema", Cause: err}
	}

	var resume types.ResumeDocument
	if err := json.Unmarshal([]byte(cleaned), &resume); err != nil {
		return nil, &ParseError{Message: "failed to decode resume", Cause: err}
	}

	if err := resume.Validate(); err != nil {
		return nil, &ParseError{Message: "resume failed validation", Cause: err}
	}

	return &resume, nil
}

func buildRevisionPrompt(current *types.ResumeDocument, jobDescription, feedback string) (string, error) {
	resumeJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode current resume: %w", err)
	}

	if strings.TrimSpace(feedback) == "" {
		feedback = "(no feedback)"
	}

	return prompts.Render(prompts.OptimizationFile, prompts.KeyReviseResume, map[string]string{
		"JobDescription": jobDescription,
		"Feedback":       feedback,
		"Resume":         string(resumeJSON),
		"Schema":         schemas.ResumeDocumentSchema(),
	})
}

func buildRepairPrompt(output string, cause error) (string, error) {
	return prompts.Render(prompts.OptimizationFile, prompts.KeyRepairResumeJSON, map[string]string{
		"Errors": describeParseError(cause),
		"Output": output,
		"Schema": schemas.ResumeDocumentSchema(),
	})
}

func describeParseError(err error) string {
	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		lines := make([]string, 0, len(validationErr.Errors))
		for _, fe := range validationErr.Errors {
			lines = append(lines, fmt.Sprintf("- %s: %s", fe.Field, fe.Message))
		}
		return strings.Join(lines, "\n")
	}
	return "- " + err.Error()
}
