// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ResumeDocument is the structured resume the engine scores and revises.
// Experience order is display order; it is not sorted chronologically.
type ResumeDocument struct {
	Contact    ContactInfo  `json:"contact"`
	Summary    string       `json:"summary" validate:"required,plaintext"`
	Experience []Experience `json:"experience" validate:"required,min=1,dive"`
	Skills     Skills       `json:"skills"`
	Education  []Education  `json:"education" validate:"dive"`
	Projects   []Project    `json:"projects,omitempty" validate:"dive"`
}

// ContactInfo holds the candidate's contact details
type ContactInfo struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Experience is a single position with its achievement bullets
type Experience struct {
	Title        string   `json:"title" validate:"required"`
	Company      string   `json:"company" validate:"required"`
	Duration     string   `json:"duration,omitempty"`
	Achievements []string `json:"achievements" validate:"dive,required,plaintext"`
}

// Education is a single degree or certification entry
type Education struct {
	Degree      string `json:"degree" validate:"required"`
	Institution string `json:"institution" validate:"required"`
	Year        string `json:"year,omitempty"`
	Details     string `json:"details,omitempty"`
}

// Project is an optional side or portfolio project
type Project struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description,omitempty" validate:"plaintext"`
	Technologies []string `json:"technologies,omitempty"`
}

// Skills is either a flat comma separated string or a category -> skills mapping.
// Exactly one representation is used; the JSON form mirrors whichever was decoded.
type Skills struct {
	Flat       string
	Categories map[string][]string
}

// IsEmpty reports whether no skills are listed in either representation
func (s Skills) IsEmpty() bool {
	if strings.TrimSpace(s.Flat) != "" {
		return false
	}
	for _, items := range s.Categories {
		if len(items) > 0 {
			return false
		}
	}
	return true
}

// List returns every skill as a flat slice, categories in sorted order
func (s Skills) List() []string {
	if len(s.Categories) == 0 {
		var out []string
		for _, part := range strings.Split(s.Flat, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}

	out := make([]string, 0)
	for _, category := range s.categoryNames() {
		out = append(out, s.Categories[category]...)
	}
	return out
}

func (s Skills) categoryNames() []string {
	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON encodes categorized skills as an object and flat skills as a string
func (s Skills) MarshalJSON() ([]byte, error) {
	if len(s.Categories) > 0 {
		return json.Marshal(s.Categories)
	}
	return json.Marshal(s.Flat)
}

// UnmarshalJSON accepts either a string or a category object
func (s *Skills) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = Skills{}
		return nil
	}

	if trimmed[0] == '"' {
		var flat string
		if err := json.Unmarshal(trimmed, &flat); err != nil {
			return fmt.Errorf("failed to decode flat skills: %w", err)
		}
		*s = Skills{Flat: flat}
		return nil
	}

	var categories map[string][]string
	if err := json.Unmarshal(trimmed, &categories); err != nil {
		return fmt.Errorf("skills must be a string or an object of string lists: %w", err)
	}
	*s = Skills{Categories: categories}
	return nil
}

// Clone returns a deep copy so later mutations cannot reach the original
func (r *ResumeDocument) Clone() *ResumeDocument {
	if r == nil {
		return nil
	}

	clone := &ResumeDocument{
		Contact: r.Contact,
		Summary: r.Summary,
		Skills:  Skills{Flat: r.Skills.Flat},
	}

	if r.Experience != nil {
		clone.Experience = make([]Experience, len(r.Experience))
		for i, exp := range r.Experience {
			clone.Experience[i] = exp
			clone.Experience[i].Achievements = cloneStrings(exp.Achievements)
		}
	}

	if r.Skills.Categories != nil {
		clone.Skills.Categories = make(map[string][]string, len(r.Skills.Categories))
		for category, items := range r.Skills.Categories {
			clone.Skills.Categories[category] = cloneStrings(items)
		}
	}

	if r.Education != nil {
		clone.Education = make([]Education, len(r.Education))
		copy(clone.Education, r.Education)
	}

	if r.Projects != nil {
		clone.Projects = make([]Project, len(r.Projects))
		for i, project := range r.Projects {
			clone.Projects[i] = project
			clone.Projects[i].Technologies = cloneStrings(project.Technologies)
		}
	}

	return clone
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// PlainText renders the resume as plain text for keyword matching and embedding.
// The output is deterministic for a given document.
func (r *ResumeDocument) PlainText() string {
	if r == nil {
		return ""
	}

	var sb strings.Builder
	writeLine := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}

	writeLine(r.Contact.Name)
	writeLine(r.Summary)

	for _, exp := range r.Experience {
		writeLine(strings.TrimSpace(exp.Title + " " + exp.Company + " " + exp.Duration))
		for _, achievement := range exp.Achievements {
			writeLine(achievement)
		}
	}

	if len(r.Skills.Categories) > 0 {
		for _, category := range r.Skills.categoryNames() {
			writeLine(category + ": " + strings.Join(r.Skills.Categories[category], ", "))
		}
	} else {
		writeLine(r.Skills.Flat)
	}

	for _, edu := range r.Education {
		writeLine(strings.TrimSpace(edu.Degree + " " + edu.Institution + " " + edu.Year))
		writeLine(edu.Details)
	}

	for _, project := range r.Projects {
		writeLine(project.Name)
		writeLine(project.Description)
		writeLine(strings.Join(project.Technologies, ", "))
	}

	return strings.TrimSpace(sb.String())
}

// markupPattern matches HTML tags and markdown emphasis that must not appear in plain-text fields
var markupPattern = regexp.MustCompile(`<[a-zA-Z/][^>]*>|\*\*|__|` + "```")

var (
	resumeValidator     *validator.Validate
	resumeValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	resumeValidatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("plaintext", func(fl validator.FieldLevel) bool {
			return !markupPattern.MatchString(fl.Field().String())
		})
		resumeValidator = v
	})
	return resumeValidator
}

// Validate checks that the document is structurally complete and free of markup.
func (r *ResumeDocument) Validate() error {
	if r == nil {
		return fmt.Errorf("resume document is nil")
	}
	return getValidator().Struct(r)
}
