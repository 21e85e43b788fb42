package rewriting

import (
	"fmt"
	"strings"
)

// APICallError represents a failed call to the revision model
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents a model response that is not an acceptable resume document
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// GuardError reports a revision that changed protected facts or used forbidden phrases
type GuardError struct {
	Violations []string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("revision rejected: %s", strings.Join(e.Violations, "; "))
}
