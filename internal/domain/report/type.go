package report

import (
	"fmt"
	"strings"

	"github.com/gramgyan/gramgyan/internal/domain"
)

// Type classifies a farmer submission.
type Type string

// Report type constants.
const (
	// Question asks for an answer; the pipeline attaches a solution.
	Question Type = "question"
	// Knowledge shares know-how; it is only normalized and indexed.
	Knowledge Type = "knowledge"
)

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	return t == Question || t == Knowledge
}

// NeedsSolution reports whether a report of this type gets a solution attached.
func (t Type) NeedsSolution() (bool, error) {
	switch t {
	case Question:
		return true, nil
	case Knowledge:
		return false, nil
	default:
		return false, fmt.Errorf("report type %q: %w", t, domain.ErrInvalidInput)
	}
}

// ParseType converts a wire value into a Type. Matching is case-insensitive.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown report type %q: %w", s, domain.ErrInvalidInput)
	}
	return t, nil
}
