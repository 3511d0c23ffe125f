package solution

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReusePrefix marks a solution copied from a validated answer of a similar report.
const ReusePrefix = "(Use Validated Answer) "

// Origin records how the solution text was produced.
type Origin string

const (
	// Reused is a validated answer carried over from a matching report.
	Reused Origin = "reused"
	// Generated is a fresh answer from the text generator.
	Generated Origin = "generated"
)

// IsValid checks if the origin is one of the supported values.
func (o Origin) IsValid() bool {
	return o == Reused || o == Generated
}

// Solution is an answer attached to a question report (immutable value object).
type Solution struct {
	id          string
	reportID    string
	text        string
	aiGenerated bool
	origin      Origin
	createdAt   time.Time
}

// NewReused builds a solution from a validated answer text.
// No emptiness check: a stored validated answer is trusted as-is.
func NewReused(reportID, validatedText string) (Solution, error) {
	if reportID == "" {
		return Solution{}, errors.New("report ID is required")
	}
	return newSolution(reportID, ReusePrefix+validatedText, Reused), nil
}

// NewGenerated builds a solution from freshly generated text.
func NewGenerated(reportID, text string) (Solution, error) {
	if reportID == "" {
		return Solution{}, errors.New("report ID is required")
	}
	if text == "" {
		return Solution{}, errors.New("solution text is required")
	}
	return newSolution(reportID, text, Generated), nil
}

func newSolution(reportID, text string, origin Origin) Solution {
	return Solution{
		id:          uuid.NewString(),
		reportID:    reportID,
		text:        text,
		aiGenerated: true,
		origin:      origin,
		createdAt:   time.Now().UTC(),
	}
}

// Reconstruct creates a Solution without validation (storage hydration).
func Reconstruct(id, reportID, text string, aiGenerated bool, origin Origin, createdAt time.Time) Solution {
	return Solution{
		id:          id,
		reportID:    reportID,
		text:        text,
		aiGenerated: aiGenerated,
		origin:      origin,
		createdAt:   createdAt,
	}
}

// ID returns the solution identifier (UUID v4).
func (s *Solution) ID() string { return s.id }

// ReportID returns the report the solution answers.
func (s *Solution) ReportID() string { return s.reportID }

// Text returns the answer text.
func (s *Solution) Text() string { return s.text }

// AIGenerated reports whether the solution came from the automated path.
func (s *Solution) AIGenerated() bool { return s.aiGenerated }

// Origin returns how the text was produced.
func (s *Solution) Origin() Origin { return s.origin }

// CreatedAt returns the creation time in UTC.
func (s *Solution) CreatedAt() time.Time { return s.createdAt }
