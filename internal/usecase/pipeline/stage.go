package pipeline

import (
	"errors"
	"fmt"
)

// Stage is a state of a single pipeline run.
type Stage string

// Pipeline stages in run order.
const (
	StageReceived   Stage = "received"
	StageNormalized Stage = "normalized"
	StageEmbedded   Stage = "embedded"
	StageResolved   Stage = "resolved"
	StageGenerated  Stage = "generated"
	StagePersisted  Stage = "persisted"
	StageFailed     Stage = "failed"
)

// StageError records which transition of the run failed.
type StageError struct {
	// Stage is the stage the run was trying to reach.
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailedStage returns the stage a failed run was trying to reach, or "" when
// err does not come from a pipeline run.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// SearchPolicy decides what a question run does when the similarity lookup fails.
type SearchPolicy string

const (
	// SearchAbort fails the run with the search error.
	SearchAbort SearchPolicy = "abort"
	// SearchGenerate logs the failure and generates a fresh answer.
	SearchGenerate SearchPolicy = "generate"
)

// IsValid checks if the policy is one of the supported values.
func (p SearchPolicy) IsValid() bool {
	return p == SearchAbort || p == SearchGenerate
}
