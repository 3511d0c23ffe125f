package report

import "time"

// ProcessedEvent announces a report that finished the pipeline.
// SolutionID and SolutionOrigin are empty for knowledge reports.
type ProcessedEvent struct {
	ReportID       string
	Type           Type
	EnglishText    string
	SolutionID     string
	SolutionOrigin string
	ProcessedAt    time.Time
}
