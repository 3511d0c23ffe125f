package report

// Status is the lifecycle state of a stored report.
type Status string

const (
	// Pending is the state a report is created in by the intake surface.
	Pending Status = "pending"
	// Open marks a report that has been normalized and embedded.
	Open Status = "open"
)

// IsValid checks if the status is one of the supported values.
func (s Status) IsValid() bool {
	return s == Pending || s == Open
}
