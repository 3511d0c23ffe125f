package match

// Match is a validated report that is semantically close to a new one. Transient.
type Match struct {
	reportID     string
	score        float64
	solutionText string
}

// New creates a Match. Score is a similarity in [0, 1].
func New(reportID string, score float64, solutionText string) Match {
	return Match{reportID: reportID, score: score, solutionText: solutionText}
}

// ReportID returns the matched report identifier.
func (m *Match) ReportID() string { return m.reportID }

// Score returns the similarity of the matched report.
func (m *Match) Score() float64 { return m.score }

// SolutionText returns the validated answer stored on the matched report.
func (m *Match) SolutionText() string { return m.solutionText }
