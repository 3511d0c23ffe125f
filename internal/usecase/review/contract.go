package review

import "context"

// Repository records reviewer-approved answers on reports.
type Repository interface {
	MarkValidated(ctx context.Context, reportID, answer string) error
}
