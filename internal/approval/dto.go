package approval

import (
	"fmt"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

type DecisionDTO struct {
	Decision string  `json:"decision"`
	Comment  *string `json:"comment,omitempty"`
}

func (d DecisionDTO) Validate() error {
	if d.Decision != timesheet.DecisionApproved && d.Decision != timesheet.DecisionRejected {
		return internal.NewValidationError(
			fmt.Sprintf("decision must be %q or %q", timesheet.DecisionApproved, timesheet.DecisionRejected),
			internal.ErrCodeValidationFailed,
		)
	}
	return nil
}

// DecisionResult is the response shape after a decision or override.
type DecisionResult struct {
	TimesheetID int64  `json:"timesheet_id"`
	Status      string `json:"status"`
	NextStep    string `json:"next_step"`
}
