package approval

import (
	"fmt"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

var (
	ErrNotAwaitingPM = internal.NewInvalidStateError("only submitted timesheets can be approved or rejected by PM", internal.ErrCodeNotDecidable)
	ErrNotAwaitingFM = internal.NewInvalidStateError("only PM-approved timesheets can be approved or rejected by FM", internal.ErrCodeNotDecidable)
	ErrTerminal      = internal.NewInvalidStateError("timesheet already has a final decision", internal.ErrCodeAlreadyDecided)
	ErrSelfApproval  = internal.NewAccessDeniedError("approvers cannot decide their own timesheet", internal.ErrCodeAccessDenied)
)

// CanPMDecide checks the PM stage preconditions: the header must be in
// Submitted and carry no PM decision yet. Each stage records exactly one
// decision.
func CanPMDecide(h *timesheet.Header) error {
	if h.PMDecision != nil {
		return internal.ErrAlreadyDecided
	}
	if h.Status != timesheet.StatusSubmitted {
		return ErrNotAwaitingPM
	}
	return nil
}

// CanFMDecide checks the FM stage preconditions. The FM stage only opens
// after the PM has approved.
func CanFMDecide(h *timesheet.Header) error {
	if h.FMDecision != nil {
		return internal.ErrAlreadyDecided
	}
	if h.Status == timesheet.StatusSubmitted {
		return internal.ErrPMDecisionRequired
	}
	if h.Status != timesheet.StatusPMApproved {
		return ErrNotAwaitingFM
	}
	return nil
}

// CanOverride checks that an admin override still has something to decide.
// Terminal headers stay terminal.
func CanOverride(h *timesheet.Header) error {
	if h.Terminal() {
		return ErrTerminal
	}
	if h.Status == timesheet.StatusPending {
		return internal.ErrNotDecidable.WithDetails("timesheet has not been submitted")
	}
	return nil
}

// statusAfterPM maps a PM decision to the resulting header status.
func statusAfterPM(decision string) string {
	if decision == timesheet.DecisionApproved {
		return timesheet.StatusPMApproved
	}
	return timesheet.StatusRejected
}

// statusAfterFM maps an FM decision to the resulting header status.
func statusAfterFM(decision string) string {
	if decision == timesheet.DecisionApproved {
		return timesheet.StatusApproved
	}
	return timesheet.StatusRejected
}

// History tags for approval-side mutations. The decision value is embedded so
// the ledger reads without joining back to the header.
func pmHistoryTag(decision string) string {
	return fmt.Sprintf("PM_APPROVAL_%s", decision)
}

func fmHistoryTag(decision string) string {
	return fmt.Sprintf("FM_APPROVAL_%s", decision)
}

func overrideHistoryTag(decision string) string {
	return fmt.Sprintf("ADMIN_OVERRIDE_%s", decision)
}
