package timesheet

import (
	"time"

	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
)

// Header statuses. Pending is the only editable state; Approved and Rejected
// are terminal.
const (
	StatusPending    = "Pending"
	StatusSubmitted  = "Submitted"
	StatusPMApproved = "PM_Approved"
	StatusApproved   = "Approved"
	StatusRejected   = "Rejected"
)

const (
	DecisionApproved = "Approved"
	DecisionRejected = "Rejected"
)

// History action tags for employee-side mutations. Approval steps record
// their own tags (PM_APPROVAL_*, FM_APPROVAL_*, ADMIN_OVERRIDE_*).
const (
	HistoryCreated   = "Created"
	HistorySaved     = "Saved"
	HistorySubmitted = "Submitted"
)

type Header struct {
	ID          int64      `json:"id"`
	EmployeeID  int64      `json:"employee_id"`
	WeekStart   time.Time  `json:"week_start"`
	WeekEnd     time.Time  `json:"week_end"`
	Status      string     `json:"status"`
	SubmittedOn *time.Time `json:"submitted_on,omitempty"`
	TotalHours  float64    `json:"total_hours"`
	PMID        *int64     `json:"pm_id,omitempty"`
	FMID        *int64     `json:"fm_id,omitempty"`
	PMDecision  *string    `json:"pm_decision,omitempty"`
	PMComment   *string    `json:"pm_comment,omitempty"`
	FMDecision  *string    `json:"fm_decision,omitempty"`
	FMComment   *string    `json:"fm_comment,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Editable reports whether the employee may still change the week's lines.
func (h *Header) Editable() bool {
	return h.Status == StatusPending
}

func (h *Header) Terminal() bool {
	return h.Status == StatusApproved || h.Status == StatusRejected
}

type Line struct {
	ID        int64   `json:"id"`
	HeaderID  int64   `json:"header_id"`
	ProjectID int64   `json:"project_id"`
	Mon       float64 `json:"mon"`
	Tue       float64 `json:"tue"`
	Wed       float64 `json:"wed"`
	Thu       float64 `json:"thu"`
	Fri       float64 `json:"fri"`
	Sat       float64 `json:"sat"`
	Sun       float64 `json:"sun"`
	LineTotal float64 `json:"line_total"`
	Comment   *string `json:"comment,omitempty"`
}

// RecomputeTotal derives the line total from the seven day values. It is the
// only way LineTotal changes.
func (l *Line) RecomputeTotal() {
	l.LineTotal = l.Mon + l.Tue + l.Wed + l.Thu + l.Fri + l.Sat + l.Sun
}

type History struct {
	ID       int64     `json:"id"`
	HeaderID int64     `json:"header_id"`
	ActorID  int64     `json:"actor_id"`
	Action   string    `json:"action"`
	Comment  *string   `json:"comment,omitempty"`
	At       time.Time `json:"at"`
}

// WeekStartOf normalizes any instant to the Monday of its week at start of
// day, in the instant's location.
func WeekStartOf(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -daysSinceMonday)
}

// WeekEndOf returns the Sunday of the week containing weekStart.
func WeekEndOf(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 6)
}

// AllowedWeekStart restricts new timesheets to the current or the immediately
// preceding week.
func AllowedWeekStart(requested, now time.Time) bool {
	ws := WeekStartOf(requested)
	current := WeekStartOf(now)
	previous := current.AddDate(0, 0, -7)
	return ws.Equal(current) || ws.Equal(previous)
}

func ToDataModel(h *Header) *timesheetDatamodel.Header {
	return &timesheetDatamodel.Header{
		ID:          h.ID,
		EmployeeID:  h.EmployeeID,
		WeekStart:   h.WeekStart,
		WeekEnd:     h.WeekEnd,
		Status:      h.Status,
		SubmittedOn: h.SubmittedOn,
		TotalHours:  h.TotalHours,
		PMID:        h.PMID,
		FMID:        h.FMID,
		PMDecision:  h.PMDecision,
		PMComment:   h.PMComment,
		FMDecision:  h.FMDecision,
		FMComment:   h.FMComment,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

func FromDataModel(h *timesheetDatamodel.Header) *Header {
	return &Header{
		ID:          h.ID,
		EmployeeID:  h.EmployeeID,
		WeekStart:   h.WeekStart,
		WeekEnd:     h.WeekEnd,
		Status:      h.Status,
		SubmittedOn: h.SubmittedOn,
		TotalHours:  h.TotalHours,
		PMID:        h.PMID,
		FMID:        h.FMID,
		PMDecision:  h.PMDecision,
		PMComment:   h.PMComment,
		FMDecision:  h.FMDecision,
		FMComment:   h.FMComment,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

func LineToDataModel(l *Line) *timesheetDatamodel.Line {
	return &timesheetDatamodel.Line{
		ID:        l.ID,
		HeaderID:  l.HeaderID,
		ProjectID: l.ProjectID,
		Mon:       l.Mon,
		Tue:       l.Tue,
		Wed:       l.Wed,
		Thu:       l.Thu,
		Fri:       l.Fri,
		Sat:       l.Sat,
		Sun:       l.Sun,
		LineTotal: l.LineTotal,
		Comment:   l.Comment,
	}
}

func LineFromDataModel(l *timesheetDatamodel.Line) *Line {
	return &Line{
		ID:        l.ID,
		HeaderID:  l.HeaderID,
		ProjectID: l.ProjectID,
		Mon:       l.Mon,
		Tue:       l.Tue,
		Wed:       l.Wed,
		Thu:       l.Thu,
		Fri:       l.Fri,
		Sat:       l.Sat,
		Sun:       l.Sun,
		LineTotal: l.LineTotal,
		Comment:   l.Comment,
	}
}

func HistoryFromDataModel(h *timesheetDatamodel.History) *History {
	return &History{
		ID:       h.ID,
		HeaderID: h.HeaderID,
		ActorID:  h.ActorID,
		Action:   h.Action,
		Comment:  h.Comment,
		At:       h.At,
	}
}
