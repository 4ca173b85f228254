package timesheet

import "time"

// Save/submit request shapes. Day values are pointers: a missing key in the
// request body stays nil, which the validator treats differently from an
// explicit 0.

type LineDTO struct {
	ProjectID int64    `json:"project_id"`
	Mon       *float64 `json:"mon"`
	Tue       *float64 `json:"tue"`
	Wed       *float64 `json:"wed"`
	Thu       *float64 `json:"thu"`
	Fri       *float64 `json:"fri"`
	Sat       *float64 `json:"sat"`
	Sun       *float64 `json:"sun"`
	Comment   *string  `json:"comment,omitempty"`
}

func (l LineDTO) dayValues() [7]*float64 {
	return [7]*float64{l.Mon, l.Tue, l.Wed, l.Thu, l.Fri, l.Sat, l.Sun}
}

// Total sums the present day values; absent days count as zero.
func (l LineDTO) Total() float64 {
	total := 0.0
	for _, v := range l.dayValues() {
		if v != nil {
			total += *v
		}
	}
	return total
}

const (
	ActionSave   = "save"
	ActionSubmit = "submit"
)

type SaveTimesheetDTO struct {
	HeaderID  *int64    `json:"header_id,omitempty"`
	WeekStart time.Time `json:"week_start"`
	Action    string    `json:"action"`
	Lines     []LineDTO `json:"lines"`
}

func (d SaveTimesheetDTO) IsSubmit() bool {
	return d.Action == ActionSubmit
}

// toLine converts a validated DTO line into a domain line; nil day values
// become zero (the validator has already rejected them on the submit path).
func (l LineDTO) toLine() *Line {
	deref := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}
	line := &Line{
		ProjectID: l.ProjectID,
		Mon:       deref(l.Mon),
		Tue:       deref(l.Tue),
		Wed:       deref(l.Wed),
		Thu:       deref(l.Thu),
		Fri:       deref(l.Fri),
		Sat:       deref(l.Sat),
		Sun:       deref(l.Sun),
		Comment:   l.Comment,
	}
	line.RecomputeTotal()
	return line
}

// Detail is the full read model for a single timesheet: header, lines with
// project labels, and the audit trail.
type Detail struct {
	Header  *Header       `json:"header"`
	Lines   []*DetailLine `json:"lines"`
	History []*History    `json:"history"`
}

type DetailLine struct {
	*Line
	ProjectName string `json:"project_name"`
	ProjectCode string `json:"project_code"`
}

// NextStep labels for list/detail views, derived from header state on read.
const (
	StepCompleted    = "COMPLETED"
	StepRejected     = "REJECTED"
	StepWaitingForPM = "WAITING_FOR_PM_APPROVAL"
	StepWaitingForFM = "WAITING_FOR_FM_APPROVAL"
	StepInProgress   = "IN_PROGRESS"
)

type ListItem struct {
	*Header
	NextStep string `json:"next_step"`
}
