package timesheet

import "time"

type Header struct {
	ID          int64      `gorm:"primaryKey"`
	EmployeeID  int64      `gorm:"column:employee_id;not null;uniqueIndex:idx_employee_week"`
	WeekStart   time.Time  `gorm:"column:week_start;not null;uniqueIndex:idx_employee_week"`
	WeekEnd     time.Time  `gorm:"column:week_end;not null"`
	Status      string     `gorm:"column:status;default:Pending"`
	SubmittedOn *time.Time `gorm:"column:submitted_on"`
	TotalHours  float64    `gorm:"column:total_hours;not null;default:0"`
	PMID        *int64     `gorm:"column:pm_id"`
	FMID        *int64     `gorm:"column:fm_id"`
	PMDecision  *string    `gorm:"column:pm_decision"`
	PMComment   *string    `gorm:"column:pm_comment"`
	FMDecision  *string    `gorm:"column:fm_decision"`
	FMComment   *string    `gorm:"column:fm_comment"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Header) TableName() string {
	return "timesheet_headers"
}

type Line struct {
	ID        int64     `gorm:"primaryKey"`
	HeaderID  int64     `gorm:"column:header_id;not null;uniqueIndex:idx_header_project"`
	ProjectID int64     `gorm:"column:project_id;not null;uniqueIndex:idx_header_project"`
	Mon       float64   `gorm:"column:mon;not null;default:0"`
	Tue       float64   `gorm:"column:tue;not null;default:0"`
	Wed       float64   `gorm:"column:wed;not null;default:0"`
	Thu       float64   `gorm:"column:thu;not null;default:0"`
	Fri       float64   `gorm:"column:fri;not null;default:0"`
	Sat       float64   `gorm:"column:sat;not null;default:0"`
	Sun       float64   `gorm:"column:sun;not null;default:0"`
	LineTotal float64   `gorm:"column:line_total;not null;default:0"`
	Comment   *string   `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Line) TableName() string {
	return "timesheet_lines"
}

// History rows are append-only; nothing in the codebase updates or deletes
// them once written.
type History struct {
	ID        int64     `gorm:"primaryKey"`
	HeaderID  int64     `gorm:"column:header_id;not null;index"`
	ActorID   int64     `gorm:"column:actor_id;not null"`
	Action    string    `gorm:"column:action;not null"`
	Comment   *string   `gorm:"column:comment"`
	At        time.Time `gorm:"column:at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (History) TableName() string {
	return "timesheet_history"
}
