package postgres

import (
	"errors"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"gorm.io/gorm"
)

// TimesheetRepository implements timesheet.Repository using GORM
type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) timesheet.Repository {
	return &TimesheetRepository{db: db}
}

func (r *TimesheetRepository) GetHeaderByID(id int64) (*timesheet.Header, error) {
	var row timesheetDatamodel.Header
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTimesheetNotFound
		}
		return nil, err
	}
	return timesheet.FromDataModel(&row), nil
}

func (r *TimesheetRepository) GetHeaderForWeek(employeeID int64, weekStart time.Time) (*timesheet.Header, error) {
	var row timesheetDatamodel.Header
	err := r.db.Where("employee_id = ? AND week_start = ?", employeeID, weekStart).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTimesheetNotFound
		}
		return nil, err
	}
	return timesheet.FromDataModel(&row), nil
}

// SaveWithLines persists the header, replaces its lines and appends the
// history entry in a single transaction. Line replacement is delete-all plus
// re-insert; readers outside the transaction never observe the intermediate
// empty state.
func (r *TimesheetRepository) SaveWithLines(header *timesheet.Header, lines []*timesheet.Line, entry *timesheet.History) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		row := timesheet.ToDataModel(header)
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		header.ID = row.ID

		if err := tx.Where("header_id = ?", row.ID).Delete(&timesheetDatamodel.Line{}).Error; err != nil {
			return err
		}

		lineRows := make([]*timesheetDatamodel.Line, len(lines))
		for i, l := range lines {
			l.HeaderID = row.ID
			lineRows[i] = timesheet.LineToDataModel(l)
		}
		if err := tx.Create(&lineRows).Error; err != nil {
			return err
		}
		for i, lr := range lineRows {
			lines[i].ID = lr.ID
		}

		historyRow := &timesheetDatamodel.History{
			HeaderID: row.ID,
			ActorID:  entry.ActorID,
			Action:   entry.Action,
			Comment:  entry.Comment,
			At:       entry.At,
		}
		return tx.Create(historyRow).Error
	})
}

func (r *TimesheetRepository) GetLines(headerID int64) ([]*timesheet.Line, error) {
	var rows []*timesheetDatamodel.Line
	err := r.db.Where("header_id = ?", headerID).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]*timesheet.Line, len(rows))
	for i, row := range rows {
		lines[i] = timesheet.LineFromDataModel(row)
	}
	return lines, nil
}

// detailLineRow carries a line joined with its project labels.
type detailLineRow struct {
	timesheetDatamodel.Line
	ProjectName string
	ProjectCode string
}

func (r *TimesheetRepository) GetDetailLines(headerID int64) ([]*timesheet.DetailLine, error) {
	var rows []detailLineRow
	err := r.db.Table("timesheet_lines").
		Select("timesheet_lines.*, projects.name AS project_name, projects.code AS project_code").
		Joins("JOIN projects ON projects.id = timesheet_lines.project_id").
		Where("timesheet_lines.header_id = ?", headerID).
		Order("timesheet_lines.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]*timesheet.DetailLine, len(rows))
	for i, row := range rows {
		lines[i] = &timesheet.DetailLine{
			Line:        timesheet.LineFromDataModel(&row.Line),
			ProjectName: row.ProjectName,
			ProjectCode: row.ProjectCode,
		}
	}
	return lines, nil
}

func (r *TimesheetRepository) GetHistory(headerID int64) ([]*timesheet.History, error) {
	var rows []*timesheetDatamodel.History
	err := r.db.Where("header_id = ?", headerID).Order("at ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	history := make([]*timesheet.History, len(rows))
	for i, row := range rows {
		history[i] = timesheet.HistoryFromDataModel(row)
	}
	return history, nil
}

func (r *TimesheetRepository) ListByEmployee(employeeID int64, status string) ([]*timesheet.Header, error) {
	q := r.db.Where("employee_id = ?", employeeID)
	return r.list(q, status)
}

func (r *TimesheetRepository) ListAll(status string) ([]*timesheet.Header, error) {
	return r.list(r.db, status)
}

func (r *TimesheetRepository) ListForProjects(projectIDs []int64, status string) ([]*timesheet.Header, error) {
	if len(projectIDs) == 0 {
		return []*timesheet.Header{}, nil
	}

	sub := r.db.Model(&timesheetDatamodel.Line{}).
		Select("DISTINCT header_id").
		Where("project_id IN ?", projectIDs)
	q := r.db.Where("id IN (?)", sub)
	return r.list(q, status)
}

func (r *TimesheetRepository) ListForFM(fmID int64, employeeIDs []int64, status string) ([]*timesheet.Header, error) {
	q := r.db.Where("fm_id = ?", fmID)
	if len(employeeIDs) > 0 {
		q = r.db.Where("fm_id = ? OR employee_id IN ?", fmID, employeeIDs)
	}
	return r.list(q, status)
}

func (r *TimesheetRepository) list(q *gorm.DB, status string) ([]*timesheet.Header, error) {
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var rows []*timesheetDatamodel.Header
	err := q.Order("week_start DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	headers := make([]*timesheet.Header, len(rows))
	for i, row := range rows {
		headers[i] = timesheet.FromDataModel(row)
	}
	return headers, nil
}
