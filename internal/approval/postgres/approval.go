package postgres

import (
	"errors"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/approval"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"gorm.io/gorm"
)

// ApprovalRepository implements approval.Repository using GORM. Decisions are
// written with guarded conditional updates: the WHERE clause re-checks the
// stage preconditions so only one of two racing writers can match the row.
type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) approval.Repository {
	return &ApprovalRepository{db: db}
}

func (r *ApprovalRepository) GetHeader(id int64) (*timesheet.Header, error) {
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

func (r *ApprovalRepository) GetLineProjectIDs(headerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&timesheetDatamodel.Line{}).
		Where("header_id = ?", headerID).
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ApprovalRepository) ApplyPMDecision(headerID, pmID int64, decision string, comment *string, newStatus string, entry *timesheet.History) (bool, error) {
	return r.apply(entry, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&timesheetDatamodel.Header{}).
			Where("id = ? AND status = ? AND pm_decision IS NULL", headerID, timesheet.StatusSubmitted).
			Updates(map[string]interface{}{
				"status":      newStatus,
				"pm_id":       pmID,
				"pm_decision": decision,
				"pm_comment":  comment,
				"updated_at":  time.Now(),
			})
	})
}

func (r *ApprovalRepository) ApplyFMDecision(headerID, fmID int64, decision string, comment *string, newStatus string, entry *timesheet.History) (bool, error) {
	return r.apply(entry, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&timesheetDatamodel.Header{}).
			Where("id = ? AND status = ? AND fm_decision IS NULL", headerID, timesheet.StatusPMApproved).
			Updates(map[string]interface{}{
				"status":      newStatus,
				"fm_id":       fmID,
				"fm_decision": decision,
				"fm_comment":  comment,
				"updated_at":  time.Now(),
			})
	})
}

func (r *ApprovalRepository) ApplyAdminOverride(headerID, adminID int64, decision string, comment *string, newStatus string, entry *timesheet.History) (bool, error) {
	return r.apply(entry, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&timesheetDatamodel.Header{}).
			Where("id = ? AND status NOT IN ?", headerID,
				[]string{timesheet.StatusApproved, timesheet.StatusRejected}).
			Updates(map[string]interface{}{
				"status":      newStatus,
				"pm_id":       adminID,
				"pm_decision": decision,
				"pm_comment":  comment,
				"fm_id":       adminID,
				"fm_decision": decision,
				"fm_comment":  comment,
				"updated_at":  time.Now(),
			})
	})
}

// apply runs the guarded update and the history append in one transaction.
// When the guard matches no row the transaction is rolled back and (false,
// nil) is returned; the caller decides what that means.
func (r *ApprovalRepository) apply(entry *timesheet.History, update func(tx *gorm.DB) *gorm.DB) (bool, error) {
	applied := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := update(tx)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		historyRow := &timesheetDatamodel.History{
			HeaderID: entry.HeaderID,
			ActorID:  entry.ActorID,
			Action:   entry.Action,
			Comment:  entry.Comment,
			At:       entry.At,
		}
		return tx.Create(historyRow).Error
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
