package postgres

import (
	"errors"

	"github.com/frahmantamala/timesheet-management/internal"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	"github.com/frahmantamala/timesheet-management/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements user.Repository using GORM. It also serves the
// timesheet package's UserReader and the access package's UserLookup.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List() ([]*user.User, error) {
	var rows []*userDatamodel.User
	err := r.db.Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	users := make([]*user.User, len(rows))
	for i, row := range rows {
		users[i] = user.FromDataModel(row)
	}
	return users, nil
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) Create(u *user.User, passwordHash string) error {
	row := &userDatamodel.User{
		Name:                u.Name,
		Email:               u.Email,
		PasswordHash:        passwordHash,
		Role:                u.Role,
		ManagerID:           u.ManagerID,
		FunctionalManagerID: u.FunctionalManagerID,
	}
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	u.ID = row.ID
	u.CreatedAt = row.CreatedAt
	u.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *UserRepository) Update(id int64, fields map[string]interface{}) error {
	res := r.db.Model(&userDatamodel.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(id int64) error {
	res := r.db.Where("id = ?", id).Delete(&userDatamodel.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

// FunctionalManagerID returns the functional manager reference of the given
// employee, nil when none is assigned.
func (r *UserRepository) FunctionalManagerID(employeeID int64) (*int64, error) {
	var row userDatamodel.User
	err := r.db.Select("functional_manager_id").Where("id = ?", employeeID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return row.FunctionalManagerID, nil
}

// DirectReportIDs returns the ids of employees whose functional manager is
// the given user.
func (r *UserRepository) DirectReportIDs(fmID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&userDatamodel.User{}).
		Where("functional_manager_id = ?", fmID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
