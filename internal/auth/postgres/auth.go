package postgres

import (
	"errors"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetPasswordForEmail(email string) (string, int64, error) {
	var row userDatamodel.User
	err := r.db.Select("id", "password_hash").Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, auth.ErrInvalidCredentials
		}
		return "", 0, err
	}
	return row.PasswordHash, row.ID, nil
}

func (r *Repository) GetUserByID(userID int64) (*auth.User, error) {
	var row userDatamodel.User
	err := r.db.Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}

	return &auth.User{
		ID:                  row.ID,
		Name:                row.Name,
		Email:               row.Email,
		Role:                auth.Role(row.Role),
		ManagerID:           row.ManagerID,
		FunctionalManagerID: row.FunctionalManagerID,
	}, nil
}
