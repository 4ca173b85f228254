package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
)

// User is the admin-facing view of an account. The password hash never
// leaves the repository layer.
type User struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Role                string    `json:"role"`
	ManagerID           *int64    `json:"manager_id,omitempty"`
	FunctionalManagerID *int64    `json:"functional_manager_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		Role:                u.Role,
		ManagerID:           u.ManagerID,
		FunctionalManagerID: u.FunctionalManagerID,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}
