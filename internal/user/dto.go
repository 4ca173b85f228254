package user

import (
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
)

type CreateUserDTO struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	Role                string `json:"role"`
	ManagerID           *int64 `json:"manager_id,omitempty"`
	FunctionalManagerID *int64 `json:"functional_manager_id,omitempty"`
}

// UpdateUserDTO carries partial updates; nil fields are left untouched.
type UpdateUserDTO struct {
	Name                *string `json:"name,omitempty"`
	Role                *string `json:"role,omitempty"`
	Password            *string `json:"password,omitempty"`
	ManagerID           *int64  `json:"manager_id,omitempty"`
	FunctionalManagerID *int64  `json:"functional_manager_id,omitempty"`
}

var roleNames = []string{
	string(auth.RoleEmployee),
	string(auth.RolePM),
	string(auth.RoleFM),
	string(auth.RoleAdmin),
}

func validEmail(value interface{}) *internal.AppError {
	if v, ok := value.(string); ok {
		if v == "" || !strings.Contains(v, "@") {
			return internal.NewValidationFieldError("email", "a valid email is required", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

func (d *CreateUserDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Role = strings.ToUpper(strings.TrimSpace(d.Role))

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("email", d.Email).Custom(validEmail)
	v.Field("password", d.Password).MinLength(8)
	v.Field("role", d.Role).Required().OneOf(roleNames...)

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d *UpdateUserDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		*d.Name = strings.TrimSpace(*d.Name)
		v.Field("name", *d.Name).Required().MaxLength(255)
	}
	if d.Role != nil {
		*d.Role = strings.ToUpper(strings.TrimSpace(*d.Role))
		v.Field("role", *d.Role).Required().OneOf(roleNames...)
	}
	if d.Password != nil {
		v.Field("password", *d.Password).MinLength(8)
	}

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
