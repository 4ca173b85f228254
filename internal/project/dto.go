package project

import (
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
)

type CreateProjectDTO struct {
	Name                string `json:"name"`
	Code                string `json:"code"`
	ProjectManagerID    int64  `json:"project_manager_id"`
	FunctionalManagerID *int64 `json:"functional_manager_id,omitempty"`
}

func (d *CreateProjectDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("code", d.Code).Required().MaxLength(32)
	v.Field("project_manager_id", d.ProjectManagerID).Required().MinInt(1, internal.ErrCodeValidationFailed)

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
