package project

import (
	"time"

	projectDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/project"
)

type Project struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Code                string    `json:"code"`
	ProjectManagerID    int64     `json:"project_manager_id"`
	FunctionalManagerID *int64    `json:"functional_manager_id,omitempty"`
	Active              bool      `json:"active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func FromDataModel(p *projectDatamodel.Project) *Project {
	return &Project{
		ID:                  p.ID,
		Name:                p.Name,
		Code:                p.Code,
		ProjectManagerID:    p.ProjectManagerID,
		FunctionalManagerID: p.FunctionalManagerID,
		Active:              p.Active,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func ToDataModel(p *Project) *projectDatamodel.Project {
	return &projectDatamodel.Project{
		ID:                  p.ID,
		Name:                p.Name,
		Code:                p.Code,
		ProjectManagerID:    p.ProjectManagerID,
		FunctionalManagerID: p.FunctionalManagerID,
		Active:              p.Active,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
