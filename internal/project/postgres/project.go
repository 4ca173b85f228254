package postgres

import (
	"errors"

	"github.com/frahmantamala/timesheet-management/internal"
	projectDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/project"
	"github.com/frahmantamala/timesheet-management/internal/project"
	"gorm.io/gorm"
)

// ProjectRepository implements project.Repository using GORM. It also serves
// the timesheet package's ProjectReader and the access package's
// ProjectLookup.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) ListActive() ([]*project.Project, error) {
	var rows []*projectDatamodel.Project
	err := r.db.Where("active = ?", true).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	projects := make([]*project.Project, len(rows))
	for i, row := range rows {
		projects[i] = project.FromDataModel(row)
	}
	return projects, nil
}

func (r *ProjectRepository) GetByCode(code string) (*project.Project, error) {
	var row projectDatamodel.Project
	err := r.db.Where("code = ?", code).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrProjectNotFound
		}
		return nil, err
	}
	return project.FromDataModel(&row), nil
}

func (r *ProjectRepository) Create(p *project.Project) error {
	row := project.ToDataModel(p)
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	p.ID = row.ID
	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt
	return nil
}

// ActiveProjectIDs reports which of the given ids belong to active projects.
func (r *ProjectRepository) ActiveProjectIDs(ids []int64) (map[int64]bool, error) {
	active := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return active, nil
	}

	var found []int64
	err := r.db.Model(&projectDatamodel.Project{}).
		Where("id IN ? AND active = ?", ids, true).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		active[id] = true
	}
	return active, nil
}

// ManagedProjectIDs returns the ids of projects managed by the given PM.
func (r *ProjectRepository) ManagedProjectIDs(pmID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&projectDatamodel.Project{}).
		Where("project_manager_id = ?", pmID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
