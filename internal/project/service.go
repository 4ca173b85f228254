package project

import (
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
)

// Repository is the data access contract for projects. It also backs the
// lookups the timesheet and access packages depend on.
type Repository interface {
	ListActive() ([]*Project, error)
	GetByCode(code string) (*Project, error)
	Create(p *Project) error
	ActiveProjectIDs(ids []int64) (map[int64]bool, error)
	ManagedProjectIDs(pmID int64) ([]int64, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListActive returns the projects employees can book hours against.
func (s *Service) ListActive() ([]*Project, error) {
	projects, err := s.repo.ListActive()
	if err != nil {
		s.logger.Error("failed to list projects", "error", err)
		return nil, err
	}
	return projects, nil
}

// Create registers a new bookable project. Codes are unique and stored
// uppercase.
func (s *Service) Create(dto CreateProjectDTO) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByCode(dto.Code); err == nil {
		return nil, internal.ErrProjectCodeExists
	} else if appErr, ok := internal.IsAppError(err); !ok || appErr.Type != internal.ErrorTypeNotFound {
		return nil, err
	}

	p := &Project{
		Name:                dto.Name,
		Code:                dto.Code,
		ProjectManagerID:    dto.ProjectManagerID,
		FunctionalManagerID: dto.FunctionalManagerID,
		Active:              true,
	}
	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create project", "error", err, "code", dto.Code)
		return nil, err
	}

	s.logger.Info("project created", "project_id", p.ID, "code", p.Code)
	return p, nil
}
