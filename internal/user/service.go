package user

import (
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
)

// Repository is the data access contract for user administration. It also
// backs the hierarchy lookups the timesheet and access packages depend on.
type Repository interface {
	List() ([]*User, error)
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	Create(u *User, passwordHash string) error
	Update(id int64, fields map[string]interface{}) error
	Delete(id int64) error
	FunctionalManagerID(employeeID int64) (*int64, error)
	DirectReportIDs(fmID int64) ([]int64, error)
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List() ([]*User, error) {
	users, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

func (s *Service) Get(id int64) (*User, error) {
	return s.repo.GetByID(id)
}

// Create registers a new account. Emails are unique; passwords are stored as
// bcrypt hashes only.
func (s *Service) Create(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(dto.Email); err == nil {
		return nil, internal.ErrEmailExists
	} else if appErr, ok := internal.IsAppError(err); !ok || appErr.Type != internal.ErrorTypeNotFound {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	u := &User{
		Name:                dto.Name,
		Email:               dto.Email,
		Role:                dto.Role,
		ManagerID:           dto.ManagerID,
		FunctionalManagerID: dto.FunctionalManagerID,
	}
	if err := s.repo.Create(u, hash); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Update applies a partial update. A new password is re-hashed before it
// reaches the repository.
func (s *Service) Update(id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if dto.Name != nil {
		fields["name"] = *dto.Name
	}
	if dto.Role != nil {
		fields["role"] = *dto.Role
	}
	if dto.ManagerID != nil {
		fields["manager_id"] = *dto.ManagerID
	}
	if dto.FunctionalManagerID != nil {
		fields["functional_manager_id"] = *dto.FunctionalManagerID
	}
	if dto.Password != nil {
		hash, err := auth.HashPassword(*dto.Password, s.bcryptCost)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err)
			return nil, internal.NewInternalError("failed to update user", err)
		}
		fields["password_hash"] = hash
	}

	if len(fields) > 0 {
		if err := s.repo.Update(id, fields); err != nil {
			s.logger.Error("failed to update user", "error", err, "user_id", id)
			return nil, err
		}
	}

	return s.repo.GetByID(id)
}

func (s *Service) Delete(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
