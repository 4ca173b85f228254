package approval

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/access"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// Repository is the data access contract for approvals. The Apply* methods
// run a guarded conditional update together with the history append in one
// transaction; they return false when the guard matched no row, meaning a
// concurrent actor got there first or the header left the expected state.
type Repository interface {
	GetHeader(id int64) (*timesheet.Header, error)
	GetLineProjectIDs(headerID int64) ([]int64, error)
	ApplyPMDecision(headerID, pmID int64, decision string, comment *string, newStatus string, entry *timesheet.History) (bool, error)
	ApplyFMDecision(headerID, fmID int64, decision string, comment *string, newStatus string, entry *timesheet.History) (bool, error)
	ApplyAdminOverride(headerID, adminID int64, decision string, comment *string, newStatus string, entry *timesheet.History) (bool, error)
}

type Service struct {
	repo              Repository
	policy            *access.Policy
	allowSelfApproval bool
	logger            *slog.Logger
}

func NewService(repo Repository, policy *access.Policy, allowSelfApproval bool, logger *slog.Logger) *Service {
	return &Service{
		repo:              repo,
		policy:            policy,
		allowSelfApproval: allowSelfApproval,
		logger:            logger,
	}
}

// Decide records the actor's approval or rejection on the stage their role
// owns: PMs decide the PM stage, FMs the FM stage. An admin acting here
// decides whichever stage is currently pending. The stage guard and the
// write are re-checked atomically in the repository, so two concurrent
// decisions on the same stage cannot both land.
func (s *Service) Decide(headerID int64, actor auth.Actor, dto DecisionDTO) (*DecisionResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	header, err := s.repo.GetHeader(headerID)
	if err != nil {
		return nil, err
	}

	if err := s.checkSelfApproval(actor, header); err != nil {
		return nil, err
	}

	stage := actor.Role
	if stage == auth.RoleAdmin {
		// Admin steps into the pending stage instead of overriding.
		if header.Status == timesheet.StatusPMApproved {
			stage = auth.RoleFM
		} else {
			stage = auth.RolePM
		}
	}

	switch stage {
	case auth.RolePM:
		return s.decidePM(headerID, actor, header, dto)
	case auth.RoleFM:
		return s.decideFM(headerID, actor, header, dto)
	default:
		s.logger.Warn("decision denied: not an approver", "actor_id", actor.ID, "role", actor.Role)
		return nil, internal.ErrAccessDenied
	}
}

func (s *Service) decidePM(headerID int64, actor auth.Actor, header *timesheet.Header, dto DecisionDTO) (*DecisionResult, error) {
	if err := CanPMDecide(header); err != nil {
		return nil, err
	}

	if actor.Role == auth.RolePM {
		projectIDs, err := s.repo.GetLineProjectIDs(headerID)
		if err != nil {
			return nil, err
		}
		manages, err := s.policy.ManagesAnyProject(actor.ID, projectIDs)
		if err != nil {
			return nil, err
		}
		if !manages {
			s.logger.Warn("PM decision denied: no managed project on timesheet",
				"timesheet_id", headerID, "actor_id", actor.ID)
			return nil, internal.ErrAccessDenied
		}
	}

	newStatus := statusAfterPM(dto.Decision)
	entry := &timesheet.History{
		HeaderID: headerID,
		ActorID:  actor.ID,
		Action:   pmHistoryTag(dto.Decision),
		Comment:  dto.Comment,
		At:       time.Now(),
	}

	applied, err := s.repo.ApplyPMDecision(headerID, actor.ID, dto.Decision, dto.Comment, newStatus, entry)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, internal.ErrAlreadyDecided
	}

	s.logger.Info("PM decision recorded",
		"timesheet_id", headerID,
		"actor_id", actor.ID,
		"decision", dto.Decision,
		"status", newStatus)

	return s.result(headerID)
}

func (s *Service) decideFM(headerID int64, actor auth.Actor, header *timesheet.Header, dto DecisionDTO) (*DecisionResult, error) {
	if err := CanFMDecide(header); err != nil {
		return nil, err
	}

	if actor.Role == auth.RoleFM {
		isFM, err := s.policy.IsFunctionalManagerFor(actor.ID, header.EmployeeID, header.FMID)
		if err != nil {
			return nil, err
		}
		if !isFM {
			s.logger.Warn("FM decision denied: not the employee's functional manager",
				"timesheet_id", headerID, "actor_id", actor.ID)
			return nil, internal.ErrAccessDenied
		}
	}

	newStatus := statusAfterFM(dto.Decision)
	entry := &timesheet.History{
		HeaderID: headerID,
		ActorID:  actor.ID,
		Action:   fmHistoryTag(dto.Decision),
		Comment:  dto.Comment,
		At:       time.Now(),
	}

	applied, err := s.repo.ApplyFMDecision(headerID, actor.ID, dto.Decision, dto.Comment, newStatus, entry)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, internal.ErrAlreadyDecided
	}

	s.logger.Info("FM decision recorded",
		"timesheet_id", headerID,
		"actor_id", actor.ID,
		"decision", dto.Decision,
		"status", newStatus)

	return s.result(headerID)
}

// AdminOverride resolves the whole workflow in one step: both stage
// decisions are stamped with the admin's id and the header jumps straight to
// a terminal status.
func (s *Service) AdminOverride(headerID int64, actor auth.Actor, dto DecisionDTO) (*DecisionResult, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, internal.ErrAccessDenied
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	header, err := s.repo.GetHeader(headerID)
	if err != nil {
		return nil, err
	}
	if err := CanOverride(header); err != nil {
		return nil, err
	}

	newStatus := statusAfterFM(dto.Decision)
	entry := &timesheet.History{
		HeaderID: headerID,
		ActorID:  actor.ID,
		Action:   overrideHistoryTag(dto.Decision),
		Comment:  dto.Comment,
		At:       time.Now(),
	}

	applied, err := s.repo.ApplyAdminOverride(headerID, actor.ID, dto.Decision, dto.Comment, newStatus, entry)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, internal.ErrAlreadyDecided
	}

	s.logger.Info("admin override recorded",
		"timesheet_id", headerID,
		"actor_id", actor.ID,
		"decision", dto.Decision,
		"status", newStatus)

	return s.result(headerID)
}

func (s *Service) checkSelfApproval(actor auth.Actor, header *timesheet.Header) error {
	if actor.ID == header.EmployeeID && !s.allowSelfApproval {
		s.logger.Warn("decision denied: self approval",
			"timesheet_id", header.ID, "actor_id", actor.ID)
		return ErrSelfApproval
	}
	return nil
}

func (s *Service) result(headerID int64) (*DecisionResult, error) {
	header, err := s.repo.GetHeader(headerID)
	if err != nil {
		return nil, err
	}
	return &DecisionResult{
		TimesheetID: header.ID,
		Status:      header.Status,
		NextStep:    timesheet.NextStep(header),
	}, nil
}
