package timesheet

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/access"
	"github.com/frahmantamala/timesheet-management/internal/auth"
)

// Repository is the data access contract for timesheets. SaveWithLines must
// persist the header, replace its lines wholesale and append the history
// entry in one transaction, so a concurrent reader never sees a header with
// no lines.
type Repository interface {
	GetHeaderByID(id int64) (*Header, error)
	GetHeaderForWeek(employeeID int64, weekStart time.Time) (*Header, error)
	SaveWithLines(header *Header, lines []*Line, entry *History) error
	GetLines(headerID int64) ([]*Line, error)
	GetDetailLines(headerID int64) ([]*DetailLine, error)
	GetHistory(headerID int64) ([]*History, error)
	ListByEmployee(employeeID int64, status string) ([]*Header, error)
	ListAll(status string) ([]*Header, error)
	ListForProjects(projectIDs []int64, status string) ([]*Header, error)
	ListForFM(fmID int64, employeeIDs []int64, status string) ([]*Header, error)
}

// ProjectReader exposes the project lookups the aggregate needs.
type ProjectReader interface {
	ActiveProjectIDs(ids []int64) (map[int64]bool, error)
	ManagedProjectIDs(pmID int64) ([]int64, error)
}

// UserReader exposes the employee-hierarchy lookups the aggregate needs.
type UserReader interface {
	FunctionalManagerID(employeeID int64) (*int64, error)
	DirectReportIDs(fmID int64) ([]int64, error)
}

type Service struct {
	repo     Repository
	projects ProjectReader
	users    UserReader
	policy   *access.Policy
	logger   *slog.Logger
}

func NewService(repo Repository, projects ProjectReader, users UserReader, policy *access.Policy, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		users:    users,
		policy:   policy,
		logger:   logger,
	}
}

// NextStep derives the informational workflow position from header state. It
// is computed on read and never stored.
func NextStep(h *Header) string {
	switch {
	case h.Status == StatusApproved:
		return StepCompleted
	case h.Status == StatusRejected:
		return StepRejected
	case h.Status == StatusPMApproved:
		return StepWaitingForFM
	case h.Status == StatusSubmitted && h.PMDecision == nil:
		return StepWaitingForPM
	default:
		return StepInProgress
	}
}

// SaveDraft creates or overwrites the actor's timesheet for the requested
// week, leaving it editable.
func (s *Service) SaveDraft(actor auth.Actor, dto SaveTimesheetDTO) (*Header, error) {
	return s.save(actor, dto, false)
}

// Submit persists the week like SaveDraft but additionally requires every
// day value to be present and advances the header to Submitted.
func (s *Service) Submit(actor auth.Actor, dto SaveTimesheetDTO) (*Header, error) {
	return s.save(actor, dto, true)
}

func (s *Service) save(actor auth.Actor, dto SaveTimesheetDTO, submit bool) (*Header, error) {
	if err := ValidateWeek(dto.WeekStart, time.Now()); err != nil {
		s.logger.Warn("week rejected", "employee_id", actor.ID, "week_start", dto.WeekStart)
		return nil, err
	}
	if err := ValidateLines(dto.Lines, submit); err != nil {
		s.logger.Warn("hour validation failed", "employee_id", actor.ID, "error", err)
		return nil, err
	}
	if err := s.checkProjects(dto.Lines); err != nil {
		return nil, err
	}

	weekStart := WeekStartOf(dto.WeekStart)

	header, err := s.findExisting(actor, dto, weekStart)
	if err != nil {
		return nil, err
	}

	action := HistorySaved
	if header == nil {
		header = &Header{
			EmployeeID: actor.ID,
			WeekStart:  weekStart,
			WeekEnd:    WeekEndOf(weekStart),
			Status:     StatusPending,
		}
		action = HistoryCreated
	}

	lines := make([]*Line, len(dto.Lines))
	total := 0.0
	for i, l := range dto.Lines {
		lines[i] = l.toLine()
		total += lines[i].LineTotal
	}
	header.TotalHours = total

	if submit {
		now := time.Now()
		header.Status = StatusSubmitted
		header.SubmittedOn = &now
		action = HistorySubmitted

		// Route to the employee's functional manager so the FM stage has an
		// assignee once the PM has approved.
		if header.FMID == nil {
			fmID, err := s.users.FunctionalManagerID(actor.ID)
			if err != nil {
				return nil, err
			}
			header.FMID = fmID
		}
	}

	entry := &History{
		ActorID: actor.ID,
		Action:  action,
		At:      time.Now(),
	}

	if err := s.repo.SaveWithLines(header, lines, entry); err != nil {
		s.logger.Error("failed to save timesheet", "error", err, "employee_id", actor.ID)
		return nil, err
	}

	s.logger.Info("timesheet saved",
		"timesheet_id", header.ID,
		"employee_id", actor.ID,
		"week_start", header.WeekStart,
		"status", header.Status,
		"total_hours", header.TotalHours)

	return header, nil
}

// findExisting locates the header targeted by the request, enforcing
// ownership and editability. Returns nil when this is a first save.
func (s *Service) findExisting(actor auth.Actor, dto SaveTimesheetDTO, weekStart time.Time) (*Header, error) {
	var header *Header
	var err error

	if dto.HeaderID != nil {
		header, err = s.repo.GetHeaderByID(*dto.HeaderID)
		if err != nil {
			return nil, err
		}
	} else {
		header, err = s.repo.GetHeaderForWeek(actor.ID, weekStart)
		if err != nil {
			if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeNotFound {
				return nil, nil
			}
			return nil, err
		}
	}

	if header.EmployeeID != actor.ID {
		s.logger.Warn("save denied: not owner", "timesheet_id", header.ID, "actor_id", actor.ID)
		return nil, internal.ErrNotOwner
	}
	if !header.Editable() {
		return nil, internal.ErrNotEditable
	}
	return header, nil
}

func (s *Service) checkProjects(lines []LineDTO) error {
	ids := make([]int64, len(lines))
	for i, l := range lines {
		ids[i] = l.ProjectID
	}

	active, err := s.projects.ActiveProjectIDs(ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !active[id] {
			return internal.ErrProjectNotFound.WithDetails(fmt.Sprintf("project %d does not exist or is inactive", id))
		}
	}
	return nil
}

// GetDetail returns the header with its lines and history, gated by the
// access policy.
func (s *Service) GetDetail(headerID int64, actor auth.Actor) (*Detail, error) {
	header, err := s.repo.GetHeaderByID(headerID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetDetailLines(headerID)
	if err != nil {
		return nil, err
	}

	projectIDs := make([]int64, len(lines))
	for i, l := range lines {
		projectIDs[i] = l.ProjectID
	}

	if err := s.policy.CanView(actor, header.EmployeeID, header.FMID, projectIDs); err != nil {
		return nil, err
	}

	history, err := s.repo.GetHistory(headerID)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Header:  header,
		Lines:   lines,
		History: history,
	}, nil
}

// ListForActor returns the timesheets visible to the actor, scoped by role:
// employees see their own, PMs see weeks containing lines on projects they
// manage, FMs see their reports, admins see everything.
func (s *Service) ListForActor(actor auth.Actor, statusFilter string) ([]*ListItem, error) {
	var headers []*Header
	var err error

	switch actor.Role {
	case auth.RoleAdmin:
		headers, err = s.repo.ListAll(statusFilter)
	case auth.RolePM:
		var projectIDs []int64
		projectIDs, err = s.projects.ManagedProjectIDs(actor.ID)
		if err == nil {
			headers, err = s.repo.ListForProjects(projectIDs, statusFilter)
		}
	case auth.RoleFM:
		var reportIDs []int64
		reportIDs, err = s.users.DirectReportIDs(actor.ID)
		if err == nil {
			headers, err = s.repo.ListForFM(actor.ID, reportIDs, statusFilter)
		}
	default:
		headers, err = s.repo.ListByEmployee(actor.ID, statusFilter)
	}
	if err != nil {
		s.logger.Error("failed to list timesheets", "error", err, "actor_id", actor.ID, "role", actor.Role)
		return nil, err
	}

	items := make([]*ListItem, len(headers))
	for i, h := range headers {
		items[i] = &ListItem{Header: h, NextStep: NextStep(h)}
	}
	return items, nil
}
