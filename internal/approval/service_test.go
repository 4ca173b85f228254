package approval_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/access"
	"github.com/frahmantamala/timesheet-management/internal/approval"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

func TestApproval(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Approval Module Suite")
}

// In-memory approval repository applying the same guards the SQL layer does.
type mockApprovalRepository struct {
	headers        map[int64]*timesheet.Header
	lineProjects   map[int64][]int64
	history        map[int64][]*timesheet.History
	failPMGuard    bool
	failFMGuard    bool
	failOverrideGd bool
}

func newMockApprovalRepository() *mockApprovalRepository {
	return &mockApprovalRepository{
		headers:      make(map[int64]*timesheet.Header),
		lineProjects: make(map[int64][]int64),
		history:      make(map[int64][]*timesheet.History),
	}
}

func (m *mockApprovalRepository) GetHeader(id int64) (*timesheet.Header, error) {
	h, ok := m.headers[id]
	if !ok {
		return nil, internal.ErrTimesheetNotFound
	}
	clone := *h
	return &clone, nil
}

func (m *mockApprovalRepository) GetLineProjectIDs(headerID int64) ([]int64, error) {
	return m.lineProjects[headerID], nil
}

func (m *mockApprovalRepository) ApplyPMDecision(headerID, pmID int64, decision string, comment *string, newStatus string, entry *timesheet.History) (bool, error) {
	h, ok := m.headers[headerID]
	if !ok || m.failPMGuard || h.Status != timesheet.StatusSubmitted || h.PMDecision != nil {
		return false, nil
	}
	h.Status = newStatus
	h.PMID = &pmID
	h.PMDecision = &decision
	h.PMComment = comment
	m.history[headerID] = append(m.history[headerID], entry)
	return true, nil
}

func (m *mockApprovalRepository) ApplyFMDecision(headerID, fmID int64, decision string, comment *string, newStatus string, entry *timesheet.History) (bool, error) {
	h, ok := m.headers[headerID]
	if !ok || m.failFMGuard || h.Status != timesheet.StatusPMApproved || h.FMDecision != nil {
		return false, nil
	}
	h.Status = newStatus
	h.FMID = &fmID
	h.FMDecision = &decision
	h.FMComment = comment
	m.history[headerID] = append(m.history[headerID], entry)
	return true, nil
}

func (m *mockApprovalRepository) ApplyAdminOverride(headerID, adminID int64, decision string, comment *string, newStatus string, entry *timesheet.History) (bool, error) {
	h, ok := m.headers[headerID]
	if !ok || m.failOverrideGd || h.Status == timesheet.StatusApproved || h.Status == timesheet.StatusRejected {
		return false, nil
	}
	h.Status = newStatus
	h.PMID = &adminID
	h.PMDecision = &decision
	h.PMComment = comment
	h.FMID = &adminID
	h.FMDecision = &decision
	h.FMComment = comment
	m.history[headerID] = append(m.history[headerID], entry)
	return true, nil
}

type mockProjectLookup struct {
	managed map[int64][]int64
}

func (m *mockProjectLookup) ManagedProjectIDs(pmID int64) ([]int64, error) {
	return m.managed[pmID], nil
}

type mockUserLookup struct {
	functionalManagers map[int64]*int64
}

func (m *mockUserLookup) FunctionalManagerID(employeeID int64) (*int64, error) {
	return m.functionalManagers[employeeID], nil
}

var _ = Describe("ApprovalService", func() {
	const (
		johnID  = int64(1)
		janeID  = int64(2)
		mikeID  = int64(3)
		sarahID = int64(4)
		tsID    = int64(10)
	)

	var (
		service *approval.Service
		repo    *mockApprovalRepository
		jane    auth.Actor
		mike    auth.Actor
		sarah   auth.Actor
	)

	newService := func(allowSelfApproval bool) *approval.Service {
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mikePtr := mikeID
		policy := access.NewPolicy(
			&mockProjectLookup{managed: map[int64][]int64{janeID: {1, 2}}},
			&mockUserLookup{functionalManagers: map[int64]*int64{johnID: &mikePtr}},
			lg,
		)
		return approval.NewService(repo, policy, allowSelfApproval, lg)
	}

	submittedHeader := func() *timesheet.Header {
		now := time.Now()
		mikePtr := mikeID
		return &timesheet.Header{
			ID:          tsID,
			EmployeeID:  johnID,
			WeekStart:   timesheet.WeekStartOf(now),
			Status:      timesheet.StatusSubmitted,
			SubmittedOn: &now,
			FMID:        &mikePtr,
			TotalHours:  10,
		}
	}

	approve := func() approval.DecisionDTO {
		return approval.DecisionDTO{Decision: timesheet.DecisionApproved}
	}

	reject := func() approval.DecisionDTO {
		comment := "rework needed"
		return approval.DecisionDTO{Decision: timesheet.DecisionRejected, Comment: &comment}
	}

	BeforeEach(func() {
		repo = newMockApprovalRepository()
		repo.headers[tsID] = submittedHeader()
		repo.lineProjects[tsID] = []int64{1, 2}

		service = newService(false)
		jane = auth.Actor{ID: janeID, Role: auth.RolePM}
		mike = auth.Actor{ID: mikeID, Role: auth.RoleFM}
		sarah = auth.Actor{ID: sarahID, Role: auth.RoleAdmin}
	})

	Describe("PM stage", func() {
		It("moves a submitted timesheet to PM_Approved", func() {
			result, err := service.Decide(tsID, jane, approve())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(timesheet.StatusPMApproved))
			Expect(result.NextStep).To(Equal(timesheet.StepWaitingForFM))

			h := repo.headers[tsID]
			Expect(*h.PMID).To(Equal(janeID))
			Expect(*h.PMDecision).To(Equal(timesheet.DecisionApproved))

			Expect(repo.history[tsID]).To(HaveLen(1))
			Expect(repo.history[tsID][0].Action).To(Equal("PM_APPROVAL_Approved"))
		})

		It("terminates the workflow on rejection", func() {
			result, err := service.Decide(tsID, jane, reject())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(timesheet.StatusRejected))
			Expect(result.NextStep).To(Equal(timesheet.StepRejected))
			Expect(repo.history[tsID][0].Action).To(Equal("PM_APPROVAL_Rejected"))
		})

		It("rejects an invalid decision value", func() {
			_, err := service.Decide(tsID, jane, approval.DecisionDTO{Decision: "Maybe"})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("denies a PM with no managed project on the timesheet", func() {
			outsider := auth.Actor{ID: 88, Role: auth.RolePM}
			_, err := service.Decide(tsID, outsider, approve())
			Expect(err).To(MatchError(internal.ErrAccessDenied))
		})

		It("records only one PM decision", func() {
			_, err := service.Decide(tsID, jane, approve())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Decide(tsID, jane, approve())
			Expect(err).To(MatchError(internal.ErrAlreadyDecided))
			Expect(repo.history[tsID]).To(HaveLen(1))
		})

		It("surfaces a lost race as already decided", func() {
			repo.failPMGuard = true
			_, err := service.Decide(tsID, jane, approve())
			Expect(err).To(MatchError(internal.ErrAlreadyDecided))
		})
	})

	Describe("FM stage", func() {
		It("blocks the FM before the PM has decided", func() {
			_, err := service.Decide(tsID, mike, approve())
			Expect(err).To(MatchError(internal.ErrPMDecisionRequired))
		})

		It("completes the workflow after both approvals", func() {
			_, err := service.Decide(tsID, jane, approve())
			Expect(err).NotTo(HaveOccurred())

			result, err := service.Decide(tsID, mike, approve())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(timesheet.StatusApproved))
			Expect(result.NextStep).To(Equal(timesheet.StepCompleted))
			Expect(repo.history[tsID][1].Action).To(Equal("FM_APPROVAL_Approved"))
		})

		It("terminates the workflow on FM rejection", func() {
			_, err := service.Decide(tsID, jane, approve())
			Expect(err).NotTo(HaveOccurred())

			result, err := service.Decide(tsID, mike, reject())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(timesheet.StatusRejected))
		})

		It("rejects an FM decision after a PM rejection", func() {
			_, err := service.Decide(tsID, jane, reject())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Decide(tsID, mike, approve())
			Expect(err).To(MatchError(approval.ErrNotAwaitingFM))
		})

		It("denies an FM who is not the employee's functional manager", func() {
			_, err := service.Decide(tsID, jane, approve())
			Expect(err).NotTo(HaveOccurred())

			outsider := auth.Actor{ID: 99, Role: auth.RoleFM}
			_, err = service.Decide(tsID, outsider, approve())
			Expect(err).To(MatchError(internal.ErrAccessDenied))
		})

		It("records only one FM decision", func() {
			_, err := service.Decide(tsID, jane, approve())
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Decide(tsID, mike, approve())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Decide(tsID, mike, approve())
			Expect(err).To(MatchError(internal.ErrAlreadyDecided))
		})
	})

	Describe("admin on the decision endpoint", func() {
		It("steps into the PM stage on a submitted timesheet", func() {
			result, err := service.Decide(tsID, sarah, approve())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(timesheet.StatusPMApproved))
			Expect(*repo.headers[tsID].PMID).To(Equal(sarahID))
		})

		It("steps into the FM stage after PM approval", func() {
			_, err := service.Decide(tsID, jane, approve())
			Expect(err).NotTo(HaveOccurred())

			result, err := service.Decide(tsID, sarah, approve())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(timesheet.StatusApproved))
			Expect(*repo.headers[tsID].FMID).To(Equal(sarahID))
		})
	})

	Describe("AdminOverride", func() {
		It("stamps both decisions and jumps to a terminal status", func() {
			result, err := service.AdminOverride(tsID, sarah, approve())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(timesheet.StatusApproved))
			Expect(result.NextStep).To(Equal(timesheet.StepCompleted))

			h := repo.headers[tsID]
			Expect(*h.PMID).To(Equal(sarahID))
			Expect(*h.FMID).To(Equal(sarahID))
			Expect(*h.PMDecision).To(Equal(timesheet.DecisionApproved))
			Expect(*h.FMDecision).To(Equal(timesheet.DecisionApproved))
			Expect(repo.history[tsID][0].Action).To(Equal("ADMIN_OVERRIDE_Approved"))
		})

		It("overrides a partially approved timesheet", func() {
			_, err := service.Decide(tsID, jane, approve())
			Expect(err).NotTo(HaveOccurred())

			result, err := service.AdminOverride(tsID, sarah, reject())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(timesheet.StatusRejected))
		})

		It("refuses to touch a terminal timesheet", func() {
			_, err := service.AdminOverride(tsID, sarah, approve())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.AdminOverride(tsID, sarah, reject())
			Expect(err).To(MatchError(approval.ErrTerminal))
		})

		It("refuses a pending timesheet", func() {
			repo.headers[tsID].Status = timesheet.StatusPending
			_, err := service.AdminOverride(tsID, sarah, approve())
			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotDecidable))
		})

		It("denies non-admins", func() {
			_, err := service.AdminOverride(tsID, jane, approve())
			Expect(err).To(MatchError(internal.ErrAccessDenied))
		})
	})

	Describe("self approval", func() {
		BeforeEach(func() {
			// Jane manages the projects and owns the timesheet.
			repo.headers[tsID].EmployeeID = janeID
		})

		It("is denied by default", func() {
			_, err := service.Decide(tsID, jane, approve())
			Expect(err).To(MatchError(approval.ErrSelfApproval))
		})

		It("is allowed when the policy flag is on", func() {
			service = newService(true)
			_, err := service.Decide(tsID, jane, approve())
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
