package timesheet_test

import (
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/access"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// In-memory repository mock.
type mockTimesheetRepository struct {
	headers map[int64]*timesheet.Header
	lines   map[int64][]*timesheet.Line
	history map[int64][]*timesheet.History
	saveErr error
	nextID  int64
}

func newMockTimesheetRepository() *mockTimesheetRepository {
	return &mockTimesheetRepository{
		headers: make(map[int64]*timesheet.Header),
		lines:   make(map[int64][]*timesheet.Line),
		history: make(map[int64][]*timesheet.History),
		nextID:  1,
	}
}

func (m *mockTimesheetRepository) GetHeaderByID(id int64) (*timesheet.Header, error) {
	h, ok := m.headers[id]
	if !ok {
		return nil, internal.ErrTimesheetNotFound
	}
	clone := *h
	return &clone, nil
}

func (m *mockTimesheetRepository) GetHeaderForWeek(employeeID int64, weekStart time.Time) (*timesheet.Header, error) {
	for _, h := range m.headers {
		if h.EmployeeID == employeeID && h.WeekStart.Equal(weekStart) {
			clone := *h
			return &clone, nil
		}
	}
	return nil, internal.ErrTimesheetNotFound
}

func (m *mockTimesheetRepository) SaveWithLines(header *timesheet.Header, lines []*timesheet.Line, entry *timesheet.History) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if header.ID == 0 {
		header.ID = m.nextID
		m.nextID++
	}
	clone := *header
	m.headers[header.ID] = &clone
	m.lines[header.ID] = lines
	entry.HeaderID = header.ID
	m.history[header.ID] = append(m.history[header.ID], entry)
	return nil
}

func (m *mockTimesheetRepository) GetLines(headerID int64) ([]*timesheet.Line, error) {
	return m.lines[headerID], nil
}

func (m *mockTimesheetRepository) GetDetailLines(headerID int64) ([]*timesheet.DetailLine, error) {
	var out []*timesheet.DetailLine
	for _, l := range m.lines[headerID] {
		out = append(out, &timesheet.DetailLine{Line: l, ProjectName: "Project", ProjectCode: "CODE"})
	}
	return out, nil
}

func (m *mockTimesheetRepository) GetHistory(headerID int64) ([]*timesheet.History, error) {
	return m.history[headerID], nil
}

func (m *mockTimesheetRepository) ListByEmployee(employeeID int64, status string) ([]*timesheet.Header, error) {
	var out []*timesheet.Header
	for _, h := range m.headers {
		if h.EmployeeID == employeeID && (status == "" || h.Status == status) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockTimesheetRepository) ListAll(status string) ([]*timesheet.Header, error) {
	var out []*timesheet.Header
	for _, h := range m.headers {
		if status == "" || h.Status == status {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockTimesheetRepository) ListForProjects(projectIDs []int64, status string) ([]*timesheet.Header, error) {
	idSet := make(map[int64]bool)
	for _, id := range projectIDs {
		idSet[id] = true
	}
	var out []*timesheet.Header
	for hid, lines := range m.lines {
		for _, l := range lines {
			if idSet[l.ProjectID] {
				h := m.headers[hid]
				if status == "" || h.Status == status {
					out = append(out, h)
				}
				break
			}
		}
	}
	return out, nil
}

func (m *mockTimesheetRepository) ListForFM(fmID int64, employeeIDs []int64, status string) ([]*timesheet.Header, error) {
	empSet := make(map[int64]bool)
	for _, id := range employeeIDs {
		empSet[id] = true
	}
	var out []*timesheet.Header
	for _, h := range m.headers {
		assigned := h.FMID != nil && *h.FMID == fmID
		if (assigned || empSet[h.EmployeeID]) && (status == "" || h.Status == status) {
			out = append(out, h)
		}
	}
	return out, nil
}

// Project lookup mock shared by the service and the access policy.
type mockProjectReader struct {
	active  map[int64]bool
	managed map[int64][]int64
}

func (m *mockProjectReader) ActiveProjectIDs(ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	for _, id := range ids {
		if m.active[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (m *mockProjectReader) ManagedProjectIDs(pmID int64) ([]int64, error) {
	return m.managed[pmID], nil
}

// User hierarchy mock shared by the service and the access policy.
type mockUserReader struct {
	functionalManagers map[int64]*int64
}

func (m *mockUserReader) FunctionalManagerID(employeeID int64) (*int64, error) {
	return m.functionalManagers[employeeID], nil
}

func (m *mockUserReader) DirectReportIDs(fmID int64) ([]int64, error) {
	var out []int64
	for emp, fm := range m.functionalManagers {
		if fm != nil && *fm == fmID {
			out = append(out, emp)
		}
	}
	return out, nil
}

var _ = Describe("TimesheetService", func() {
	const (
		johnID = int64(1)
		janeID = int64(2)
		mikeID = int64(3)
	)

	var (
		service  *timesheet.Service
		repo     *mockTimesheetRepository
		projects *mockProjectReader
		users    *mockUserReader
		john     auth.Actor
		week     time.Time
	)

	BeforeEach(func() {
		repo = newMockTimesheetRepository()
		projects = &mockProjectReader{
			active:  map[int64]bool{1: true, 2: true},
			managed: map[int64][]int64{janeID: {1, 2}},
		}
		mike := mikeID
		users = &mockUserReader{
			functionalManagers: map[int64]*int64{johnID: &mike},
		}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		policy := access.NewPolicy(projects, users, lg)
		service = timesheet.NewService(repo, projects, users, policy, lg)

		john = auth.Actor{ID: johnID, Role: auth.RoleEmployee}
		week = timesheet.WeekStartOf(time.Now())
	})

	draftDTO := func() timesheet.SaveTimesheetDTO {
		return timesheet.SaveTimesheetDTO{
			WeekStart: time.Now(),
			Action:    timesheet.ActionSave,
			Lines: []timesheet.LineDTO{
				{ProjectID: 1, Mon: hours(4)},
			},
		}
	}

	submitDTO := func() timesheet.SaveTimesheetDTO {
		return timesheet.SaveTimesheetDTO{
			WeekStart: time.Now(),
			Action:    timesheet.ActionSubmit,
			Lines: []timesheet.LineDTO{
				fullLine(1, 2, 2, 0, 0, 0, 0, 0),
				fullLine(2, 0, 0, 2, 2, 2, 0, 0),
			},
		}
	}

	Describe("SaveDraft", func() {
		It("creates a pending header for the current week", func() {
			header, err := service.SaveDraft(john, draftDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(header.Status).To(Equal(timesheet.StatusPending))
			Expect(header.WeekStart).To(Equal(week))
			Expect(header.TotalHours).To(Equal(4.0))

			history, _ := repo.GetHistory(header.ID)
			Expect(history).To(HaveLen(1))
			Expect(history[0].Action).To(Equal(timesheet.HistoryCreated))
		})

		It("replaces the lines wholesale on re-save", func() {
			header, err := service.SaveDraft(john, draftDTO())
			Expect(err).NotTo(HaveOccurred())

			dto := draftDTO()
			dto.Lines = []timesheet.LineDTO{
				{ProjectID: 1, Mon: hours(2)},
				{ProjectID: 2, Tue: hours(3)},
			}
			updated, err := service.SaveDraft(john, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ID).To(Equal(header.ID))
			Expect(updated.TotalHours).To(Equal(5.0))

			lines, _ := repo.GetLines(header.ID)
			Expect(lines).To(HaveLen(2))

			history, _ := repo.GetHistory(header.ID)
			Expect(history).To(HaveLen(2))
			Expect(history[1].Action).To(Equal(timesheet.HistorySaved))
		})

		It("rejects a save against someone else's timesheet", func() {
			header, err := service.SaveDraft(john, draftDTO())
			Expect(err).NotTo(HaveOccurred())

			dto := draftDTO()
			dto.HeaderID = &header.ID
			intruder := auth.Actor{ID: 99, Role: auth.RoleEmployee}
			_, err = service.SaveDraft(intruder, dto)
			Expect(err).To(MatchError(internal.ErrNotOwner))
		})

		It("rejects an inactive project", func() {
			dto := draftDTO()
			dto.Lines = []timesheet.LineDTO{{ProjectID: 42, Mon: hours(1)}}
			_, err := service.SaveDraft(john, dto)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeProjectNotFound))
		})

		It("rejects a week outside the allowed window", func() {
			dto := draftDTO()
			dto.WeekStart = time.Now().AddDate(0, 0, -21)
			_, err := service.SaveDraft(john, dto)
			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeWeekNotAllowed))
		})
	})

	Describe("Submit", func() {
		It("advances the header to Submitted and stamps the FM", func() {
			header, err := service.Submit(john, submitDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(header.Status).To(Equal(timesheet.StatusSubmitted))
			Expect(header.SubmittedOn).NotTo(BeNil())
			Expect(header.TotalHours).To(Equal(10.0))
			Expect(header.FMID).NotTo(BeNil())
			Expect(*header.FMID).To(Equal(mikeID))

			history, _ := repo.GetHistory(header.ID)
			Expect(history[len(history)-1].Action).To(Equal(timesheet.HistorySubmitted))
		})

		It("rejects a submit with missing day values", func() {
			dto := submitDTO()
			dto.Lines = []timesheet.LineDTO{{ProjectID: 1, Mon: hours(4)}}
			_, err := service.Submit(john, dto)
			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeMissingDayValue))
		})

		It("rejects edits after submission", func() {
			header, err := service.Submit(john, submitDTO())
			Expect(err).NotTo(HaveOccurred())

			dto := draftDTO()
			dto.HeaderID = &header.ID
			_, err = service.SaveDraft(john, dto)
			Expect(err).To(MatchError(internal.ErrNotEditable))
		})
	})

	Describe("GetDetail", func() {
		It("returns lines and history to the owner", func() {
			header, err := service.Submit(john, submitDTO())
			Expect(err).NotTo(HaveOccurred())

			detail, err := service.GetDetail(header.ID, john)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Lines).To(HaveLen(2))
			Expect(detail.History).NotTo(BeEmpty())
		})

		It("denies an unrelated employee", func() {
			header, err := service.Submit(john, submitDTO())
			Expect(err).NotTo(HaveOccurred())

			stranger := auth.Actor{ID: 77, Role: auth.RoleEmployee}
			_, err = service.GetDetail(header.ID, stranger)
			Expect(err).To(MatchError(internal.ErrAccessDenied))
		})

		It("allows the PM of a referenced project", func() {
			header, err := service.Submit(john, submitDTO())
			Expect(err).NotTo(HaveOccurred())

			jane := auth.Actor{ID: janeID, Role: auth.RolePM}
			_, err = service.GetDetail(header.ID, jane)
			Expect(err).NotTo(HaveOccurred())
		})

		It("allows the assigned FM", func() {
			header, err := service.Submit(john, submitDTO())
			Expect(err).NotTo(HaveOccurred())

			fm := auth.Actor{ID: mikeID, Role: auth.RoleFM}
			_, err = service.GetDetail(header.ID, fm)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("ListForActor", func() {
		BeforeEach(func() {
			_, err := service.Submit(john, submitDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("shows employees their own timesheets", func() {
			items, err := service.ListForActor(john, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].NextStep).To(Equal(timesheet.StepWaitingForPM))
		})

		It("shows a PM the weeks booked on their projects", func() {
			jane := auth.Actor{ID: janeID, Role: auth.RolePM}
			items, err := service.ListForActor(jane, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
		})

		It("shows an FM their reports' timesheets", func() {
			mike := auth.Actor{ID: mikeID, Role: auth.RoleFM}
			items, err := service.ListForActor(mike, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
		})

		It("hides other employees' timesheets", func() {
			other := auth.Actor{ID: 55, Role: auth.RoleEmployee}
			items, err := service.ListForActor(other, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})

		It("filters by status", func() {
			items, err := service.ListForActor(john, timesheet.StatusApproved)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})
	})
})
