package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	projectDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/project"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

func TestTimesheetRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TimesheetRepository Suite")
}

var _ = Describe("TimesheetRepository", func() {
	var (
		db   *gorm.DB
		repo timesheet.Repository
		week time.Time
	)

	newHeader := func(employeeID int64) *timesheet.Header {
		return &timesheet.Header{
			EmployeeID: employeeID,
			WeekStart:  week,
			WeekEnd:    timesheet.WeekEndOf(week),
			Status:     timesheet.StatusPending,
		}
	}

	newLines := func(projectIDs ...int64) []*timesheet.Line {
		lines := make([]*timesheet.Line, len(projectIDs))
		for i, pid := range projectIDs {
			lines[i] = &timesheet.Line{ProjectID: pid, Mon: 2, Tue: 3}
			lines[i].RecomputeTotal()
		}
		return lines
	}

	entry := func(actorID int64, action string) *timesheet.History {
		return &timesheet.History{ActorID: actorID, Action: action, At: time.Now()}
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&projectDatamodel.Project{},
			&timesheetDatamodel.Header{},
			&timesheetDatamodel.Line{},
			&timesheetDatamodel.History{},
		)
		Expect(err).NotTo(HaveOccurred())

		seedProjects := []*projectDatamodel.Project{
			{ID: 1, Name: "Project Alpha", Code: "ALPHA", ProjectManagerID: 2, Active: true},
			{ID: 2, Name: "Project Beta", Code: "BETA", ProjectManagerID: 2, Active: true},
		}
		Expect(db.Create(&seedProjects).Error).NotTo(HaveOccurred())

		repo = NewTimesheetRepository(db)
		week = timesheet.WeekStartOf(time.Now().UTC())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	Describe("SaveWithLines", func() {
		It("persists header, lines and history together", func() {
			header := newHeader(1)
			err := repo.SaveWithLines(header, newLines(1, 2), entry(1, timesheet.HistoryCreated))
			Expect(err).NotTo(HaveOccurred())
			Expect(header.ID).NotTo(BeZero())

			lines, err := repo.GetLines(header.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(HaveLen(2))
			Expect(lines[0].LineTotal).To(Equal(5.0))

			history, err := repo.GetHistory(header.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(1))
			Expect(history[0].Action).To(Equal(timesheet.HistoryCreated))
		})

		It("replaces existing lines instead of accumulating", func() {
			header := newHeader(1)
			Expect(repo.SaveWithLines(header, newLines(1, 2), entry(1, timesheet.HistoryCreated))).To(Succeed())

			Expect(repo.SaveWithLines(header, newLines(2), entry(1, timesheet.HistorySaved))).To(Succeed())

			lines, err := repo.GetLines(header.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(HaveLen(1))
			Expect(lines[0].ProjectID).To(Equal(int64(2)))

			history, err := repo.GetHistory(header.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))
		})
	})

	Describe("GetHeaderByID", func() {
		It("maps a missing row to the domain error", func() {
			_, err := repo.GetHeaderByID(9999)
			Expect(err).To(MatchError(internal.ErrTimesheetNotFound))
		})
	})

	Describe("GetHeaderForWeek", func() {
		It("finds the header by employee and normalized week", func() {
			header := newHeader(1)
			Expect(repo.SaveWithLines(header, newLines(1), entry(1, timesheet.HistoryCreated))).To(Succeed())

			found, err := repo.GetHeaderForWeek(1, week)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(header.ID))
		})

		It("misses for another employee", func() {
			header := newHeader(1)
			Expect(repo.SaveWithLines(header, newLines(1), entry(1, timesheet.HistoryCreated))).To(Succeed())

			_, err := repo.GetHeaderForWeek(2, week)
			Expect(err).To(MatchError(internal.ErrTimesheetNotFound))
		})
	})

	Describe("GetDetailLines", func() {
		It("joins project name and code", func() {
			header := newHeader(1)
			Expect(repo.SaveWithLines(header, newLines(1), entry(1, timesheet.HistoryCreated))).To(Succeed())

			details, err := repo.GetDetailLines(header.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(details).To(HaveLen(1))
			Expect(details[0].ProjectCode).To(Equal("ALPHA"))
			Expect(details[0].ProjectName).To(Equal("Project Alpha"))
		})
	})

	Describe("listing", func() {
		BeforeEach(func() {
			h1 := newHeader(1)
			Expect(repo.SaveWithLines(h1, newLines(1), entry(1, timesheet.HistoryCreated))).To(Succeed())

			h2 := newHeader(2)
			h2.Status = timesheet.StatusSubmitted
			fm := int64(3)
			h2.FMID = &fm
			Expect(repo.SaveWithLines(h2, newLines(2), entry(2, timesheet.HistorySubmitted))).To(Succeed())
		})

		It("lists by employee", func() {
			headers, err := repo.ListByEmployee(1, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(headers).To(HaveLen(1))
			Expect(headers[0].EmployeeID).To(Equal(int64(1)))
		})

		It("lists everything for admins", func() {
			headers, err := repo.ListAll("")
			Expect(err).NotTo(HaveOccurred())
			Expect(headers).To(HaveLen(2))
		})

		It("filters by status", func() {
			headers, err := repo.ListAll(timesheet.StatusSubmitted)
			Expect(err).NotTo(HaveOccurred())
			Expect(headers).To(HaveLen(1))
			Expect(headers[0].EmployeeID).To(Equal(int64(2)))
		})

		It("lists weeks containing lines on the given projects", func() {
			headers, err := repo.ListForProjects([]int64{2}, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(headers).To(HaveLen(1))
			Expect(headers[0].EmployeeID).To(Equal(int64(2)))
		})

		It("returns nothing for a PM with no projects", func() {
			headers, err := repo.ListForProjects(nil, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(headers).To(BeEmpty())
		})

		It("lists assigned and reporting employees for an FM", func() {
			headers, err := repo.ListForFM(3, []int64{1}, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(headers).To(HaveLen(2))
		})
	})
})
