package leave_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"nia-hrms/internal/employee"
	"nia-hrms/internal/events"
	"nia-hrms/internal/leave"
	leaveerrors "nia-hrms/internal/leave/errors"
	"nia-hrms/internal/messaging/kafka"
	"nia-hrms/internal/shared/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeEmployeeRepository struct {
	withTxFn        func(tx *gorm.DB) employee.Repository
	createFn        func(ctx context.Context, e *employee.Employee) error
	updateFn        func(ctx context.Context, e *employee.Employee) error
	findByIDFn      func(ctx context.Context, id uint) (*employee.Employee, error)
	findByRefFn     func(ctx context.Context, ref string) (*employee.Employee, error)
	findAllFn       func(ctx context.Context) ([]employee.Employee, error)
	findActiveFn    func(ctx context.Context) ([]employee.Employee, error)
	findDirectorsFn func(ctx context.Context) ([]employee.Employee, error)
	findTeamFn      func(ctx context.Context, managerID uint, managerCode, managerName string) ([]employee.Employee, error)
	deactivateFn    func(ctx context.Context, id uint) error
}

func (f *fakeEmployeeRepository) WithTx(tx *gorm.DB) employee.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeEmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	return nil
}

func (f *fakeEmployeeRepository) Update(ctx context.Context, e *employee.Employee) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, e)
	}
	return nil
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id uint) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) FindByRef(ctx context.Context, ref string) (*employee.Employee, error) {
	if f.findByRefFn != nil {
		return f.findByRefFn(ctx, ref)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) FindAll(ctx context.Context) ([]employee.Employee, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindActive(ctx context.Context) ([]employee.Employee, error) {
	if f.findActiveFn != nil {
		return f.findActiveFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindDirectors(ctx context.Context) ([]employee.Employee, error) {
	if f.findDirectorsFn != nil {
		return f.findDirectorsFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindTeam(ctx context.Context, managerID uint, managerCode, managerName string) ([]employee.Employee, error) {
	if f.findTeamFn != nil {
		return f.findTeamFn(ctx, managerID, managerCode, managerName)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) Deactivate(ctx context.Context, id uint) error {
	if f.deactivateFn != nil {
		return f.deactivateFn(ctx, id)
	}
	return nil
}

type fakeOutboxRepository struct {
	withTxFn      func(tx *gorm.DB) kafka.OutboxRepository
	createFn      func(ctx context.Context, event kafka.OutboxEvent) error
	listPendingFn func(ctx context.Context, limit int) ([]kafka.OutboxEvent, error)
	markSentFn    func(ctx context.Context, id string) error
	markFailedFn  func(ctx context.Context, id string, reason string) error
}

func (f *fakeOutboxRepository) WithTx(tx *gorm.DB) kafka.OutboxRepository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	if f.listPendingFn != nil {
		return f.listPendingFn(ctx, limit)
	}
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	if f.markSentFn != nil {
		return f.markSentFn(ctx, id)
	}
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	if f.markFailedFn != nil {
		return f.markFailedFn(ctx, id, reason)
	}
	return nil
}

type serviceDeps struct {
	employees *fakeEmployeeRepository
	apps      *fakeApplicationRepository
	balances  *fakeBalanceRepository
	outbox    *fakeOutboxRepository
	svc       leave.Service
}

// testDB is a throwaway sqlite handle: the service only uses it for the
// transaction wrapper, every query goes through the fakes.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	assert.NoError(t, err)
	return db
}

func setupService(t *testing.T) *serviceDeps {
	t.Helper()

	deps := &serviceDeps{
		employees: &fakeEmployeeRepository{},
		apps:      &fakeApplicationRepository{},
		balances:  &fakeBalanceRepository{},
		outbox:    &fakeOutboxRepository{},
	}
	config := leave.NewConfigProvider(&fakeConfigRepository{
		findActiveByCategoryFn: func(ctx context.Context, category employee.EmploymentCategory) ([]leave.Configuration, error) {
			return defaultRules(), nil
		},
	})
	deps.svc = leave.NewServiceWithOutbox(
		testDB(t), deps.employees, deps.apps, deps.balances, config, deps.outbox, nil,
	)
	return deps
}

func knownEmployees(emps ...employee.Employee) func(ctx context.Context, ref string) (*employee.Employee, error) {
	return func(ctx context.Context, ref string) (*employee.Employee, error) {
		for i := range emps {
			if emps[i].Usercode == ref {
				return &emps[i], nil
			}
		}
		return nil, gorm.ErrRecordNotFound
	}
}

func TestServiceBalance_AsOfSelectsYearWindow(t *testing.T) {
	deps := setupService(t)
	deps.employees.findByRefFn = knownEmployees(coreEmployee())

	var gotYear int
	deps.balances.findByEmployeeYearFn = func(ctx context.Context, employeeID uint, year int) (*leave.Balance, error) {
		gotYear = year
		return nil, gorm.ErrRecordNotFound
	}
	var gotStart, gotEnd time.Time
	deps.apps.sumGroupedInWindowFn = func(ctx context.Context, employeeID uint, start, end time.Time) (map[string]decimal.Decimal, error) {
		gotStart, gotEnd = start, end
		return nil, nil
	}

	_, err := deps.svc.Balance(context.Background(), "E100",
		time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.Equal(t, 2025, gotYear)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), gotStart)
	assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), gotEnd)
}

func TestServiceApply_CreatesApplicationAndOutboxEvent(t *testing.T) {
	deps := setupService(t)
	applicant := coreEmployee()
	applicant.Email = "asha.rao@nia.example"
	deps.employees.findByRefFn = knownEmployees(applicant)

	var outboxed []kafka.OutboxEvent
	deps.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
		outboxed = append(outboxed, event)
		return nil
	}

	resp, err := deps.svc.Apply(context.Background(), leave.ApplyLeaveRequest{
		EmployeeRef: "E100",
		LeaveType:   leave.TypeCasual,
		FromDate:    "2026-03-02",
		ToDate:      "2026-03-06",
		Comment:     "family function",
	})

	assert.NoError(t, err)
	assert.Equal(t, "E100", resp.EmployeeCode)
	assert.Equal(t, leave.TypeCasual, resp.LeaveType)
	assert.Equal(t, "5", resp.Days)
	assert.Equal(t, string(leave.StatusPending), resp.Status)

	if assert.Len(t, outboxed, 1) {
		event := outboxed[0]
		assert.Equal(t, "leave_submitted", event.EventType)
		assert.Equal(t, events.LeaveNotificationTopic, event.Topic)
		assert.Equal(t, "leave_application", event.AggregateType)
		assert.Equal(t, "1", event.AggregateID)
		assert.Equal(t, kafka.OutboxStatusPending, event.Status)

		var payload events.LeaveSubmittedEvent
		assert.NoError(t, json.Unmarshal(event.Payload, &payload))
		assert.Equal(t, "E100", payload.EmployeeCode)
		assert.Equal(t, "5", payload.Days)
		// the applicant receives a confirmation copy
		assert.Contains(t, payload.Recipients, "asha.rao@nia.example")
	}
}

func TestServiceApply_PolicyRejection(t *testing.T) {
	deps := setupService(t)
	deps.employees.findByRefFn = knownEmployees(coreEmployee())

	created := false
	deps.apps.createFn = func(ctx context.Context, a *leave.Application) error {
		created = true
		return nil
	}
	outboxed := false
	deps.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
		outboxed = true
		return nil
	}

	// Twelve calendar days of casual leave blows the per-request cap.
	_, err := deps.svc.Apply(context.Background(), leave.ApplyLeaveRequest{
		EmployeeRef: "E100",
		LeaveType:   leave.TypeCasual,
		FromDate:    "2026-03-02",
		ToDate:      "2026-03-13",
	})

	var appErr *apperror.AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, apperror.CodePolicyViolation, appErr.Code)
		assert.Equal(t, 422, appErr.HTTPStatus)
		assert.Contains(t, appErr.Message, "cannot exceed")
	}
	assert.False(t, created, "rejected application must not be persisted")
	assert.False(t, outboxed, "rejected application must not emit an event")
}

func TestServiceApply_InputErrors(t *testing.T) {
	deps := setupService(t)
	deps.employees.findByRefFn = knownEmployees(coreEmployee())
	ctx := context.Background()

	t.Run("unknown employee", func(t *testing.T) {
		_, err := deps.svc.Apply(ctx, leave.ApplyLeaveRequest{
			EmployeeRef: "E999", LeaveType: leave.TypeCasual,
			FromDate: "2026-03-02", ToDate: "2026-03-03",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotFound)
	})

	t.Run("unknown leave type", func(t *testing.T) {
		_, err := deps.svc.Apply(ctx, leave.ApplyLeaveRequest{
			EmployeeRef: "E100", LeaveType: "Sabbatical",
			FromDate: "2026-03-02", ToDate: "2026-03-03",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrUnknownLeaveType)
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := deps.svc.Apply(ctx, leave.ApplyLeaveRequest{
			EmployeeRef: "E100", LeaveType: leave.TypeCasual,
			FromDate: "2026-03-06", ToDate: "2026-03-02",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("bad date format", func(t *testing.T) {
		_, err := deps.svc.Apply(ctx, leave.ApplyLeaveRequest{
			EmployeeRef: "E100", LeaveType: leave.TypeCasual,
			FromDate: "02-03-2026", ToDate: "2026-03-03",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})
}

func manager() employee.Employee {
	return employee.Employee{
		ID:       7,
		Usercode: "M001",
		Name:     "Vikram Iyer",
		Post:     "Section Manager",
	}
}

func director() employee.Employee {
	return employee.Employee{
		ID:       9,
		Usercode: "D001",
		Name:     "Meera Pillai",
		Post:     "Director (Operations)",
	}
}

func pendingApplication(status leave.Status) *leave.Application {
	emp := coreEmployee()
	emp.ReportingManager = "M001"
	return &leave.Application{
		ID:         42,
		EmployeeID: emp.ID,
		Employee:   &emp,
		LeaveType:  leave.TypeCasual,
		FromDate:   day("2026-03-02"),
		ToDate:     day("2026-03-06"),
		Days:       dec(5),
		Status:     status,
	}
}

func TestServiceTransition_ManagerForwardsToDirector(t *testing.T) {
	deps := setupService(t)
	deps.employees.findByRefFn = knownEmployees(manager())
	deps.apps.findByIDFn = func(ctx context.Context, id uint) (*leave.Application, error) {
		return pendingApplication(leave.StatusPending), nil
	}

	var saved *leave.Application
	deps.apps.updateFn = func(ctx context.Context, a *leave.Application) error {
		saved = a
		return nil
	}
	var outboxed []kafka.OutboxEvent
	deps.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
		outboxed = append(outboxed, event)
		return nil
	}

	resp, err := deps.svc.Transition(context.Background(), 42, "M001", leave.TransitionRequest{
		Action:  "approve",
		Comment: "ok from my side",
	})

	assert.NoError(t, err)
	assert.Equal(t, string(leave.StatusPendingDirector), resp.Status)
	assert.Empty(t, resp.ApprovedBy, "forwarding is not a terminal decision")

	if assert.NotNil(t, saved) {
		assert.Equal(t, leave.StatusPendingDirector, saved.Status)
		assert.Equal(t, "ok from my side", saved.AdminComment)
		assert.Nil(t, saved.ApprovedDate)
	}
	if assert.Len(t, outboxed, 1) {
		var payload events.LeaveStatusChangedEvent
		assert.NoError(t, json.Unmarshal(outboxed[0].Payload, &payload))
		assert.Equal(t, "leave_status_changed", payload.EventType)
		assert.Equal(t, string(leave.StatusPendingDirector), payload.NewStatus)
		assert.Equal(t, "Vikram Iyer", payload.ActedBy)
	}
}

func TestServiceTransition_DirectorApproves(t *testing.T) {
	deps := setupService(t)
	deps.employees.findByRefFn = knownEmployees(director())
	deps.apps.findByIDFn = func(ctx context.Context, id uint) (*leave.Application, error) {
		return pendingApplication(leave.StatusPendingDirector), nil
	}

	resp, err := deps.svc.Transition(context.Background(), 42, "D001", leave.TransitionRequest{Action: "approve"})

	assert.NoError(t, err)
	assert.Equal(t, string(leave.StatusApproved), resp.Status)
	assert.Equal(t, "Meera Pillai", resp.ApprovedBy)
	assert.NotEmpty(t, resp.ApprovedOn)
}

func TestServiceTransition_DirectorShortCircuitsPending(t *testing.T) {
	deps := setupService(t)
	deps.employees.findByRefFn = knownEmployees(director())
	deps.apps.findByIDFn = func(ctx context.Context, id uint) (*leave.Application, error) {
		return pendingApplication(leave.StatusPending), nil
	}

	resp, err := deps.svc.Transition(context.Background(), 42, "D001", leave.TransitionRequest{Action: "approve"})

	assert.NoError(t, err)
	assert.Equal(t, string(leave.StatusApproved), resp.Status)
}

func TestServiceTransition_Unauthorized(t *testing.T) {
	deps := setupService(t)
	other := manager()
	other.Usercode = "M002"
	other.Name = "Someone Else"
	deps.employees.findByRefFn = knownEmployees(other)
	deps.apps.findByIDFn = func(ctx context.Context, id uint) (*leave.Application, error) {
		return pendingApplication(leave.StatusPending), nil
	}

	updated := false
	deps.apps.updateFn = func(ctx context.Context, a *leave.Application) error {
		updated = true
		return nil
	}

	_, err := deps.svc.Transition(context.Background(), 42, "M002", leave.TransitionRequest{Action: "approve"})

	assert.ErrorIs(t, err, leaveerrors.ErrNotAuthorizedApprover)
	assert.False(t, updated)
}

func TestServiceTransition_ManagerBlockedAtDirectorStage(t *testing.T) {
	deps := setupService(t)
	deps.employees.findByRefFn = knownEmployees(manager())
	deps.apps.findByIDFn = func(ctx context.Context, id uint) (*leave.Application, error) {
		return pendingApplication(leave.StatusPendingDirector), nil
	}

	_, err := deps.svc.Transition(context.Background(), 42, "M001", leave.TransitionRequest{Action: "approve"})

	assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
}

func TestServicePendingApprovals(t *testing.T) {
	report := coreEmployee()
	report.ReportingManager = "M001"

	t.Run("manager sees only direct reports", func(t *testing.T) {
		deps := setupService(t)
		deps.employees.findByRefFn = knownEmployees(manager())
		deps.employees.findTeamFn = func(ctx context.Context, managerID uint, managerCode, managerName string) ([]employee.Employee, error) {
			return []employee.Employee{report}, nil
		}
		deps.apps.findPendingByEmployeesFn = func(ctx context.Context, employeeIDs []uint) ([]leave.Application, error) {
			assert.Equal(t, []uint{report.ID}, employeeIDs)
			return []leave.Application{*pendingApplication(leave.StatusPending)}, nil
		}
		directorStageQueried := false
		deps.apps.findPendingDirectorFn = func(ctx context.Context) ([]leave.Application, error) {
			directorStageQueried = true
			return nil, nil
		}

		out, err := deps.svc.PendingApprovals(context.Background(), "M001")
		assert.NoError(t, err)
		assert.Len(t, out, 1)
		assert.False(t, directorStageQueried)
	})

	t.Run("director also sees the forwarded queue", func(t *testing.T) {
		deps := setupService(t)
		deps.employees.findByRefFn = knownEmployees(director())
		deps.apps.findPendingDirectorFn = func(ctx context.Context) ([]leave.Application, error) {
			return []leave.Application{*pendingApplication(leave.StatusPendingDirector)}, nil
		}

		out, err := deps.svc.PendingApprovals(context.Background(), "D001")
		assert.NoError(t, err)
		assert.Len(t, out, 1)
		assert.Equal(t, string(leave.StatusPendingDirector), out[0].Status)
	})

	t.Run("unknown approver", func(t *testing.T) {
		deps := setupService(t)
		_, err := deps.svc.PendingApprovals(context.Background(), "nobody")
		assert.ErrorIs(t, err, leaveerrors.ErrApproverNotFound)
	})
}

func TestServiceReport_Scoping(t *testing.T) {
	report := coreEmployee()
	report.ReportingManager = "M001"
	window := leave.ReportRequest{FromDate: "2026-01-01", ToDate: "2026-12-31"}

	t.Run("manager scope is self plus team", func(t *testing.T) {
		deps := setupService(t)
		deps.employees.findByRefFn = knownEmployees(manager(), report)
		deps.employees.findTeamFn = func(ctx context.Context, managerID uint, managerCode, managerName string) ([]employee.Employee, error) {
			return []employee.Employee{report}, nil
		}
		deps.apps.reportFn = func(ctx context.Context, employeeIDs []uint, from, to time.Time, status string) ([]leave.ReportRow, error) {
			assert.Equal(t, []uint{7, 1}, employeeIDs)
			return nil, nil
		}

		_, err := deps.svc.Report(context.Background(), "M001", window)
		assert.NoError(t, err)
	})

	t.Run("director scope is unrestricted", func(t *testing.T) {
		deps := setupService(t)
		deps.employees.findByRefFn = knownEmployees(director())
		deps.apps.reportFn = func(ctx context.Context, employeeIDs []uint, from, to time.Time, status string) ([]leave.ReportRow, error) {
			assert.Nil(t, employeeIDs)
			return nil, nil
		}

		_, err := deps.svc.Report(context.Background(), "D001", window)
		assert.NoError(t, err)
	})

	t.Run("manager cannot target outside the team", func(t *testing.T) {
		outsider := employee.Employee{ID: 33, Usercode: "E333", Name: "Outsider"}
		deps := setupService(t)
		deps.employees.findByRefFn = knownEmployees(manager(), outsider)

		req := window
		req.EmployeeRef = "E333"
		_, err := deps.svc.Report(context.Background(), "M001", req)
		assert.ErrorIs(t, err, leaveerrors.ErrNotAuthorizedApprover)
	})
}
