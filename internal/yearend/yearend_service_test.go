package yearend_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nia-hrms/internal/employee"
	"nia-hrms/internal/leave"
	"nia-hrms/internal/yearend"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeEmployeeRepository struct {
	findActiveFn func(ctx context.Context) ([]employee.Employee, error)
}

func (f *fakeEmployeeRepository) WithTx(tx *gorm.DB) employee.Repository { return f }
func (f *fakeEmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	return nil
}
func (f *fakeEmployeeRepository) Update(ctx context.Context, e *employee.Employee) error {
	return nil
}
func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id uint) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeEmployeeRepository) FindByRef(ctx context.Context, ref string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeEmployeeRepository) FindAll(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepository) FindActive(ctx context.Context) ([]employee.Employee, error) {
	if f.findActiveFn != nil {
		return f.findActiveFn(ctx)
	}
	return nil, nil
}
func (f *fakeEmployeeRepository) FindDirectors(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepository) FindTeam(ctx context.Context, managerID uint, managerCode, managerName string) ([]employee.Employee, error) {
	return nil, nil
}
func (f *fakeEmployeeRepository) Deactivate(ctx context.Context, id uint) error { return nil }

type fakeApplicationRepository struct {
	sumApprovedGroupedInWindowFn func(ctx context.Context, employeeID uint, start, end time.Time) (map[string]decimal.Decimal, error)
}

func (f *fakeApplicationRepository) WithTx(tx *gorm.DB) leave.ApplicationRepository { return f }
func (f *fakeApplicationRepository) LockEmployeeType(ctx context.Context, employeeID uint, leaveType string) error {
	return nil
}
func (f *fakeApplicationRepository) Create(ctx context.Context, a *leave.Application) error {
	return nil
}
func (f *fakeApplicationRepository) FindByID(ctx context.Context, id uint) (*leave.Application, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeApplicationRepository) Update(ctx context.Context, a *leave.Application) error {
	return nil
}
func (f *fakeApplicationRepository) SumByTypeInWindow(ctx context.Context, employeeID uint, leaveType string, start, end time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (f *fakeApplicationRepository) SumByTypeLifetime(ctx context.Context, employeeID uint, leaveType string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (f *fakeApplicationRepository) SumGroupedInWindow(ctx context.Context, employeeID uint, start, end time.Time) (map[string]decimal.Decimal, error) {
	return nil, nil
}
func (f *fakeApplicationRepository) SumGroupedLifetime(ctx context.Context, employeeID uint) (map[string]decimal.Decimal, error) {
	return nil, nil
}
func (f *fakeApplicationRepository) SumApprovedGroupedInWindow(ctx context.Context, employeeID uint, start, end time.Time) (map[string]decimal.Decimal, error) {
	if f.sumApprovedGroupedInWindowFn != nil {
		return f.sumApprovedGroupedInWindowFn(ctx, employeeID, start, end)
	}
	return nil, nil
}
func (f *fakeApplicationRepository) FindByEmployeeMonth(ctx context.Context, employeeID uint, month time.Time) ([]leave.Application, error) {
	return nil, nil
}
func (f *fakeApplicationRepository) FindPendingByEmployees(ctx context.Context, employeeIDs []uint) ([]leave.Application, error) {
	return nil, nil
}
func (f *fakeApplicationRepository) FindPendingDirector(ctx context.Context) ([]leave.Application, error) {
	return nil, nil
}
func (f *fakeApplicationRepository) Report(ctx context.Context, employeeIDs []uint, from, to time.Time, status string) ([]leave.ReportRow, error) {
	return nil, nil
}

type fakeBalanceRepository struct {
	mu       sync.Mutex
	upserted []leave.Balance

	findByEmployeeYearFn func(ctx context.Context, employeeID uint, year int) (*leave.Balance, error)
	upsertFn             func(ctx context.Context, b *leave.Balance) error
}

func (f *fakeBalanceRepository) FindByEmployeeYear(ctx context.Context, employeeID uint, year int) (*leave.Balance, error) {
	if f.findByEmployeeYearFn != nil {
		return f.findByEmployeeYearFn(ctx, employeeID, year)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) Upsert(ctx context.Context, b *leave.Balance) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, b)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, *b)
	return nil
}

func activeStaff() []employee.Employee {
	return []employee.Employee{
		{ID: 1, Usercode: "E100", JoinDate: day("2018-04-01"), EmploymentCategory: employee.CategoryCore},
		{ID: 2, Usercode: "E200", JoinDate: day("2020-09-15"), EmploymentCategory: employee.CategoryCore},
		{ID: 3, Usercode: "E300", JoinDate: day("2022-01-10"), EmploymentCategory: employee.CategoryCore},
	}
}

func TestYearEndRun_WritesTargetYearOpenings(t *testing.T) {
	employees := &fakeEmployeeRepository{
		findActiveFn: func(ctx context.Context) ([]employee.Employee, error) {
			return activeStaff(), nil
		},
	}
	apps := &fakeApplicationRepository{
		sumApprovedGroupedInWindowFn: func(ctx context.Context, employeeID uint, start, end time.Time) (map[string]decimal.Decimal, error) {
			assert.Equal(t, 2025, start.Year())
			assert.Equal(t, 2025, end.Year())
			return nil, nil
		},
	}
	balances := &fakeBalanceRepository{}

	summary, err := yearend.NewService(employees, apps, balances).Run(context.Background(), 2026)

	assert.NoError(t, err)
	assert.Equal(t, 2026, summary.TargetYear)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Empty(t, summary.Errors)

	assert.Len(t, balances.upserted, 3)
	for _, b := range balances.upserted {
		assert.Equal(t, 2026, b.Year)
	}
}

func TestYearEndRun_IsolatesPerEmployeeFailures(t *testing.T) {
	boom := errors.New("connection reset")
	employees := &fakeEmployeeRepository{
		findActiveFn: func(ctx context.Context) ([]employee.Employee, error) {
			return activeStaff(), nil
		},
	}
	apps := &fakeApplicationRepository{
		sumApprovedGroupedInWindowFn: func(ctx context.Context, employeeID uint, start, end time.Time) (map[string]decimal.Decimal, error) {
			if employeeID == 2 {
				return nil, boom
			}
			return nil, nil
		},
	}
	balances := &fakeBalanceRepository{}

	summary, err := yearend.NewService(employees, apps, balances).Run(context.Background(), 2026)

	assert.NoError(t, err, "one bad employee must not abort the batch")
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	if assert.Len(t, summary.Errors, 1) {
		assert.Equal(t, "E200", summary.Errors[0].EmployeeCode)
		assert.Contains(t, summary.Errors[0].Error, "connection reset")
	}
	assert.Len(t, balances.upserted, 2)
}

func TestYearEndRun_RejectsImplausibleTargetYears(t *testing.T) {
	svc := yearend.NewService(&fakeEmployeeRepository{}, &fakeApplicationRepository{}, &fakeBalanceRepository{})

	_, err := svc.Run(context.Background(), 1999)
	assert.ErrorIs(t, err, yearend.ErrInvalidTargetYear)

	_, err = svc.Run(context.Background(), time.Now().Year()+2)
	assert.ErrorIs(t, err, yearend.ErrInvalidTargetYear)
}

func TestYearEndRun_Rerunnable(t *testing.T) {
	employees := &fakeEmployeeRepository{
		findActiveFn: func(ctx context.Context) ([]employee.Employee, error) {
			return activeStaff()[:1], nil
		},
	}
	balances := &fakeBalanceRepository{}
	svc := yearend.NewService(employees, &fakeApplicationRepository{}, balances)

	first, err := svc.Run(context.Background(), 2026)
	assert.NoError(t, err)
	second, err := svc.Run(context.Background(), 2026)
	assert.NoError(t, err)

	assert.Equal(t, first.Succeeded, second.Succeeded)
	assert.Len(t, balances.upserted, 2)
	assert.Equal(t, balances.upserted[0], balances.upserted[1])
}
