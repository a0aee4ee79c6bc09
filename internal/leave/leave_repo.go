package leave

import (
	"context"
	"time"

	"nia-hrms/internal/employee"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportRow is one line of the leave report projection.
type ReportRow struct {
	Usercode     string          `json:"Employee ID"`
	EmployeeName string          `json:"Employee Name"`
	Department   string          `json:"Department"`
	LeaveType    string          `json:"Leave Type"`
	FromDate     string          `json:"From Date"`
	ToDate       string          `json:"To Date"`
	Days         decimal.Decimal `json:"Days"`
	Status       string          `json:"Status"`
	AppliedOn    string          `json:"Applied On"`
	Reason       string          `json:"Reason"`
	ApprovedBy   string          `json:"Approved By"`
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type ApplicationRepository interface {
	WithTx(tx *gorm.DB) ApplicationRepository
	// LockEmployeeType serializes concurrent balance-check-then-insert for
	// one employee and leave type. Must be called on a tx-bound repository;
	// the lock is released at transaction end.
	LockEmployeeType(ctx context.Context, employeeID uint, leaveType string) error
	Create(ctx context.Context, a *Application) error
	FindByID(ctx context.Context, id uint) (*Application, error)
	Update(ctx context.Context, a *Application) error
	SumByTypeInWindow(ctx context.Context, employeeID uint, leaveType string, start, end time.Time) (decimal.Decimal, error)
	SumByTypeLifetime(ctx context.Context, employeeID uint, leaveType string) (decimal.Decimal, error)
	SumGroupedInWindow(ctx context.Context, employeeID uint, start, end time.Time) (map[string]decimal.Decimal, error)
	SumGroupedLifetime(ctx context.Context, employeeID uint) (map[string]decimal.Decimal, error)
	SumApprovedGroupedInWindow(ctx context.Context, employeeID uint, start, end time.Time) (map[string]decimal.Decimal, error)
	FindByEmployeeMonth(ctx context.Context, employeeID uint, month time.Time) ([]Application, error)
	FindPendingByEmployees(ctx context.Context, employeeIDs []uint) ([]Application, error)
	FindPendingDirector(ctx context.Context) ([]Application, error)
	Report(ctx context.Context, employeeIDs []uint, from, to time.Time, status string) ([]ReportRow, error)
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) WithTx(tx *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: tx}
}

func (r *applicationRepository) LockEmployeeType(ctx context.Context, employeeID uint, leaveType string) error {
	// Advisory lock keyed on employee+type; no-op on non-postgres stores
	// (tests run on sqlite, which serializes writes anyway).
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(? || ':' || ?))", employeeID, leaveType).Error
}

func (r *applicationRepository) Create(ctx context.Context, a *Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *applicationRepository) FindByID(ctx context.Context, id uint) (*Application, error) {
	var a Application
	err := r.db.WithContext(ctx).
		Preload("Employee").
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *applicationRepository) Update(ctx context.Context, a *Application) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// SumByTypeInWindow sums non-rejected day counts where either boundary of
// the application falls inside the window. Applications spanning the whole
// window without a boundary inside it are not counted; annual windows are
// full calendar years so the case cannot occur in practice.
func (r *applicationRepository) SumByTypeInWindow(ctx context.Context, employeeID uint, leaveType string, start, end time.Time) (decimal.Decimal, error) {
	return r.sumDays(ctx, r.db.WithContext(ctx).
		Model(&Application{}).
		Where("employee_id = ?", employeeID).
		Where("leave_type = ?", leaveType).
		Where("status <> ?", StatusRejected).
		Where("(from_date BETWEEN ? AND ?) OR (to_date BETWEEN ? AND ?)", start, end, start, end))
}

func (r *applicationRepository) SumByTypeLifetime(ctx context.Context, employeeID uint, leaveType string) (decimal.Decimal, error) {
	return r.sumDays(ctx, r.db.WithContext(ctx).
		Model(&Application{}).
		Where("employee_id = ?", employeeID).
		Where("leave_type = ?", leaveType).
		Where("status <> ?", StatusRejected))
}

func (r *applicationRepository) sumDays(ctx context.Context, q *gorm.DB) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := q.Select("COALESCE(SUM(days), 0) AS total").Scan(&row).Error
	return row.Total, err
}

func (r *applicationRepository) SumGroupedInWindow(ctx context.Context, employeeID uint, start, end time.Time) (map[string]decimal.Decimal, error) {
	return r.sumGrouped(r.db.WithContext(ctx).
		Model(&Application{}).
		Where("employee_id = ?", employeeID).
		Where("status <> ?", StatusRejected).
		Where("from_date BETWEEN ? AND ?", start, end))
}

func (r *applicationRepository) SumGroupedLifetime(ctx context.Context, employeeID uint) (map[string]decimal.Decimal, error) {
	return r.sumGrouped(r.db.WithContext(ctx).
		Model(&Application{}).
		Where("employee_id = ?", employeeID).
		Where("status <> ?", StatusRejected))
}

// SumApprovedGroupedInWindow is the year-end consumption query: approved
// applications only, keyed by type.
func (r *applicationRepository) SumApprovedGroupedInWindow(ctx context.Context, employeeID uint, start, end time.Time) (map[string]decimal.Decimal, error) {
	return r.sumGrouped(r.db.WithContext(ctx).
		Model(&Application{}).
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusApproved).
		Where("from_date BETWEEN ? AND ?", start, end))
}

func (r *applicationRepository) sumGrouped(q *gorm.DB) (map[string]decimal.Decimal, error) {
	var rows []struct {
		LeaveType string
		Total     decimal.Decimal
	}
	err := q.Select("leave_type, COALESCE(SUM(days), 0) AS total").
		Group("leave_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.LeaveType] = row.Total
	}
	return out, nil
}

func (r *applicationRepository) FindByEmployeeMonth(ctx context.Context, employeeID uint, month time.Time) ([]Application, error) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	var apps []Application
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("from_date BETWEEN ? AND ?", start, end).
		Order("from_date DESC").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) FindPendingByEmployees(ctx context.Context, employeeIDs []uint) ([]Application, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	var apps []Application
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("employee_id IN ?", employeeIDs).
		Where("status = ?", StatusPending).
		Order("id DESC").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) FindPendingDirector(ctx context.Context) ([]Application, error) {
	var apps []Application
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("status = ?", StatusPendingDirector).
		Order("id DESC").
		Find(&apps).Error
	return apps, err
}

// Report joins applications to the employee directory; a nil employeeIDs
// slice means no scope restriction (director/admin view).
func (r *applicationRepository) Report(ctx context.Context, employeeIDs []uint, from, to time.Time, status string) ([]ReportRow, error) {
	q := r.db.WithContext(ctx).
		Model(&Application{}).
		Select(`employees.usercode AS usercode,
			employees.name AS employee_name,
			employees.department AS department,
			leave_applications.leave_type AS leave_type,
			leave_applications.from_date AS from_date,
			leave_applications.to_date AS to_date,
			leave_applications.days AS days,
			leave_applications.status AS status,
			leave_applications.applied_at AS applied_on,
			leave_applications.comment AS reason,
			leave_applications.approved_by AS approved_by`).
		Joins("JOIN employees ON employees.id = leave_applications.employee_id").
		Where("leave_applications.from_date BETWEEN ? AND ?", from, to).
		Order("leave_applications.from_date DESC")

	if employeeIDs != nil {
		q = q.Where("leave_applications.employee_id IN ?", employeeIDs)
	}
	if status != "" && status != "All" {
		q = q.Where("leave_applications.status = ?", status)
	}

	var raw []struct {
		Usercode     string
		EmployeeName string
		Department   string
		LeaveType    string
		FromDate     time.Time
		ToDate       time.Time
		Days         decimal.Decimal
		Status       string
		AppliedOn    time.Time
		Reason       string
		ApprovedBy   string
	}
	if err := q.Scan(&raw).Error; err != nil {
		return nil, err
	}

	rows := make([]ReportRow, len(raw))
	for i, rr := range raw {
		rows[i] = ReportRow{
			Usercode:     rr.Usercode,
			EmployeeName: rr.EmployeeName,
			Department:   rr.Department,
			LeaveType:    rr.LeaveType,
			FromDate:     rr.FromDate.Format("2006-01-02"),
			ToDate:       rr.ToDate.Format("2006-01-02"),
			Days:         rr.Days,
			Status:       rr.Status,
			AppliedOn:    rr.AppliedOn.Format("2006-01-02"),
			Reason:       rr.Reason,
			ApprovedBy:   rr.ApprovedBy,
		}
	}
	return rows, nil
}

type BalanceRepository interface {
	FindByEmployeeYear(ctx context.Context, employeeID uint, year int) (*Balance, error)
	// Upsert keeps at most one row per (employee, year); safe to re-run.
	Upsert(ctx context.Context, b *Balance) error
}

type balanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) BalanceRepository {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) FindByEmployeeYear(ctx context.Context, employeeID uint, year int) (*Balance, error) {
	var b Balance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND year = ?", employeeID, year).
		First(&b).Error
	return &b, err
}

func (r *balanceRepository) Upsert(ctx context.Context, b *Balance) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "employee_id"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"casual_opening", "privilege_opening", "sick_opening_units", "carry_forward_opening", "updated_at",
			}),
		}).
		Create(b).Error
}

type ConfigRepository interface {
	FindActiveByCategory(ctx context.Context, category employee.EmploymentCategory) ([]Configuration, error)
}

type configRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db}
}

func (r *configRepository) FindActiveByCategory(ctx context.Context, category employee.EmploymentCategory) ([]Configuration, error) {
	if category == "" {
		category = employee.CategoryCore
	}

	var rules []Configuration
	err := r.db.WithContext(ctx).
		Where("user_type = ?", category).
		Where("active = ?", true).
		Find(&rules).Error
	return rules, err
}
