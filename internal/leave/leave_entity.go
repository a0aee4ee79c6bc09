package leave

import (
	"time"

	"nia-hrms/internal/employee"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Application is one leave request. Days is fixed at submission time and
// never recomputed; historical reports rely on the stored value.
type Application struct {
	ID         uint `gorm:"primaryKey"`
	EmployeeID uint `gorm:"not null;index:idx_leave_app_employee_dates"`

	Employee *employee.Employee `gorm:"foreignKey:EmployeeID"`

	LeaveType string          `gorm:"type:varchar(40);not null"`
	FromDate  time.Time       `gorm:"type:date;not null;index:idx_leave_app_employee_dates"`
	ToDate    time.Time       `gorm:"type:date;not null;index:idx_leave_app_employee_dates"`
	ShiftType string          `gorm:"type:varchar(2)"` // "1" first half, "2" second half
	Days      decimal.Decimal `gorm:"type:numeric(6,1);not null"`

	DocumentPath string `gorm:"type:text"`
	Comment      string `gorm:"type:text"`

	Status       Status     `gorm:"type:varchar(32);not null;default:'Pending';index:idx_leave_app_status"`
	AdminComment string     `gorm:"type:text"`
	ApprovedBy   string     `gorm:"type:varchar(120)"`
	ApprovedDate *time.Time `gorm:"type:date"`

	AppliedAt time.Time `gorm:"autoCreateTime"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leave_app_deleted_at"`
}

// Balance is the authoritative opening-balance row for one employee and
// year. Consumption is derived by summing applications, never by
// decrementing these columns; only the year-end close rewrites them.
type Balance struct {
	ID         uint `gorm:"primaryKey"`
	EmployeeID uint `gorm:"not null;uniqueIndex:uq_leave_balance_emp_year"`
	Year       int  `gorm:"not null;uniqueIndex:uq_leave_balance_emp_year"`

	CasualOpening    decimal.Decimal `gorm:"type:numeric(6,1);not null;default:0"`
	PrivilegeOpening decimal.Decimal `gorm:"type:numeric(6,1);not null;default:0"`
	// Sick leave is accounted in half-day units: 1 day = 2 units.
	SickOpeningUnits    decimal.Decimal `gorm:"type:numeric(6,1);not null;default:0"`
	CarryForwardOpening decimal.Decimal `gorm:"type:numeric(6,1);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Configuration is one rule row keyed by (employment category, leave type).
// Reference data edited by HR; read-only to the engine.
type Configuration struct {
	ID            uint                        `gorm:"primaryKey"`
	UserType      employee.EmploymentCategory `gorm:"type:varchar(30);not null;uniqueIndex:uq_leave_config_type"`
	LeaveType     string                      `gorm:"type:varchar(40);not null;uniqueIndex:uq_leave_config_type"`
	AnnualLimit   decimal.Decimal             `gorm:"type:numeric(6,1);not null;default:0"`
	MinPerRequest decimal.Decimal             `gorm:"type:numeric(6,1);not null;default:0"`
	MaxPerRequest decimal.Decimal             `gorm:"type:numeric(6,1);not null;default:0"`
	// Pointer so a deactivated rule survives the insert: gorm drops
	// zero-value fields that carry a column default.
	Active *bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Default opening balances used when no ledger row exists yet (new
// employee, year not closed).
var (
	DefaultCasualOpening       = decimal.NewFromInt(8)
	DefaultPrivilegeOpening    = decimal.Zero
	DefaultSickOpeningUnits    = decimal.Zero
	DefaultCarryForwardOpening = decimal.Zero
)
