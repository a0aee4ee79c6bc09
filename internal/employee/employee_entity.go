package employee

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// EmploymentCategory drives the leave rule set that applies to an employee.
type EmploymentCategory string

const (
	CategoryCore          EmploymentCategory = "Core"
	CategoryCoreProbation EmploymentCategory = "Core Probation"
	CategoryContractual   EmploymentCategory = "Contractual"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

type Employee struct {
	ID       uint   `gorm:"primaryKey"`
	Usercode string `gorm:"type:varchar(20);not null;uniqueIndex:uq_employee_usercode"`
	Name     string `gorm:"type:varchar(120);not null"`
	Email    string `gorm:"type:varchar(120);uniqueIndex:uq_employee_email"`
	Gender   string `gorm:"type:varchar(10);not null;default:'Male'"`

	JoinDate           time.Time          `gorm:"type:date;not null"`
	EmploymentCategory EmploymentCategory `gorm:"type:varchar(30);not null;default:'Core'"`
	WorksSaturday      bool               `gorm:"not null;default:false"`

	// Historical data stored the manager reference as an internal id, a
	// usercode, or a display name. Kept as free text; team lookups match
	// all three.
	ReportingManager string `gorm:"type:varchar(120)"`

	Post        string `gorm:"type:varchar(120)"`
	Department  string `gorm:"type:varchar(120)"`
	Designation string `gorm:"type:varchar(120)"`

	Status string `gorm:"type:varchar(20);not null;default:'Active'"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_employee_deleted_at"`
}

// IsDirector reports whether the employee carries director approval
// authority. Authority is derived from the post title.
func (e Employee) IsDirector() bool {
	return strings.Contains(strings.ToLower(e.Post), "director")
}

// InProbation reports the stored-category probation flag. The year-end
// close intentionally uses the join-date rule instead; see yearend.
func (e Employee) InProbation() bool {
	return e.EmploymentCategory == CategoryCoreProbation
}

func (e Employee) IsContractual() bool {
	return e.EmploymentCategory == CategoryContractual
}

func (e Employee) IsFemale() bool {
	return strings.EqualFold(strings.TrimSpace(e.Gender), "Female")
}
