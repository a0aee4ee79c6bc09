package designation

import (
	"time"

	"gorm.io/gorm"
)

// Designation is a role title with its HR terms. Probation and notice
// periods are informational for HR screens; leave rules key off the
// employee's employment category, not the designation.
type Designation struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"type:varchar(100);not null;uniqueIndex:uq_designation_name"`
	Band             string `gorm:"type:varchar(20)"`
	ProbationMonths  int    `gorm:"not null;default:12"`
	NoticePeriodDays int    `gorm:"not null;default:30"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Designation) TableName() string { return "designations" }
