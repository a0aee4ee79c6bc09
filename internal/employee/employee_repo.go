package employee

import (
	"context"
	"strconv"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, e *Employee) error
	Update(ctx context.Context, e *Employee) error
	FindByID(ctx context.Context, id uint) (*Employee, error)
	FindByRef(ctx context.Context, ref string) (*Employee, error)
	FindAll(ctx context.Context) ([]Employee, error)
	FindActive(ctx context.Context) ([]Employee, error)
	FindDirectors(ctx context.Context) ([]Employee, error)
	FindTeam(ctx context.Context, managerID uint, managerCode, managerName string) ([]Employee, error)
	Deactivate(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

// FindByRef resolves an employee by usercode or, when the reference is
// numeric, by internal id. Mirrors the lookup clients have always used.
func (r *repository) FindByRef(ctx context.Context, ref string) (*Employee, error) {
	var e Employee
	q := r.db.WithContext(ctx)
	if id, err := strconv.ParseUint(ref, 10, 32); err == nil {
		q = q.Where("usercode = ? OR id = ?", ref, uint(id))
	} else {
		q = q.Where("usercode = ?", ref)
	}
	err := q.First(&e).Error
	return &e, err
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Order("usercode ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindActive(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusActive).
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindDirectors(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Where("LOWER(post) LIKE ?", "%director%").
		Where("status = ?", StatusActive).
		Find(&employees).Error
	return employees, err
}

// FindTeam returns direct reports. The reporting_manager column holds an
// id, a usercode, or a name depending on when the row was written, so all
// three are checked.
func (r *repository) FindTeam(ctx context.Context, managerID uint, managerCode, managerName string) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Where("reporting_manager = ? OR reporting_manager = ? OR reporting_manager = ?",
			strconv.FormatUint(uint64(managerID), 10), managerCode, managerName).
		Find(&employees).Error
	return employees, err
}

func (r *repository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", id).
		Update("status", StatusInactive).Error
}
