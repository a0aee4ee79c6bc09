package department

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, d *Department) error
	Update(ctx context.Context, d *Department) error
	FindByID(ctx context.Context, id uint) (*Department, error)
	FindAll(ctx context.Context) ([]Department, error)
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, d *Department) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *repository) Update(ctx context.Context, d *Department) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Department, error) {
	var d Department
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *repository) FindAll(ctx context.Context) ([]Department, error) {
	var out []Department
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Department{}, "id = ?", id).Error
}
