package designation_test

import (
	"context"
	"testing"

	"nia-hrms/internal/designation"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func serviceOverSqlite(t *testing.T) designation.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&designation.Designation{}))
	return designation.NewService(designation.NewRepository(db))
}

func TestDesignationCRUD(t *testing.T) {
	svc := serviceOverSqlite(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, designation.CreateDesignationRequest{
		Name:             "Assistant Manager",
		Band:             "B2",
		ProbationMonths:  12,
		NoticePeriodDays: 60,
	})
	assert.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 12, created.ProbationMonths)

	updated, err := svc.Update(ctx, created.ID, designation.UpdateDesignationRequest{
		Name:             "Assistant Manager",
		Band:             "B3",
		ProbationMonths:  6,
		NoticePeriodDays: 60,
	})
	assert.NoError(t, err)
	assert.Equal(t, "B3", updated.Band)
	assert.Equal(t, 6, updated.ProbationMonths)

	all, err := svc.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 1)

	assert.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, designation.ErrDesignationNotFound)
}

func TestDesignationNotFound(t *testing.T) {
	svc := serviceOverSqlite(t)

	_, err := svc.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, designation.ErrDesignationNotFound)
}
