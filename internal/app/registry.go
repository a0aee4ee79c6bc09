package app

import (
	"nia-hrms/internal/department"
	"nia-hrms/internal/designation"
	"nia-hrms/internal/employee"
	"nia-hrms/internal/leave"
	"nia-hrms/internal/messaging/kafka"
	"nia-hrms/internal/rbac"
	"nia-hrms/internal/yearend"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&employee.Employee{},
		&department.Department{},
		&designation.Designation{},
		&leave.Application{},
		&leave.Balance{},
		&leave.Configuration{},
		&kafka.OutboxEvent{},
	)
}

func registerModules(
	router *gin.Engine,
	db *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	if err := autoMigrate(db); err != nil {
		return err
	}

	// --- Repositories ---
	employeeRepo := employee.NewRepository(db)
	departmentRepo := department.NewRepository(db)
	designationRepo := designation.NewRepository(db)
	appRepo := leave.NewApplicationRepository(db)
	balanceRepo := leave.NewBalanceRepository(db)
	configRepo := leave.NewConfigRepository(db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	configProvider := leave.NewConfigProvider(configRepo)
	employeeService := employee.NewService(employeeRepo, logger)
	departmentService := department.NewService(departmentRepo, logger)
	designationService := designation.NewService(designationRepo, logger)
	leaveService := leave.NewServiceWithOutbox(
		db, employeeRepo, appRepo, balanceRepo, configProvider, outboxRepo, rdb, logger,
	)
	yearendService := yearend.NewService(employeeRepo, appRepo, balanceRepo, logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, logger)
	departmentHandler := department.NewHandler(departmentService, logger)
	designationHandler := designation.NewHandler(designationService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	yearendHandler := yearend.NewHandler(yearendService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		department.RegisterRoutes(api, departmentHandler, rbacService)
		designation.RegisterRoutes(api, designationHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService)
		yearend.RegisterRoutes(api, yearendHandler, rbacService)
	}

	return nil
}
