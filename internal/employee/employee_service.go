package employee

import (
	"context"
	"time"

	employeeerrors "nia-hrms/internal/employee/errors"

	"go.uber.org/zap"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	Update(ctx context.Context, ref string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	GetByRef(ctx context.Context, ref string) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	Deactivate(ctx context.Context, ref string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	joinDate, err := time.Parse("2006-01-02", req.JoinDate)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoinDate
	}

	e := &Employee{
		Usercode:           req.Usercode,
		Name:               req.Name,
		Email:              req.Email,
		Gender:             req.Gender,
		JoinDate:           joinDate,
		EmploymentCategory: EmploymentCategory(req.EmploymentCategory),
		WorksSaturday:      req.WorksSaturday,
		ReportingManager:   req.ReportingManager,
		Post:               req.Post,
		Department:         req.Department,
		Designation:        req.Designation,
		Status:             StatusActive,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("employee created",
		zap.String("usercode", e.Usercode),
		zap.String("category", string(e.EmploymentCategory)),
	)
	return mapToResponse(*e), nil
}

func (s *service) Update(ctx context.Context, ref string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	e, err := s.repo.FindByRef(ctx, ref)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	e.Name = req.Name
	e.Email = req.Email
	e.Gender = req.Gender
	e.EmploymentCategory = EmploymentCategory(req.EmploymentCategory)
	e.WorksSaturday = req.WorksSaturday
	e.ReportingManager = req.ReportingManager
	e.Post = req.Post
	e.Department = req.Department
	e.Designation = req.Designation

	if err := s.repo.Update(ctx, e); err != nil {
		s.logger.Error("update employee persist failed",
			zap.String("usercode", e.Usercode),
			zap.Error(err),
		)
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*e), nil
}

func (s *service) GetByRef(ctx context.Context, ref string) (EmployeeResponse, error) {
	e, err := s.repo.FindByRef(ctx, ref)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*e), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	employees, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp, nil
}

func (s *service) Deactivate(ctx context.Context, ref string) error {
	e, err := s.repo.FindByRef(ctx, ref)
	if err != nil {
		return mapRepositoryError(err)
	}

	if err := s.repo.Deactivate(ctx, e.ID); err != nil {
		return mapRepositoryError(err)
	}

	s.logger.Info("employee deactivated", zap.String("usercode", e.Usercode))
	return nil
}

func mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                 e.ID,
		Usercode:           e.Usercode,
		Name:               e.Name,
		Email:              e.Email,
		Gender:             e.Gender,
		JoinDate:           e.JoinDate.Format("2006-01-02"),
		EmploymentCategory: string(e.EmploymentCategory),
		WorksSaturday:      e.WorksSaturday,
		ReportingManager:   e.ReportingManager,
		Post:               e.Post,
		Department:         e.Department,
		Designation:        e.Designation,
		Status:             e.Status,
	}
}
