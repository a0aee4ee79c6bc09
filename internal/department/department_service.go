package department

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"nia-hrms/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"department not found",
		http.StatusNotFound,
	)
	ErrDepartmentExists = apperror.New(
		apperror.CodeConflict,
		"a department with this name already exists",
		http.StatusConflict,
	)
)

type Service interface {
	Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error)
	Update(ctx context.Context, id uint, req UpdateDepartmentRequest) (DepartmentResponse, error)
	GetByID(ctx context.Context, id uint) (DepartmentResponse, error)
	GetAll(ctx context.Context) ([]DepartmentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("department.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error) {
	d := Department{Name: req.Name, Description: req.Description}
	if err := s.repo.Create(ctx, &d); err != nil {
		return DepartmentResponse{}, mapError(err)
	}

	s.logger.Info("department created", zap.Uint("id", d.ID), zap.String("name", d.Name))
	return toResponse(d), nil
}

func (s *service) Update(ctx context.Context, id uint, req UpdateDepartmentRequest) (DepartmentResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DepartmentResponse{}, mapError(err)
	}

	d.Name = req.Name
	d.Description = req.Description
	if err := s.repo.Update(ctx, d); err != nil {
		return DepartmentResponse{}, mapError(err)
	}
	return toResponse(*d), nil
}

func (s *service) GetByID(ctx context.Context, id uint) (DepartmentResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DepartmentResponse{}, mapError(err)
	}
	return toResponse(*d), nil
}

func (s *service) GetAll(ctx context.Context) ([]DepartmentResponse, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]DepartmentResponse, len(all))
	for i, d := range all {
		out[i] = toResponse(d)
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapError(err)
	}
	return s.repo.Delete(ctx, id)
}

func mapError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDepartmentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDepartmentExists
	}
	if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
		return ErrDepartmentExists
	}
	return err
}
