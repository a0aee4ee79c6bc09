package designation

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
	ErrDesignationNotFound = apperror.New(
		apperror.CodeNotFound,
		"designation not found",
		http.StatusNotFound,
	)
	ErrDesignationExists = apperror.New(
		apperror.CodeConflict,
		"a designation with this name already exists",
		http.StatusConflict,
	)
)

type Service interface {
	Create(ctx context.Context, req CreateDesignationRequest) (DesignationResponse, error)
	Update(ctx context.Context, id uint, req UpdateDesignationRequest) (DesignationResponse, error)
	GetByID(ctx context.Context, id uint) (DesignationResponse, error)
	GetAll(ctx context.Context) ([]DesignationResponse, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("designation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("designation.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateDesignationRequest) (DesignationResponse, error) {
	d := Designation{
		Name:             req.Name,
		Band:             req.Band,
		ProbationMonths:  req.ProbationMonths,
		NoticePeriodDays: req.NoticePeriodDays,
	}
	if err := s.repo.Create(ctx, &d); err != nil {
		return DesignationResponse{}, mapError(err)
	}

	s.logger.Info("designation created", zap.Uint("id", d.ID), zap.String("name", d.Name))
	return toResponse(d), nil
}

func (s *service) Update(ctx context.Context, id uint, req UpdateDesignationRequest) (DesignationResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DesignationResponse{}, mapError(err)
	}

	d.Name = req.Name
	d.Band = req.Band
	d.ProbationMonths = req.ProbationMonths
	d.NoticePeriodDays = req.NoticePeriodDays
	if err := s.repo.Update(ctx, d); err != nil {
		return DesignationResponse{}, mapError(err)
	}
	return toResponse(*d), nil
}

func (s *service) GetByID(ctx context.Context, id uint) (DesignationResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DesignationResponse{}, mapError(err)
	}
	return toResponse(*d), nil
}

func (s *service) GetAll(ctx context.Context) ([]DesignationResponse, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]DesignationResponse, len(all))
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
		return ErrDesignationNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDesignationExists
	}
	if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
		return ErrDesignationExists
	}
	return err
}
