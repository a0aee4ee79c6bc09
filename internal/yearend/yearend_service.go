package yearend

import (
	"context"
	"errors"
	"sync"
	"time"

	"nia-hrms/internal/employee"
	"nia-hrms/internal/leave"
	"nia-hrms/internal/shared/contextutil"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const defaultWorkers = 8

//go:generate mockgen -source=yearend_service.go -destination=mock/yearend_service_mock.go -package=mock

type Service interface {
	Run(ctx context.Context, targetYear int) (Summary, error)
}

type service struct {
	employees employee.Repository
	apps      leave.ApplicationRepository
	balances  leave.BalanceRepository
	workers   int
	logger    *zap.Logger
}

func NewService(
	employees employee.Repository,
	apps leave.ApplicationRepository,
	balances leave.BalanceRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("yearend.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("yearend.service")
	}
	return &service{
		employees: employees,
		apps:      apps,
		balances:  balances,
		workers:   defaultWorkers,
		logger:    l,
	}
}

// Run closes the year preceding targetYear and writes each active
// employee's opening balances for targetYear. Employees are independent,
// so the batch fans out; a failure for one employee is recorded in the
// summary and never aborts the rest. Upserts make the whole run
// idempotent: re-running for the same target year converges.
func (s *service) Run(ctx context.Context, targetYear int) (Summary, error) {
	rid := contextutil.GetRequestID(ctx)
	if targetYear < 2000 || targetYear > time.Now().Year()+1 {
		return Summary{}, ErrInvalidTargetYear
	}
	processingYear := targetYear - 1

	s.logger.Info("year-end close started",
		zap.String("request_id", rid),
		zap.Int("target_year", targetYear),
		zap.Int("processing_year", processingYear),
	)

	emps, err := s.employees.FindActive(ctx)
	if err != nil {
		return Summary{}, err
	}

	start := time.Date(processingYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(processingYear, time.December, 31, 0, 0, 0, 0, time.UTC)

	summary := Summary{TargetYear: targetYear, Processed: len(emps)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, emp := range emps {
		emp := emp
		g.Go(func() error {
			err := s.closeEmployee(gctx, emp, processingYear, start, end)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				summary.Errors = append(summary.Errors, EmployeeError{
					EmployeeCode: emp.Usercode,
					Error:        err.Error(),
				})
				s.logger.Error("year-end close employee failed",
					zap.String("request_id", rid),
					zap.String("emp_code", emp.Usercode),
					zap.Error(err),
				)
				return nil
			}
			summary.Succeeded++
			return nil
		})
	}

	// Workers only report via the summary; Wait surfaces ctx cancellation.
	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	s.logger.Info("year-end close finished",
		zap.String("request_id", rid),
		zap.Int("target_year", targetYear),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (s *service) closeEmployee(ctx context.Context, emp employee.Employee, processingYear int, start, end time.Time) error {
	used, err := s.apps.SumApprovedGroupedInWindow(ctx, emp.ID, start, end)
	if err != nil {
		return err
	}

	opening, err := s.balances.FindByEmployeeYear(ctx, emp.ID, processingYear)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		opening = nil
	} else if err != nil {
		return err
	}

	next := ComputeOpening(emp, opening, used, processingYear)
	return s.balances.Upsert(ctx, &next)
}
