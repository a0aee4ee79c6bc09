package leave

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"nia-hrms/internal/employee"
	"nia-hrms/internal/events"
	leaveerrors "nia-hrms/internal/leave/errors"
	"nia-hrms/internal/messaging/kafka"
	"nia-hrms/internal/shared/apperror"
	"nia-hrms/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	balanceCacheKeyPrefix = "leave:balance:"
	balanceCacheTTL       = 10 * time.Minute
)

func balanceCacheKey(usercode string) string {
	return balanceCacheKeyPrefix + usercode
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock

type Service interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (ApplicationResponse, error)
	Balance(ctx context.Context, employeeRef string, asOf time.Time) (Snapshot, error)
	History(ctx context.Context, employeeRef string, month time.Time) ([]ApplicationResponse, error)
	PendingApprovals(ctx context.Context, approverRef string) ([]ApplicationResponse, error)
	Transition(ctx context.Context, leaveID uint, approverRef string, req TransitionRequest) (ApplicationResponse, error)
	Report(ctx context.Context, requesterRef string, req ReportRequest) ([]ReportRow, error)
}

type service struct {
	db        *gorm.DB
	employees employee.Repository
	apps      ApplicationRepository
	balances  BalanceRepository
	config    *ConfigProvider
	outbox    kafka.OutboxRepository
	rdb       *redis.Client
	sf        *singleflight.Group
	logger    *zap.Logger
}

func NewService(
	db *gorm.DB,
	employees employee.Repository,
	apps ApplicationRepository,
	balances BalanceRepository,
	config *ConfigProvider,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, employees, apps, balances, config, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *gorm.DB,
	employees employee.Repository,
	apps ApplicationRepository,
	balances BalanceRepository,
	config *ConfigProvider,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:        db,
		employees: employees,
		apps:      apps,
		balances:  balances,
		config:    config,
		outbox:    outboxRepo,
		rdb:       rdb,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

func (s *service) Apply(ctx context.Context, req ApplyLeaveRequest) (ApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("apply leave requested",
		zap.String("request_id", rid),
		zap.String("emp_ref", req.EmployeeRef),
		zap.String("leave_type", req.LeaveType),
	)

	emp, err := s.resolveEmployee(ctx, req.EmployeeRef)
	if err != nil {
		return ApplicationResponse{}, err
	}

	spec, ok := LookupType(req.LeaveType)
	if !ok {
		return ApplicationResponse{}, leaveerrors.ErrUnknownLeaveType
	}

	from, to, err := parseDateRange(req.FromDate, req.ToDate, req.IsHalfDay)
	if err != nil {
		return ApplicationResponse{}, err
	}

	var app Application
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qapps := s.apps.WithTx(tx)

		// Serialize against concurrent submissions for the same employee
		// and type; the balance check below must see committed state.
		if err := qapps.LockEmployeeType(ctx, emp.ID, spec.Name); err != nil {
			return err
		}

		eval := NewEvaluator(s.config, s.balances, qapps)
		res, err := eval.Evaluate(ctx, EvalRequest{
			Employee:    *emp,
			Spec:        spec,
			From:        from,
			To:          to,
			HalfDay:     req.IsHalfDay,
			HasDocument: req.DocumentPath != "",
		})
		if err != nil {
			return err
		}
		if !res.OK {
			return apperror.PolicyRejection(res.Reason)
		}

		app = Application{
			EmployeeID:   emp.ID,
			LeaveType:    spec.Name,
			FromDate:     from,
			ToDate:       res.To,
			ShiftType:    req.ShiftType,
			Days:         res.Days,
			DocumentPath: req.DocumentPath,
			Comment:      req.Comment,
			Status:       StatusPending,
		}
		if err := qapps.Create(ctx, &app); err != nil {
			return err
		}

		return s.enqueueSubmitted(ctx, tx, rid, emp, app)
	})
	if err != nil {
		s.logger.Error("apply leave failed",
			zap.String("request_id", rid),
			zap.String("emp_ref", req.EmployeeRef),
			zap.Error(err),
		)
		return ApplicationResponse{}, err
	}

	s.invalidateBalanceCache(ctx, emp.Usercode)

	s.logger.Info("leave application created",
		zap.String("request_id", rid),
		zap.Uint("leave_id", app.ID),
		zap.String("emp_code", emp.Usercode),
		zap.String("leave_type", app.LeaveType),
		zap.String("days", app.Days.String()),
	)

	app.Employee = emp
	return toApplicationResponse(app), nil
}

func (s *service) Balance(ctx context.Context, employeeRef string, asOf time.Time) (Snapshot, error) {
	emp, err := s.resolveEmployee(ctx, employeeRef)
	if err != nil {
		return Snapshot{}, err
	}

	// Point-in-time snapshots bypass the cache; only the live balance is
	// cached and invalidated on writes.
	if !asOf.IsZero() {
		return s.computeBalance(ctx, emp, asOf.UTC())
	}

	cacheKey := balanceCacheKey(emp.Usercode)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var snap Snapshot
			if json.Unmarshal([]byte(cached), &snap) == nil {
				return snap, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		snap, err := s.computeBalance(ctx, emp, time.Now().UTC())
		if err != nil {
			return nil, err
		}

		if s.rdb != nil {
			if data, err := json.Marshal(snap); err == nil {
				s.rdb.Set(ctx, cacheKey, data, balanceCacheTTL)
			}
		}
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

func (s *service) computeBalance(ctx context.Context, emp *employee.Employee, asOf time.Time) (Snapshot, error) {
	start := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(asOf.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)

	opening, err := s.balances.FindByEmployeeYear(ctx, emp.ID, asOf.Year())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		opening = nil
	} else if err != nil {
		return Snapshot{}, err
	}

	annual, err := s.apps.SumGroupedInWindow(ctx, emp.ID, start, end)
	if err != nil {
		return Snapshot{}, err
	}
	lifetime, err := s.apps.SumGroupedLifetime(ctx, emp.ID)
	if err != nil {
		return Snapshot{}, err
	}
	rules, err := s.config.Rules(ctx, emp.EmploymentCategory)
	if err != nil {
		return Snapshot{}, err
	}

	return ComputeSnapshot(SnapshotInput{
		Employee:      *emp,
		AsOf:          asOf,
		Opening:       opening,
		AnnualTaken:   annual,
		LifetimeTaken: lifetime,
		Rules:         rules,
	}), nil
}

func (s *service) History(ctx context.Context, employeeRef string, month time.Time) ([]ApplicationResponse, error) {
	emp, err := s.resolveEmployee(ctx, employeeRef)
	if err != nil {
		return nil, err
	}

	apps, err := s.apps.FindByEmployeeMonth(ctx, emp.ID, month)
	if err != nil {
		return nil, err
	}

	out := make([]ApplicationResponse, len(apps))
	for i, a := range apps {
		resp := toApplicationResponse(a)
		resp.EmployeeCode = emp.Usercode
		resp.EmployeeName = emp.Name
		out[i] = resp
	}
	return out, nil
}

// PendingApprovals lists the applications waiting on the given approver:
// direct reports' Pending items for any manager, plus every
// director-stage item when the approver is a director.
func (s *service) PendingApprovals(ctx context.Context, approverRef string) ([]ApplicationResponse, error) {
	approver, err := s.employees.FindByRef(ctx, approverRef)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, leaveerrors.ErrApproverNotFound
	} else if err != nil {
		return nil, err
	}

	team, err := s.employees.FindTeam(ctx, approver.ID, approver.Usercode, approver.Name)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(team))
	for i, m := range team {
		ids[i] = m.ID
	}

	pending, err := s.apps.FindPendingByEmployees(ctx, ids)
	if err != nil {
		return nil, err
	}

	if approver.IsDirector() {
		directorStage, err := s.apps.FindPendingDirector(ctx)
		if err != nil {
			return nil, err
		}
		pending = append(pending, directorStage...)
	}

	out := make([]ApplicationResponse, len(pending))
	for i, a := range pending {
		out[i] = toApplicationResponse(a)
	}
	return out, nil
}

func (s *service) Transition(ctx context.Context, leaveID uint, approverRef string, req TransitionRequest) (ApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	approver, err := s.employees.FindByRef(ctx, approverRef)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ApplicationResponse{}, leaveerrors.ErrApproverNotFound
	} else if err != nil {
		return ApplicationResponse{}, err
	}

	action, err := ParseAction(req.Action)
	if err != nil {
		return ApplicationResponse{}, err
	}

	var updated Application
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qapps := s.apps.WithTx(tx)

		app, err := qapps.FindByID(ctx, leaveID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrLeaveNotFound
		} else if err != nil {
			return err
		}

		byDirector := approver.IsDirector()
		if !byDirector && (app.Employee == nil || !managesEmployee(*approver, *app.Employee)) {
			return leaveerrors.ErrNotAuthorizedApprover
		}

		next, err := NextStatus(app.Status, action, byDirector)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		app.Status = next
		if req.Comment != "" {
			if app.AdminComment != "" {
				app.AdminComment += " | " + req.Comment
			} else {
				app.AdminComment = req.Comment
			}
		}
		if next.Terminal() {
			app.ApprovedBy = approver.Name
			app.ApprovedDate = &now
		}

		if err := qapps.Update(ctx, app); err != nil {
			return err
		}

		updated = *app
		return s.enqueueStatusChanged(ctx, tx, rid, approver, updated)
	})
	if err != nil {
		s.logger.Error("leave transition failed",
			zap.String("request_id", rid),
			zap.Uint("leave_id", leaveID),
			zap.String("approver_ref", approverRef),
			zap.Error(err),
		)
		return ApplicationResponse{}, err
	}

	if updated.Employee != nil {
		s.invalidateBalanceCache(ctx, updated.Employee.Usercode)
	}

	s.logger.Info("leave transitioned",
		zap.String("request_id", rid),
		zap.Uint("leave_id", leaveID),
		zap.String("action", string(action)),
		zap.String("new_status", string(updated.Status)),
		zap.String("acted_by", approver.Usercode),
	)

	return toApplicationResponse(updated), nil
}

// Report resolves the requester's visibility before querying: directors
// see everyone, managers see their team and themselves, everyone else
// sees only their own rows.
func (s *service) Report(ctx context.Context, requesterRef string, req ReportRequest) ([]ReportRow, error) {
	requester, err := s.resolveEmployee(ctx, requesterRef)
	if err != nil {
		return nil, err
	}

	from, err := parseDate(req.FromDate)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(req.ToDate)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, leaveerrors.ErrInvalidDateRange
	}

	var scope []uint
	if !requester.IsDirector() {
		team, err := s.employees.FindTeam(ctx, requester.ID, requester.Usercode, requester.Name)
		if err != nil {
			return nil, err
		}
		scope = make([]uint, 0, len(team)+1)
		scope = append(scope, requester.ID)
		for _, m := range team {
			scope = append(scope, m.ID)
		}
	}

	if req.EmployeeRef != "" {
		target, err := s.resolveEmployee(ctx, req.EmployeeRef)
		if err != nil {
			return nil, err
		}
		if scope != nil && !containsID(scope, target.ID) {
			return nil, leaveerrors.ErrNotAuthorizedApprover
		}
		scope = []uint{target.ID}
	}

	return s.apps.Report(ctx, scope, from, to, req.Status)
}

func (s *service) invalidateBalanceCache(ctx context.Context, usercode string) {
	if s.rdb == nil {
		return
	}
	key := balanceCacheKey(usercode)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.logger.Error("invalidate balance cache failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (s *service) resolveEmployee(ctx context.Context, ref string) (*employee.Employee, error) {
	emp, err := s.employees.FindByRef(ctx, ref)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, leaveerrors.ErrEmployeeNotFound
	} else if err != nil {
		return nil, err
	}
	return emp, nil
}

func (s *service) enqueueSubmitted(ctx context.Context, tx *gorm.DB, rid string, emp *employee.Employee, app Application) error {
	if s.outbox == nil {
		return nil
	}

	// The applicant gets a confirmation copy alongside the approvers.
	recipients := s.approverEmails(ctx, emp)
	if emp.Email != "" {
		recipients = append(recipients, emp.Email)
	}

	event := events.LeaveSubmittedEvent{
		EventType:    "leave_submitted",
		LeaveID:      app.ID,
		EmployeeCode: emp.Usercode,
		EmployeeName: emp.Name,
		LeaveType:    app.LeaveType,
		FromDate:     app.FromDate.Format("2006-01-02"),
		ToDate:       app.ToDate.Format("2006-01-02"),
		Days:         app.Days.String(),
		Recipients:   recipients,
		OccurredAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave_application",
		AggregateID:   strconv.FormatUint(uint64(app.ID), 10),
		EventType:     event.EventType,
		Topic:         events.LeaveNotificationTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) enqueueStatusChanged(ctx context.Context, tx *gorm.DB, rid string, approver *employee.Employee, app Application) error {
	if s.outbox == nil {
		return nil
	}

	var recipients []string
	var empCode, empName string
	if app.Employee != nil {
		empCode = app.Employee.Usercode
		empName = app.Employee.Name
		if app.Employee.Email != "" {
			recipients = append(recipients, app.Employee.Email)
		}
		// Forwarded applications also notify the directors' desk.
		if app.Status == StatusPendingDirector {
			recipients = append(recipients, s.directorEmails(ctx)...)
		}
	}

	event := events.LeaveStatusChangedEvent{
		EventType:    "leave_status_changed",
		LeaveID:      app.ID,
		EmployeeCode: empCode,
		EmployeeName: empName,
		LeaveType:    app.LeaveType,
		FromDate:     app.FromDate.Format("2006-01-02"),
		ToDate:       app.ToDate.Format("2006-01-02"),
		NewStatus:    string(app.Status),
		ActedBy:      approver.Name,
		Comment:      app.AdminComment,
		Recipients:   recipients,
		OccurredAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave_application",
		AggregateID:   strconv.FormatUint(uint64(app.ID), 10),
		EventType:     event.EventType,
		Topic:         events.LeaveNotificationTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// approverEmails collects the reporting manager (when resolvable) and all
// directors. Lookup failures degrade to fewer recipients, never an error.
func (s *service) approverEmails(ctx context.Context, emp *employee.Employee) []string {
	var out []string
	if emp.ReportingManager != "" {
		if mgr, err := s.employees.FindByRef(ctx, emp.ReportingManager); err == nil && mgr.Email != "" {
			out = append(out, mgr.Email)
		}
	}
	out = append(out, s.directorEmails(ctx)...)
	return out
}

func (s *service) directorEmails(ctx context.Context) []string {
	directors, err := s.employees.FindDirectors(ctx)
	if err != nil {
		s.logger.Warn("list directors for notification failed", zap.Error(err))
		return nil
	}
	var out []string
	for _, d := range directors {
		if d.Email != "" {
			out = append(out, d.Email)
		}
	}
	return out
}

// managesEmployee reports whether the approver is the employee's recorded
// reporting manager. The stored reference may be an internal id, a
// usercode or a display name.
func managesEmployee(approver, emp employee.Employee) bool {
	ref := strings.TrimSpace(emp.ReportingManager)
	if ref == "" {
		return false
	}
	if ref == strconv.FormatUint(uint64(approver.ID), 10) {
		return true
	}
	return strings.EqualFold(ref, approver.Usercode) || strings.EqualFold(ref, approver.Name)
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func parseDateRange(fromRaw, toRaw string, halfDay bool) (from, to time.Time, err error) {
	from, err = parseDate(fromRaw)
	if err != nil {
		return
	}
	to, err = parseDate(toRaw)
	if err != nil {
		return
	}
	if halfDay {
		// Half-day requests always collapse to the start date.
		to = from
	}
	if from.After(to) {
		err = leaveerrors.ErrInvalidDateRange
	}
	return
}
