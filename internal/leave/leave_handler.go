package leave

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"nia-hrms/internal/shared/apperror"
	"nia-hrms/internal/shared/contextutil"
	"nia-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Apply(c *gin.Context) {
	var req ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.Apply(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) Balance(c *gin.Context) {
	var asOf time.Time
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput,
				"invalid as_of format, expected YYYY-MM-DD", nil)
			return
		}
		asOf = parsed
	}

	resp, err := h.service.Balance(c.Request.Context(), c.Param("ref"), asOf)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) History(c *gin.Context) {
	month := time.Now().UTC()
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput,
				"invalid month format, expected YYYY-MM", nil)
			return
		}
		month = parsed
	}

	resp, err := h.service.History(c.Request.Context(), c.Param("ref"), month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Pending lists applications awaiting the authenticated approver.
func (h *Handler) Pending(c *gin.Context) {
	approver := contextutil.GetActorCode(c.Request.Context())

	resp, err := h.service.PendingApprovals(c.Request.Context(), approver)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Transition(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput,
			"leave id must be numeric", nil)
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	approver := contextutil.GetActorCode(c.Request.Context())
	resp, err := h.service.Transition(c.Request.Context(), uint(id), approver, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Report(c *gin.Context) {
	req, ok := h.bindReport(c)
	if !ok {
		return
	}

	rows, err := h.service.Report(c.Request.Context(), contextutil.GetActorCode(c.Request.Context()), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rows)
}

// ReportExport streams the same projection as Report as a CSV download.
func (h *Handler) ReportExport(c *gin.Context) {
	req, ok := h.bindReport(c)
	if !ok {
		return
	}

	rows, err := h.service.Report(c.Request.Context(), contextutil.GetActorCode(c.Request.Context()), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="leave_report.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	header := []string{
		"Employee ID", "Employee Name", "Department", "Leave Type",
		"From Date", "To Date", "Days", "Status", "Applied On", "Reason", "Approved By",
	}
	if err := w.Write(header); err != nil {
		h.logger.Error("write report csv header failed", zap.Error(err))
		return
	}
	for _, row := range rows {
		record := []string{
			row.Usercode, row.EmployeeName, row.Department, row.LeaveType,
			row.FromDate, row.ToDate, row.Days.String(), row.Status,
			row.AppliedOn, row.Reason, row.ApprovedBy,
		}
		if err := w.Write(record); err != nil {
			h.logger.Error("write report csv row failed", zap.Error(err))
			return
		}
	}
	w.Flush()
}

func (h *Handler) bindReport(c *gin.Context) (ReportRequest, bool) {
	var req ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return ReportRequest{}, false
	}
	return req, true
}
