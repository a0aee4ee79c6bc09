package yearend

import (
	"net/http"

	"nia-hrms/internal/shared/apperror"
	"nia-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("yearend.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("yearend.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) Run(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	summary, err := h.service.Run(c.Request.Context(), req.TargetYear)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("year-end run failed",
			zap.Int("target_year", req.TargetYear),
			zap.Int("status", httpErr.Status),
			zap.String("code", httpErr.Code),
		)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusOK, summary)
}
