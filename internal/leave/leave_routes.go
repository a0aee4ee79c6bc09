package leave

import (
	"nia-hrms/internal/middleware"
	"nia-hrms/internal/rbac"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("",
			middleware.RBACAuthorize(rbacService, "leave", "create"),
			middleware.RateLimitByEmployee(rate.Limit(1), 5),
			handler.Apply,
		)
		leaves.GET("/balance/:ref", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.Balance)
		leaves.GET("/history/:ref", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.History)
		leaves.GET("/pending", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.Pending)
		leaves.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.Transition)
		leaves.GET("/report", middleware.RBACAuthorize(rbacService, "report", "read"), handler.Report)
		leaves.GET("/report/export", middleware.RBACAuthorize(rbacService, "report", "read"), handler.ReportExport)
	}
}
