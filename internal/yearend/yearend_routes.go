package yearend

import (
	"nia-hrms/internal/middleware"
	"nia-hrms/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	group := r.Group("/yearend")
	group.Use(middleware.AuthMiddleware())
	{
		group.POST("/run", middleware.RBACAuthorize(rbacService, "yearend", "run"), handler.Run)
	}
}
