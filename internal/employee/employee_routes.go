package employee

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
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("", middleware.RBACAuthorize(rbacService, "employee", "write"), handler.GetAll)
		employees.GET("/:ref", handler.GetByRef)
		employees.POST("", middleware.RBACAuthorize(rbacService, "employee", "write"), handler.Create)
		employees.PUT("/:ref", middleware.RBACAuthorize(rbacService, "employee", "write"), handler.Update)
		employees.DELETE("/:ref", middleware.RBACAuthorize(rbacService, "employee", "write"), handler.Deactivate)
	}
}
