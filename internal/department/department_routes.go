package department

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
	departments := r.Group("/departments")
	departments.Use(middleware.AuthMiddleware())
	{
		departments.GET("", handler.GetAll)
		departments.GET("/:id", handler.GetByID)
		departments.POST("", middleware.RBACAuthorize(rbacService, "organization", "write"), handler.Create)
		departments.PUT("/:id", middleware.RBACAuthorize(rbacService, "organization", "write"), handler.Update)
		departments.DELETE("/:id", middleware.RBACAuthorize(rbacService, "organization", "write"), handler.Delete)
	}
}
