package designation

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
	designations := r.Group("/designations")
	designations.Use(middleware.AuthMiddleware())
	{
		designations.GET("", handler.GetAll)
		designations.GET("/:id", handler.GetByID)
		designations.POST("", middleware.RBACAuthorize(rbacService, "organization", "write"), handler.Create)
		designations.PUT("/:id", middleware.RBACAuthorize(rbacService, "organization", "write"), handler.Update)
		designations.DELETE("/:id", middleware.RBACAuthorize(rbacService, "organization", "write"), handler.Delete)
	}
}
