package timesheet

import (
	"go-attendance/internal/middleware"
	"go-attendance/internal/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	auth gin.HandlerFunc,
	logger *zap.Logger,
) {
	timesheets := r.Group("/timesheets")
	timesheets.Use(auth, middleware.ExtractUserID(), middleware.ContextLogger(logger))
	{
		timesheets.GET("/me",
			middleware.RequireEmployee(),
			middleware.RBACAuthorize(rbacService, rbac.ResourceTimesheet, rbac.ActionReadOwn),
			handler.Me,
		)
		timesheets.GET("/:employee_id",
			middleware.RBACAuthorize(rbacService, rbac.ResourceTimesheet, rbac.ActionRead),
			handler.ByEmployee,
		)
	}
}
