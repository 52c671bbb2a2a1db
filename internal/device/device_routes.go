package device

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
	devices := r.Group("/devices")
	devices.Use(auth, middleware.ExtractUserID(), middleware.ContextLogger(logger))
	{
		devices.POST("/register",
			middleware.RequireEmployee(),
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, rbac.ResourceDevice, rbac.ActionSubmit),
			handler.Register,
		)
		devices.GET("/me",
			middleware.RequireEmployee(),
			middleware.RBACAuthorize(rbacService, rbac.ResourceDevice, rbac.ActionSubmit),
			handler.Me,
		)
		devices.POST("/:employee_id/reset",
			middleware.RBACAuthorize(rbacService, rbac.ResourceDevice, rbac.ActionReset),
			handler.Reset,
		)
	}
}
