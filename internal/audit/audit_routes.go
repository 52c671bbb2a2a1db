package audit

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
	logs := r.Group("/audit-logs")
	logs.Use(auth, middleware.ExtractUserID(), middleware.ContextLogger(logger))
	{
		logs.GET("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceAudit, rbac.ActionRead),
			handler.List,
		)
		logs.GET("/verify",
			middleware.RBACAuthorize(rbacService, rbac.ResourceAudit, rbac.ActionRead),
			handler.Verify,
		)
	}
}
