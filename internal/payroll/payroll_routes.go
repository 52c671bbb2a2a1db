package payroll

import (
	"go-attendance/internal/middleware"
	"go-attendance/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	auth gin.HandlerFunc,
	rdb redis.Cmdable,
	logger *zap.Logger,
) {
	payrolls := r.Group("/payrolls")
	payrolls.Use(auth, middleware.ExtractUserID(), middleware.ContextLogger(logger))
	{
		payrolls.GET("",
			middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionRead),
			handler.GetReports,
		)
		payrolls.POST("/generate",
			middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionManage),
			middleware.Idempotency(rdb),
			handler.Generate,
		)
		payrolls.POST("/unlock",
			middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionManage),
			handler.Unlock,
		)
		payrolls.POST("/reset",
			middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionManage),
			handler.Reset,
		)
	}
}
