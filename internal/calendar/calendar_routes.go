package calendar

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
	holidays := r.Group("/holidays")
	holidays.Use(auth, middleware.ExtractUserID(), middleware.ContextLogger(logger))
	{
		holidays.GET("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceHoliday, rbac.ActionRead),
			handler.ListHolidays,
		)
		holidays.POST("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceHoliday, rbac.ActionManage),
			handler.DeclareHoliday,
		)
		holidays.DELETE("/:id",
			middleware.RBACAuthorize(rbacService, rbac.ResourceHoliday, rbac.ActionManage),
			handler.RemoveHoliday,
		)
	}

	leaves := r.Group("/leaves")
	leaves.Use(auth, middleware.ExtractUserID(), middleware.ContextLogger(logger))
	{
		leaves.GET("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead),
			handler.ListLeaves,
		)
		leaves.POST("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionManage),
			handler.GrantLeave,
		)
		leaves.DELETE("/:id",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionManage),
			handler.RevokeLeave,
		)
	}
}
