package attendance

import (
	"go-attendance/internal/middleware"
	"go-attendance/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	auth gin.HandlerFunc,
	rdb redis.Cmdable,
	checkInRate rate.Limit,
	logger *zap.Logger,
) {
	if checkInRate <= 0 {
		checkInRate = 1
	}
	attendances := r.Group("/attendances")
	attendances.Use(auth, middleware.ExtractUserID(), middleware.ContextLogger(logger))
	{
		submit := []gin.HandlerFunc{
			middleware.RequireEmployee(),
			middleware.RateLimitByUser(checkInRate, 3),
			middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionSubmit),
		}
		attendances.POST("/check-in", append(submit, handler.CheckIn)...)
		attendances.POST("/check-out", append(submit, handler.CheckOut)...)

		attendances.GET("/:employee_id/events",
			middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionRead),
			handler.ListDay,
		)
		attendances.POST("/manual",
			middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionManage),
			middleware.Idempotency(rdb),
			handler.AddManual,
		)
		attendances.PATCH("/events/:id",
			middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionManage),
			handler.Correct,
		)
		attendances.DELETE("/events/:id",
			middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionManage),
			handler.Delete,
		)
	}
}
