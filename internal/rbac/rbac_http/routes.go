package rbac_http

import (
	"go-attendance/internal/domain"
	"go-attendance/internal/middleware"
	"go-attendance/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *rbac.Handler, auth gin.HandlerFunc) {
	group := r.Group("/rbac")
	group.Use(auth, middleware.ExtractUserID())
	{
		group.POST("/enforce", middleware.RoleMiddleware(domain.RoleAdmin), handler.Enforce)
		group.GET("/permissions/me", handler.MyPermissions)
	}
}
