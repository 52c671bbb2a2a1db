package middleware

import (
	"net/http"

	"go-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
)

func ExtractUserID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, exists := ctx.Get("user_id")
		if !exists {
			response.Error(ctx, http.StatusUnauthorized, "UNAUTHORIZED", "User is not authenticated", nil)
			ctx.Abort()
			return
		}

		userIDStr, ok := userID.(string)
		if !ok || userIDStr == "" {
			response.Error(ctx, http.StatusUnauthorized, "INVALID_USER_ID", "Invalid user_id", nil)
			ctx.Abort()
			return
		}

		ctx.Set("user_id_validated", userIDStr)
		ctx.Next()
	}
}

// RequireEmployee rejects tokens that are not bound to an employee record.
func RequireEmployee() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetString("employee_id") == "" {
			response.Error(ctx, http.StatusForbidden, "FORBIDDEN", "Token is not linked to an employee", nil)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
