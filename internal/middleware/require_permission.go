package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lavodnos/stafflink/internal/utilities"
)

// PermissionMode selects how a permission list is evaluated.
type PermissionMode int

const (
	// PermissionsAll requires every listed permission.
	PermissionsAll PermissionMode = iota
	// PermissionsAny requires at least one listed permission.
	PermissionsAny
)

// RequirePermissions protects an endpoint behind the resolved AuthContext.
// Must run after RequireAuth.
func RequirePermissions(mode PermissionMode, perms ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		auth, err := utilities.ExtractAuth(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: err.Error(),
			})
			return
		}

		allowed := auth.Permissions.HasAll(perms...)
		if mode == PermissionsAny {
			allowed = auth.Permissions.HasAny(perms...)
		}
		if !allowed {
			ctx.AbortWithStatusJSON(http.StatusForbidden, utilities.ErrorResponse{
				Error: "User doesn't have permission to access",
			})
			return
		}
		ctx.Next()
	}
}
