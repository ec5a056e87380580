// Package middleware contain utilities middleware code
package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Lavodnos/stafflink/internal/iam"
	"github.com/Lavodnos/stafflink/internal/model"
	"github.com/Lavodnos/stafflink/internal/utilities"
)

// Debug identity headers, honored only outside release mode (or when
// STAFFLINK_ALLOW_DEBUG_HEADERS is set). They let local tooling and tests
// impersonate a back-office user without a live IAM.
const (
	DebugUserIDHeader      = "X-Stafflink-User-Id"
	DebugUserNameHeader    = "X-Stafflink-User-Name"
	DebugPermissionsHeader = "X-Stafflink-Permissions"
)

func debugHeadersAllowed() bool {
	if os.Getenv("STAFFLINK_ALLOW_DEBUG_HEADERS") != "" {
		return true
	}
	return gin.Mode() != gin.ReleaseMode
}

// RequireAuth validates the request's access token against IAM and attaches
// the resolved AuthContext to the gin context.
func RequireAuth(authenticator *iam.Authenticator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if debugHeadersAllowed() {
			if userID := ctx.GetHeader(DebugUserIDHeader); userID != "" {
				perms := strings.Split(ctx.GetHeader(DebugPermissionsHeader), ",")
				ctx.Set(utilities.AuthContextKey, model.AuthContext{
					UserID:      userID,
					UserName:    ctx.GetHeader(DebugUserNameHeader),
					Permissions: model.NewPermissionSet(perms),
				})
				ctx.Next()
				return
			}
		}

		tokenString, err := utilities.ExtractAccessToken(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: err.Error(),
			})
			return
		}

		auth, _, err := authenticator.Authenticate(ctx.Request.Context(), tokenString)
		if err != nil {
			abortForIAMError(ctx, err)
			return
		}

		ctx.Set(utilities.AuthContextKey, auth)
		ctx.Next()
	}
}

// abortForIAMError maps authentication failures onto HTTP statuses: expired
// or revoked tokens are 401, an unreachable IAM is 503, anything else IAM
// reports is relayed as 502.
func abortForIAMError(ctx *gin.Context, err error) {
	if errors.Is(err, iam.ErrInactiveToken) {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Invalid or expired access token",
		})
		return
	}

	var unavailable *iam.UnavailableError
	if errors.As(err, &unavailable) {
		ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, utilities.ErrorResponse{
			Error:   iam.CodeUnavailable,
			Message: "The identity service is unreachable. Please try again later.",
		})
		return
	}

	var svcErr *iam.ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.StatusCode == http.StatusUnauthorized {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: "Invalid or expired access token",
			})
			return
		}
		ctx.AbortWithStatusJSON(http.StatusBadGateway, utilities.ErrorResponse{
			Error:   svcErr.Code,
			Message: svcErr.Message,
		})
		return
	}

	ctx.AbortWithStatusJSON(http.StatusInternalServerError, utilities.ErrorResponse{
		Error: "Failed to validate token: " + err.Error(),
	})
}
