package utilities

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
)

// AccessTokenCookieName is the cookie carrying the IAM access token
var AccessTokenCookieName = envOr("STAFFLINK_ACCESS_TOKEN_COOKIE_NAME", "stafflink_access_token")

// ExtractBearerToken reads the token from the Authorization header.
func ExtractBearerToken(c *gin.Context) (string, error) {

	const BearerSchema = "Bearer "
	authHeader := c.GetHeader("Authorization")

	if len(authHeader) <= len(BearerSchema) {
		return "", fmt.Errorf("invalid authorization header")
	}

	return authHeader[len(BearerSchema):], nil
}

// ExtractAccessToken reads the IAM token from the Authorization header first,
// falling back to the auth cookie.
func ExtractAccessToken(c *gin.Context) (string, error) {
	if token, err := ExtractBearerToken(c); err == nil {
		return token, nil
	}

	token, err := c.Cookie(AccessTokenCookieName)
	if err != nil || token == "" {
		return "", fmt.Errorf("missing bearer token or auth cookie")
	}
	return token, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
