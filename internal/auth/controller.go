// Package auth proxies login, logout and session checks to the IAM service.
package auth

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Lavodnos/stafflink/internal/iam"
	"github.com/Lavodnos/stafflink/internal/utilities"
)

// AuthController exposes the authentication endpoints backed by IAM.
type AuthController struct {
	Authenticator *iam.Authenticator
}

// NewAuthController creates a new instance of AuthController.
func NewAuthController(authenticator *iam.Authenticator) *AuthController {
	return &AuthController{Authenticator: authenticator}
}

type loginInfo struct {
	UsernameOrEmail string `json:"username_or_email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	CaptchaToken    string `json:"captcha_token"`
	Force           bool   `json:"force"`
}

type sessionInfo struct {
	Token string `json:"token" binding:"required"`
}

// LoginHandler forwards credentials to IAM and, on success, mirrors the
// access token into an http-only cookie for browser clients.
// @Summary Log in through the identity service
// @Description Forwards credentials to IAM. Setting force to true closes any session already open for this user.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body loginInfo true "Credentials for login"
// @Success 200 {object} map[string]interface{} "IAM login payload including access_token"
// @Failure 400 {object} utilities.ErrorResponse "Credentials not provided"
// @Failure 401 {object} utilities.ErrorResponse "Credentials rejected"
// @Failure 409 {object} utilities.ErrorResponse "A session is already active for this user"
// @Failure 502 {object} utilities.ErrorResponse "Unexpected identity service error"
// @Failure 503 {object} utilities.ErrorResponse "Identity service unreachable"
// @Router /auth/login [post]
func (ac *AuthController) LoginHandler(c *gin.Context) {
	var info loginInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username (or email) and password must be provided",
		})
		return
	}

	payload, err := ac.Authenticator.Client.Login(c.Request.Context(), iam.LoginParams{
		UsernameOrEmail: info.UsernameOrEmail,
		Password:        info.Password,
		CaptchaToken:    info.CaptchaToken,
		Force:           info.Force,
	})
	if err != nil {
		respondLoginError(c, err)
		return
	}

	if token, ok := payload["access_token"].(string); ok && token != "" {
		setAccessCookie(c, token, cookieMaxAge(payload))
	}
	c.JSON(http.StatusOK, payload)
}

// LogoutHandler closes the IAM session and clears the access cookie.
// @Summary Log out from the identity service
// @Tags Auth
// @Produce json
// @Param Authorization header string false "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} utilities.MessageResponse "Successfully logged out"
// @Failure 401 {object} utilities.ErrorResponse "No access token on the request"
// @Failure 503 {object} utilities.ErrorResponse "Identity service unreachable"
// @Router /auth/logout [post]
func (ac *AuthController) LogoutHandler(c *gin.Context) {
	token, err := utilities.ExtractAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if err := ac.Authenticator.Client.Logout(c.Request.Context(), token); err != nil {
		var unavailable *iam.UnavailableError
		if errors.As(err, &unavailable) {
			c.JSON(http.StatusServiceUnavailable, utilities.ErrorResponse{
				Error:   iam.CodeUnavailable,
				Message: "The identity service is unreachable. Please try again later.",
			})
			return
		}
		// An already-dead session still counts as logged out
	}

	setAccessCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// SessionHandler reports whether the cookie-held session is still active.
// An inactive session clears the cookie so the browser stops sending it.
// @Summary Check the current cookie session
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Introspection payload with resolved permissions"
// @Failure 401 {object} utilities.ErrorResponse "No session or session expired"
// @Failure 503 {object} utilities.ErrorResponse "Identity service unreachable"
// @Router /auth/session [get]
func (ac *AuthController) SessionHandler(c *gin.Context) {
	token, err := utilities.ExtractAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: "No active session"})
		return
	}
	ac.introspectSession(c, token, true)
}

// SessionCheckHandler validates a token passed in the body, for non-browser
// clients that hold the token themselves.
// @Summary Check an explicit access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body sessionInfo true "Token to check"
// @Success 200 {object} map[string]interface{} "Introspection payload with resolved permissions"
// @Failure 400 {object} utilities.ErrorResponse "Token not provided"
// @Failure 401 {object} utilities.ErrorResponse "Token inactive"
// @Failure 503 {object} utilities.ErrorResponse "Identity service unreachable"
// @Router /auth/session [post]
func (ac *AuthController) SessionCheckHandler(c *gin.Context) {
	var info sessionInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Token must be provided"})
		return
	}
	ac.introspectSession(c, info.Token, false)
}

func (ac *AuthController) introspectSession(c *gin.Context, token string, clearCookie bool) {
	auth, payload, err := ac.Authenticator.Authenticate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, iam.ErrInactiveToken) {
			if clearCookie {
				setAccessCookie(c, "", -1)
			}
			c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: "Session is no longer active"})
			return
		}
		var unavailable *iam.UnavailableError
		if errors.As(err, &unavailable) {
			c.JSON(http.StatusServiceUnavailable, utilities.ErrorResponse{
				Error:   iam.CodeUnavailable,
				Message: "The identity service is unreachable. Please try again later.",
			})
			return
		}
		c.JSON(http.StatusBadGateway, utilities.ErrorResponse{
			Error:   iam.CodeServiceError,
			Message: err.Error(),
		})
		return
	}

	payload["user_id"] = auth.UserID
	payload["user_name"] = auth.UserName
	payload["permissions"] = auth.Permissions.List()
	c.JSON(http.StatusOK, payload)
}

// respondLoginError translates IAM login failures into stable messages so the
// frontend does not have to know IAM's error vocabulary.
func respondLoginError(c *gin.Context, err error) {
	var unavailable *iam.UnavailableError
	if errors.As(err, &unavailable) {
		c.JSON(http.StatusServiceUnavailable, utilities.ErrorResponse{
			Error:   iam.CodeUnavailable,
			Message: "The identity service is unreachable. Please try again later.",
		})
		return
	}

	var svcErr *iam.ServiceError
	if errors.As(err, &svcErr) {
		switch {
		case strings.EqualFold(svcErr.Code, "SESSION_ALREADY_ACTIVE"):
			c.JSON(http.StatusConflict, utilities.ErrorResponse{
				Error:   svcErr.Code,
				Message: "A session is already open for this user. Retry with force to close it.",
			})
		case svcErr.StatusCode == http.StatusUnauthorized || svcErr.StatusCode == http.StatusBadRequest:
			c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error:   svcErr.Code,
				Message: "Username or password is incorrect",
			})
		default:
			c.JSON(http.StatusBadGateway, utilities.ErrorResponse{
				Error:   svcErr.Code,
				Message: svcErr.Message,
			})
		}
		return
	}

	c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
}

func setAccessCookie(c *gin.Context, token string, maxAge int) {
	secure := gin.Mode() == gin.ReleaseMode
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utilities.AccessTokenCookieName, token, maxAge, "/", os.Getenv("STAFFLINK_COOKIE_DOMAIN"), secure, true)
}

// cookieMaxAge mirrors IAM's expires_in, defaulting to eight hours.
func cookieMaxAge(payload map[string]interface{}) int {
	if secs, ok := payload["expires_in"].(float64); ok && secs > 0 {
		return int(secs)
	}
	if raw, ok := payload["expires_in"].(string); ok {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			return secs
		}
	}
	return 8 * 60 * 60
}
