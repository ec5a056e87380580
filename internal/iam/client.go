// Package iam proxies authentication calls to the external IAM service and
// resolves the permission set attached to an access token.
package iam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
)

// Client is a thin HTTP wrapper over the IAM endpoints used by Stafflink.
type Client struct {
	BaseURL string
	AppID   string
	HTTP    *http.Client
}

// NewClient constructs a Client for the given IAM deployment.
func NewClient(baseURL, appID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		AppID:   appID,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// NewClientFromEnv builds a Client from IAM_BASE_URL, IAM_APP_ID and
// IAM_TIMEOUT_SECONDS environment variables.
func NewClientFromEnv() *Client {
	timeout := 10 * time.Second
	if raw := os.Getenv("IAM_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	return NewClient(os.Getenv("IAM_BASE_URL"), os.Getenv("IAM_APP_ID"), timeout)
}

// LoginParams are the credentials forwarded to the IAM login endpoint.
type LoginParams struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
	CaptchaToken    string `json:"captcha_token,omitempty"`
	Force           bool   `json:"force"`
	AppID           string `json:"app_id"`
}

// Login forwards credentials to IAM and returns the raw response payload.
func (c *Client) Login(ctx context.Context, params LoginParams) (map[string]interface{}, error) {
	if params.AppID == "" {
		params.AppID = c.AppID
	}
	return c.doJSON(ctx, http.MethodPost, "auth/login", params, nil)
}

// Logout invalidates an IAM session through the logout endpoint.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "auth/logout", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	return err
}

// Introspect asks IAM whether the given token is still active.
// Some IAM deployments require the app_id to return app-scoped permissions.
func (c *Client) Introspect(ctx context.Context, token string) (map[string]interface{}, error) {
	return c.doJSON(ctx, http.MethodPost, "auth/introspect", map[string]interface{}{
		"token":  token,
		"app_id": c.AppID,
	}, nil)
}

// GetUserRoles fetches roles/permissions for a user from the IAM Directory.
// Used as fallback when introspection carries no permissions.
func (c *Client) GetUserRoles(ctx context.Context, userID, token string) (map[string]interface{}, error) {
	if token == "" {
		return nil, fmt.Errorf("token required to query directory")
	}
	return c.doJSON(ctx, http.MethodGet, "directory/users/"+userID+"/roles", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload interface{}, headers map[string]string) (map[string]interface{}, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+"/"+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &UnavailableError{Reason: err}
	}
	defer resp.Body.Close()

	var data map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		// A non-JSON body is tolerated; the status code still decides.
		_ = json.Unmarshal(raw, &data)
	}

	if resp.StatusCode >= 400 {
		return nil, newServiceError(resp.StatusCode, data)
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	return data, nil
}

func newServiceError(statusCode int, data map[string]interface{}) *ServiceError {
	detail := data
	if inner, ok := data["detail"].(map[string]interface{}); ok {
		detail = inner
	}

	svcErr := &ServiceError{
		StatusCode: statusCode,
		Code:       CodeServiceError,
		Message:    "The identity service responded with an unexpected error.",
		Detail:     detail,
	}
	if code, ok := detail["error"].(string); ok && code != "" {
		svcErr.Code = code
	}
	if msg, ok := detail["message"].(string); ok && msg != "" {
		svcErr.Message = msg
	}
	return svcErr
}
