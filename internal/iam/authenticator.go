package iam

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/Lavodnos/stafflink/internal/model"
)

// ErrInactiveToken is returned when introspection reports the token as not active.
var ErrInactiveToken = errors.New("invalid or expired token")

// Authenticator resolves an access token into an AuthContext, following the
// permission fallback chain: introspection payload, app-scoped entry,
// Directory lookup with the cached service token.
type Authenticator struct {
	Client       *Client
	ServiceToken *ServiceTokenCache
}

// NewAuthenticator builds an Authenticator sharing one Client.
func NewAuthenticator(client *Client) *Authenticator {
	return &Authenticator{
		Client:       client,
		ServiceToken: NewServiceTokenCache(client),
	}
}

// Authenticate introspects the token and resolves its permission set.
// The raw introspection payload is returned alongside for session endpoints.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (model.AuthContext, map[string]interface{}, error) {
	payload, err := a.Client.Introspect(ctx, token)
	if err != nil {
		return model.AuthContext{}, nil, err
	}
	if active, _ := payload["active"].(bool); !active {
		return model.AuthContext{}, payload, ErrInactiveToken
	}

	perms := normalizePermissionList(firstOf(payload, "permissions", "perms"))
	if len(perms) == 0 {
		perms = a.extractAppPermissions(payload["applications"])
	}
	if len(perms) == 0 {
		perms = a.fetchDirectoryPermissions(ctx, token, payload)
	}

	auth := model.AuthContext{
		UserID:      userIDFromPayload(payload),
		UserName:    userNameFromPayload(payload),
		Permissions: model.NewPermissionSet(perms),
	}
	return auth, payload, nil
}

// extractAppPermissions collects permissions from the applications section,
// keeping only the entry matching the configured app id (or all entries when
// no app id is configured).
func (a *Authenticator) extractAppPermissions(raw interface{}) []string {
	apps, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	appID := strings.ToLower(a.Client.AppID)

	var collected []string
	for _, entry := range apps {
		app, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		candidate := coerceName(firstOf(app, "id", "app_id", "application_id", "application"))
		if appID != "" && candidate != appID {
			continue
		}

		collected = append(collected, normalizePermissionList(firstOf(app, "permissions", "perms"))...)

		// permissions may also live inside each role entry
		if roles, ok := app["roles"].([]interface{}); ok {
			for _, rawRole := range roles {
				role, ok := rawRole.(map[string]interface{})
				if !ok {
					continue
				}
				collected = append(collected, normalizePermissionList(firstOf(role, "permissions", "perms"))...)
			}
		}
	}
	return collected
}

// fetchDirectoryPermissions queries IAM Directory as last resort. A 401 from
// Directory clears the cached service token and retries exactly once.
func (a *Authenticator) fetchDirectoryPermissions(ctx context.Context, userToken string, payload map[string]interface{}) []string {
	userID := userIDFromPayload(payload)
	if userID == "" {
		return nil
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil
	}

	token := a.ServiceToken.Get(ctx)
	if token == "" {
		token = userToken
	}

	data, err := a.Client.GetUserRoles(ctx, userID, token)
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) && svcErr.StatusCode == 401 {
			a.ServiceToken.Clear()
			retryToken := a.ServiceToken.Get(ctx)
			if retryToken == "" {
				retryToken = userToken
			}
			data, err = a.Client.GetUserRoles(ctx, userID, retryToken)
		}
		if err != nil {
			log.Printf("iam: directory roles lookup failed for user %s: %v", userID, err)
			return nil
		}
	}

	if perms := a.extractAppPermissions(data["applications"]); len(perms) > 0 {
		return perms
	}
	return normalizePermissionList(firstOf(data, "permissions", "perms"))
}

func userIDFromPayload(payload map[string]interface{}) string {
	if sub, ok := payload["sub"].(string); ok && sub != "" {
		return sub
	}
	if user, ok := payload["user"].(map[string]interface{}); ok {
		if id, ok := user["id"].(string); ok {
			return id
		}
	}
	return ""
}

func userNameFromPayload(payload map[string]interface{}) string {
	user, ok := payload["user"].(map[string]interface{})
	if !ok {
		return ""
	}
	first, _ := user["first_name"].(string)
	last, _ := user["last_name"].(string)
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		name, _ = user["email"].(string)
	}
	return name
}

// normalizePermissionList accepts lists of strings or dicts carrying a name
// and normalizes them to lower-cased strings.
func normalizePermissionList(raw interface{}) []string {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var perms []string
	for _, item := range items {
		if name := coerceName(item); name != "" {
			perms = append(perms, name)
		}
	}
	return perms
}

func coerceName(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case map[string]interface{}:
		for _, key := range []string{"name", "permission", "code"} {
			if s, ok := v[key].(string); ok && s != "" {
				return strings.ToLower(strings.TrimSpace(s))
			}
		}
	}
	return ""
}

func firstOf(m map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}
