package iam

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestAuthenticator(baseURL string) *Authenticator {
	client := NewClient(baseURL, "stafflink", 5*time.Second)
	return &Authenticator{
		Client:       client,
		ServiceToken: &ServiceTokenCache{client: client},
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAuthenticatePermissionsFromPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/introspect", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"active":      true,
			"sub":         "0d4cda88-9d2f-4bd9-b9ae-3f2f8f2f9a10",
			"permissions": []string{"Links.Read_All", "verification.decide"},
		})
	}))
	defer srv.Close()

	auth, payload, err := newTestAuthenticator(srv.URL).Authenticate(context.Background(), "tok")
	assert.NoError(t, err)
	assert.Equal(t, "0d4cda88-9d2f-4bd9-b9ae-3f2f8f2f9a10", auth.UserID)
	assert.True(t, auth.Permissions.Has("links.read_all"))
	assert.True(t, auth.Permissions.Has("verification.decide"))
	assert.Equal(t, true, payload["active"])
}

func TestAuthenticateAppScopedFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"active": true,
			"sub":    "0d4cda88-9d2f-4bd9-b9ae-3f2f8f2f9a10",
			"applications": []interface{}{
				map[string]interface{}{
					"id":          "other-app",
					"permissions": []string{"other.perm"},
				},
				map[string]interface{}{
					"id":          "Stafflink",
					"permissions": []string{"campaigns.read"},
					"roles": []interface{}{
						map[string]interface{}{
							"name": "reviewer",
							"permissions": []interface{}{
								map[string]interface{}{"name": "verification.decide"},
							},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	auth, _, err := newTestAuthenticator(srv.URL).Authenticate(context.Background(), "tok")
	assert.NoError(t, err)
	assert.True(t, auth.Permissions.Has("campaigns.read"))
	assert.True(t, auth.Permissions.Has("verification.decide"))
	assert.False(t, auth.Permissions.Has("other.perm"))
}

func TestAuthenticateDirectoryFallback(t *testing.T) {
	const userID = "0d4cda88-9d2f-4bd9-b9ae-3f2f8f2f9a10"
	directoryCalls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/introspect", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"active": true, "sub": userID})
	})
	mux.HandleFunc("/directory/users/"+userID+"/roles", func(w http.ResponseWriter, r *http.Request) {
		directoryCalls++
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"permissions": []string{"exports.create"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := newTestAuthenticator(srv.URL)
	a.ServiceToken.staticToken = "svc-token"

	auth, _, err := a.Authenticate(context.Background(), "tok")
	assert.NoError(t, err)
	assert.Equal(t, 1, directoryCalls)
	assert.True(t, auth.Permissions.Has("exports.create"))
}

func TestAuthenticateDirectoryRetriesOnceOn401(t *testing.T) {
	const userID = "0d4cda88-9d2f-4bd9-b9ae-3f2f8f2f9a10"
	directoryCalls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/introspect", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"active": true, "sub": userID})
	})
	mux.HandleFunc("/directory/users/"+userID+"/roles", func(w http.ResponseWriter, r *http.Request) {
		directoryCalls++
		if directoryCalls == 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "INVALID_TOKEN"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"permissions": []string{"blacklist.manage"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := newTestAuthenticator(srv.URL)
	a.ServiceToken.staticToken = "svc-token"

	auth, _, err := a.Authenticate(context.Background(), "tok")
	assert.NoError(t, err)
	assert.Equal(t, 2, directoryCalls)
	assert.True(t, auth.Permissions.Has("blacklist.manage"))
}

func TestAuthenticateInactiveToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"active": false})
	}))
	defer srv.Close()

	_, _, err := newTestAuthenticator(srv.URL).Authenticate(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInactiveToken)
}

func TestAuthenticateUnavailable(t *testing.T) {
	// nothing listens on this port
	_, _, err := newTestAuthenticator("http://127.0.0.1:1").Authenticate(context.Background(), "tok")

	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestAuthenticateServiceErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"detail": map[string]interface{}{
				"error":   "SESSION_ALREADY_ACTIVE",
				"message": "There is already an active session for this user.",
			},
		})
	}))
	defer srv.Close()

	_, _, err := newTestAuthenticator(srv.URL).Authenticate(context.Background(), "tok")

	var svcErr *ServiceError
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
	assert.Equal(t, "SESSION_ALREADY_ACTIVE", svcErr.Code)
	assert.Equal(t, "There is already an active session for this user.", svcErr.Message)
}
