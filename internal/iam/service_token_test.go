package iam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServiceTokenStaticWins(t *testing.T) {
	logins := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins++
		writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": "fresh"})
	}))
	defer srv.Close()

	cache := &ServiceTokenCache{
		client:      NewClient(srv.URL, "stafflink", 5*time.Second),
		staticToken: "static-token",
		user:        "svc",
		password:    "secret",
	}

	assert.Equal(t, "static-token", cache.Get(context.Background()))
	assert.Equal(t, 0, logins)
}

func TestServiceTokenCachedUntilCleared(t *testing.T) {
	logins := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins++
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": "fresh",
			"expires_in":   float64(3600),
		})
	}))
	defer srv.Close()

	cache := &ServiceTokenCache{
		client:   NewClient(srv.URL, "stafflink", 5*time.Second),
		user:     "svc",
		password: "secret",
	}

	assert.Equal(t, "fresh", cache.Get(context.Background()))
	assert.Equal(t, "fresh", cache.Get(context.Background()))
	assert.Equal(t, 1, logins)

	cache.Clear()
	assert.Equal(t, "fresh", cache.Get(context.Background()))
	assert.Equal(t, 2, logins)
}

func TestServiceTokenWithoutCredentials(t *testing.T) {
	cache := &ServiceTokenCache{client: NewClient("http://127.0.0.1:1", "stafflink", time.Second)}
	assert.Equal(t, "", cache.Get(context.Background()))
}

func TestServiceTokenLoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "INVALID_CREDENTIALS"})
	}))
	defer srv.Close()

	cache := &ServiceTokenCache{
		client:   NewClient(srv.URL, "stafflink", 5*time.Second),
		user:     "svc",
		password: "wrong",
	}
	assert.Equal(t, "", cache.Get(context.Background()))
}
