package iam

import (
	"context"
	"log"
	"os"
	"sync"
	"time"
)

// renewMargin forces a refresh when the cached token is about to expire.
const renewMargin = 90 * time.Second

// defaultTokenTTL is assumed when IAM omits expires_in.
const defaultTokenTTL = 5 * time.Minute

// ServiceTokenCache holds the backend's own IAM credential used for Directory
// lookups. The token is fetched lazily, cached until close to expiry, and can
// be invalidated when IAM rejects it.
type ServiceTokenCache struct {
	client *Client

	staticToken string
	user        string
	password    string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewServiceTokenCache wires the cache to a Client using the
// IAM_SERVICE_TOKEN / IAM_SERVICE_USER / IAM_SERVICE_PASSWORD environment
// variables. A static token, when set, always wins.
func NewServiceTokenCache(client *Client) *ServiceTokenCache {
	return &ServiceTokenCache{
		client:      client,
		staticToken: os.Getenv("IAM_SERVICE_TOKEN"),
		user:        os.Getenv("IAM_SERVICE_USER"),
		password:    os.Getenv("IAM_SERVICE_PASSWORD"),
	}
}

// Get returns a token usable against IAM Directory, refreshing the cached one
// when needed. It returns an empty string when no service credential is
// configured, signalling the caller to fall back to the user token.
func (s *ServiceTokenCache) Get(ctx context.Context) string {
	if s.staticToken != "" {
		return s.staticToken
	}
	if s.user == "" || s.password == "" {
		return ""
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && now.Before(s.expiresAt.Add(-renewMargin)) {
		return s.token
	}

	// force=true avoids SESSION_ALREADY_ACTIVE when the service account is reused
	resp, err := s.client.Login(ctx, LoginParams{
		UsernameOrEmail: s.user,
		Password:        s.password,
		Force:           true,
	})
	if err != nil {
		log.Printf("iam: service token login failed, falling back to user token: %v", err)
		return ""
	}

	token, _ := resp["access_token"].(string)
	if token == "" {
		return ""
	}

	ttl := defaultTokenTTL
	if secs, ok := resp["expires_in"].(float64); ok && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}

	s.token = token
	s.expiresAt = now.Add(ttl)
	return token
}

// Clear drops the cached token. Called after a 401 from IAM Directory.
func (s *ServiceTokenCache) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}
