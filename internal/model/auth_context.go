package model

import (
	"strings"

	"github.com/google/uuid"
)

// PermissionSet is a normalized (lower-cased) set of IAM permission names
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from raw permission names, trimming and
// lower-casing each entry and discarding blanks.
func NewPermissionSet(perms []string) PermissionSet {
	set := PermissionSet{}
	for _, p := range perms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}

// Has reports whether a single permission is present.
func (s PermissionSet) Has(perm string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(perm))]
	return ok
}

// HasAll reports whether every permission is present.
func (s PermissionSet) HasAll(perms ...string) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one permission is present.
func (s PermissionSet) HasAny(perms ...string) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// List returns the permissions as a slice, mainly for responses and logs.
func (s PermissionSet) List() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	return out
}

// AuthContext is the identity resolved once at request-authentication time
// and passed to handlers through the gin context.
type AuthContext struct {
	UserID      string        `json:"user_id"`
	UserName    string        `json:"user_name"`
	Permissions PermissionSet `json:"permissions"`
}

// UserUUID parses the IAM user id, returning nil when it is absent or not a
// UUID. Used for actor columns that accept null.
func (a AuthContext) UserUUID() *uuid.UUID {
	id, err := uuid.Parse(a.UserID)
	if err != nil {
		return nil
	}
	return &id
}
