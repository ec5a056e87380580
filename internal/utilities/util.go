// Package utilities contain utility code that use across the package
package utilities

import (
	"errors"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/Lavodnos/stafflink/internal/model"
)

// AuthContextKey is the gin context key holding the resolved AuthContext
const AuthContextKey = "auth_context"

// ErrorResponse type for swagger docs
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageResponse type for swagger docs
type MessageResponse struct {
	Message string `json:"message"`
}

// ExtractAuth extracts the resolved AuthContext from Gin context.
// Returns an error when the middleware did not attach one.
func ExtractAuth(c *gin.Context) (model.AuthContext, error) {
	v, ok := c.Get(AuthContextKey)
	if !ok {
		return model.AuthContext{}, errors.New("auth context not provided")
	}

	auth, ok := v.(model.AuthContext)
	if !ok {
		return model.AuthContext{}, errors.New("failed to assert auth context type")
	}
	return auth, nil
}

// MergeNonEmpty help merge struct with non-empty field
func MergeNonEmpty(dst, src interface{}) {
	dv := reflect.ValueOf(dst).Elem()
	sv := reflect.ValueOf(src).Elem()

	for i := 0; i < sv.NumField(); i++ {
		sf := sv.Field(i)
		if !sf.IsZero() {
			df := dv.FieldByName(sv.Type().Field(i).Name)
			if df.IsValid() && df.CanSet() {
				df.Set(sf)
			}
		}
	}
}
