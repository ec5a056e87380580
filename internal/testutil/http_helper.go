// Package testutil provides utility functions for testing HTTP handlers.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Lavodnos/stafflink/internal/middleware"
	"github.com/Lavodnos/stafflink/internal/model"
)

// TestIdentity impersonates a back-office user through the debug headers,
// which RequireAuth honors outside release mode.
type TestIdentity struct {
	UserID      string
	UserName    string
	Permissions []string
}

func (i TestIdentity) apply(req *http.Request) {
	if i.UserID == "" {
		return
	}
	req.Header.Set(middleware.DebugUserIDHeader, i.UserID)
	req.Header.Set(middleware.DebugUserNameHeader, i.UserName)
	req.Header.Set(middleware.DebugPermissionsHeader, strings.Join(i.Permissions, ","))
}

// MakeJSONRequest is a helper function for making JSON requests in tests
func MakeJSONRequest(body gin.H, identity TestIdentity, r *gin.Engine, endpoint string, method string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}

	req, _ := http.NewRequest(method, endpoint, reader)
	req.Header.Set("Content-Type", "application/json")
	identity.apply(req)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	return rec, resp
}

// MakeListRequest performs a GET and decodes an array response body.
func MakeListRequest(identity TestIdentity, r *gin.Engine, endpoint string) (*httptest.ResponseRecorder, []map[string]interface{}) {
	req, _ := http.NewRequest(http.MethodGet, endpoint, nil)
	identity.apply(req)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := []map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	return rec, resp
}

// MakeUploadRequest posts a multipart form with one file field and extra
// string fields.
func MakeUploadRequest(identity TestIdentity, r *gin.Engine, endpoint, fileField, fileName string, content []byte, fields map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		_ = writer.WriteField(key, value)
	}
	part, _ := writer.CreateFormFile(fileField, fileName)
	_, _ = part.Write(content)
	_ = writer.Close()

	req, _ := http.NewRequest(http.MethodPost, endpoint, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	identity.apply(req)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	return rec, resp
}

// Reviewer returns an identity holding the given permissions.
func Reviewer(userID string, perms ...string) TestIdentity {
	return TestIdentity{
		UserID:      userID,
		UserName:    "Test Reviewer",
		Permissions: perms,
	}
}

// AuthContextFor builds the AuthContext the debug headers would resolve to.
func AuthContextFor(identity TestIdentity) model.AuthContext {
	return model.AuthContext{
		UserID:      identity.UserID,
		UserName:    identity.UserName,
		Permissions: model.NewPermissionSet(identity.Permissions),
	}
}
