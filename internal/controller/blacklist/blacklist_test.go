package blacklist

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Lavodnos/stafflink/internal/database"
	"github.com/Lavodnos/stafflink/internal/iam"
	"github.com/Lavodnos/stafflink/internal/middleware"
	"github.com/Lavodnos/stafflink/internal/testutil"
)

var testDB *database.DBinstanceStruct

var authenticator = iam.NewAuthenticator(iam.NewClient("http://127.0.0.1:1", "stafflink", time.Second))

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
}

func newBlacklistRouter() *gin.Engine {
	bc := NewBlacklistController(testDB)
	r := gin.Default()
	r.Use(middleware.RequireAuth(authenticator))
	r.GET("/blacklist", middleware.RequirePermissions(middleware.PermissionsAll, "blacklist.read"), bc.ListEntries)
	r.GET("/blacklist/:id", middleware.RequirePermissions(middleware.PermissionsAll, "blacklist.read"), bc.GetEntry)
	r.POST("/blacklist", middleware.RequirePermissions(middleware.PermissionsAll, "blacklist.manage"), bc.CreateEntry)
	r.PATCH("/blacklist/:id", middleware.RequirePermissions(middleware.PermissionsAll, "blacklist.manage"), bc.EditEntry)
	r.DELETE("/blacklist/:id", middleware.RequirePermissions(middleware.PermissionsAll, "blacklist.manage"), bc.DeleteEntry)
	return r
}

func TestCreateEntry_Success(t *testing.T) {
	r := newBlacklistRouter()
	admin := testutil.Reviewer(database.TestAdminID.String(), "blacklist.manage")

	body := gin.H{"document_number": "43000001", "reason": "Falsified references"}
	rec, resp := testutil.MakeJSONRequest(body, admin, r, "/blacklist", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "43000001", resp["document_number"])
	assert.Equal(t, "active", resp["status"])
	assert.Equal(t, database.TestAdminID.String(), resp["added_by"])
}

func TestCreateEntry_Duplicate(t *testing.T) {
	r := newBlacklistRouter()
	admin := testutil.Reviewer(database.TestAdminID.String(), "blacklist.manage")

	body := gin.H{"document_number": database.TestBlacklistedDNI}
	rec, resp := testutil.MakeJSONRequest(body, admin, r, "/blacklist", http.MethodPost)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "already on the blacklist")
}

func TestListEntries_FilterByDocument(t *testing.T) {
	r := newBlacklistRouter()
	admin := testutil.Reviewer(database.TestAdminID.String(), "blacklist.read")

	rec, resp := testutil.MakeListRequest(admin, r, "/blacklist?document="+database.TestBlacklistedDNI)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp, 1)
	assert.Equal(t, database.TestBlacklistedDNI, resp[0]["document_number"])
}

func TestEditEntry_Deactivate(t *testing.T) {
	r := newBlacklistRouter()
	admin := testutil.Reviewer(database.TestAdminID.String(), "blacklist.manage")

	_, created := testutil.MakeJSONRequest(gin.H{"document_number": "43000002"}, admin, r, "/blacklist", http.MethodPost)
	id, _ := created["id"].(string)

	rec, resp := testutil.MakeJSONRequest(gin.H{"status": "inactive", "reason": "Cleared after appeal"},
		admin, r, "/blacklist/"+id, http.MethodPatch)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "inactive", resp["status"])
	assert.Equal(t, "Cleared after appeal", resp["reason"])
}

func TestEditEntry_InvalidStatus(t *testing.T) {
	r := newBlacklistRouter()
	admin := testutil.Reviewer(database.TestAdminID.String(), "blacklist.manage")

	_, created := testutil.MakeJSONRequest(gin.H{"document_number": "43000003"}, admin, r, "/blacklist", http.MethodPost)
	id, _ := created["id"].(string)

	rec, _ := testutil.MakeJSONRequest(gin.H{"status": "paused"}, admin, r, "/blacklist/"+id, http.MethodPatch)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEntry(t *testing.T) {
	r := newBlacklistRouter()
	admin := testutil.Reviewer(database.TestAdminID.String(), "blacklist.manage", "blacklist.read")

	_, created := testutil.MakeJSONRequest(gin.H{"document_number": "43000004"}, admin, r, "/blacklist", http.MethodPost)
	id, _ := created["id"].(string)

	rec, _ := testutil.MakeJSONRequest(nil, admin, r, "/blacklist/"+id, http.MethodDelete)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, admin, r, "/blacklist/"+id, http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlacklist_RequiresPermission(t *testing.T) {
	r := newBlacklistRouter()
	reader := testutil.Reviewer(database.TestRecruiter1ID.String(), "blacklist.read")

	rec, _ := testutil.MakeJSONRequest(gin.H{"document_number": "43000005"}, reader, r, "/blacklist", http.MethodPost)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
