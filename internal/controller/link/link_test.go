package link

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
	"github.com/Lavodnos/stafflink/internal/model"
	"github.com/Lavodnos/stafflink/internal/service"
	"github.com/Lavodnos/stafflink/internal/testutil"
)

var testDB *database.DBinstanceStruct

// authenticator is never reached because tests identify through debug headers
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

func newLinkRouter() *gin.Engine {
	lc := NewLinkController(testDB)
	r := gin.Default()
	r.Use(middleware.RequireAuth(authenticator))
	r.GET("/links", middleware.RequirePermissions(middleware.PermissionsAny, "links.read_all", "links.read_own"), lc.ListLinks)
	r.GET("/links/:id", middleware.RequirePermissions(middleware.PermissionsAny, "links.read_all", "links.read_own"), lc.GetLink)
	r.POST("/links", middleware.RequirePermissions(middleware.PermissionsAll, "links.create"), lc.CreateLink)
	r.PATCH("/links/:id", middleware.RequirePermissions(middleware.PermissionsAny, "links.update_all", "links.update_own"), lc.EditLink)
	r.POST("/links/:id/expire", middleware.RequirePermissions(middleware.PermissionsAny, "links.expire", "links.expire_own"), lc.ExpireLink)
	r.POST("/links/:id/revoke", middleware.RequirePermissions(middleware.PermissionsAny, "links.revoke", "links.revoke_own"), lc.RevokeLink)
	r.POST("/links/:id/activate", middleware.RequirePermissions(middleware.PermissionsAny, "links.activate", "links.activate_own"), lc.ActivateLink)
	return r
}

func createTestLink(t *testing.T, r *gin.Engine, identity testutil.TestIdentity, title string) string {
	body := gin.H{
		"campaign_id": database.TestCampaign1.ID.String(),
		"title":       title,
		"expires_at":  time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
	}
	rec, resp := testutil.MakeJSONRequest(body, identity, r, "/links", http.MethodPost)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed to create link: code %d body %v", rec.Code, resp)
	}
	id, _ := resp["id"].(string)
	return id
}

func TestListLinks_OwnScope(t *testing.T) {
	r := newLinkRouter()
	recruiter1 := testutil.Reviewer(database.TestRecruiter1ID.String(), "links.read_own")

	rec, resp := testutil.MakeListRequest(recruiter1, r, "/links")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp)
	for _, link := range resp {
		assert.Equal(t, database.TestRecruiter1ID.String(), link["owner_id"])
	}
}

func TestListLinks_ReadAllSeesEverything(t *testing.T) {
	r := newLinkRouter()
	admin := testutil.Reviewer(database.TestAdminID.String(), "links.read_all")

	rec, resp := testutil.MakeListRequest(admin, r, "/links")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.GreaterOrEqual(t, len(resp), 3)
}

func TestListLinks_WithoutPermission(t *testing.T) {
	r := newLinkRouter()
	nobody := testutil.Reviewer(database.TestRecruiter2ID.String(), "campaigns.read")

	rec, _ := testutil.MakeJSONRequest(nil, nobody, r, "/links", http.MethodGet)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetLink_NonOwnerForbidden(t *testing.T) {
	r := newLinkRouter()
	recruiter2 := testutil.Reviewer(database.TestRecruiter2ID.String(), "links.read_own")

	rec, _ := testutil.MakeJSONRequest(nil, recruiter2, r,
		"/links/"+database.TestLinkActive.ID.String(), http.MethodGet)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateLink_Success(t *testing.T) {
	r := newLinkRouter()
	recruiter1 := testutil.Reviewer(database.TestRecruiter1ID.String(), "links.create")

	body := gin.H{
		"campaign_id": database.TestCampaign1.ID.String(),
		"title":       "Weekend Shift Promoters",
		"modality":    "onsite",
		"expires_at":  time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
	}
	rec, resp := testutil.MakeJSONRequest(body, recruiter1, r, "/links", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, database.TestRecruiter1ID.String(), resp["owner_id"])
	assert.Equal(t, "active", resp["status"])
	assert.NotEmpty(t, resp["slug"])
}

func TestCreateLink_UnknownCampaign(t *testing.T) {
	r := newLinkRouter()
	recruiter1 := testutil.Reviewer(database.TestRecruiter1ID.String(), "links.create")

	body := gin.H{
		"campaign_id": "a2d5b3ee-0000-4000-8000-00000000dead",
		"title":       "Orphan Link",
		"expires_at":  time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
	}
	rec, _ := testutil.MakeJSONRequest(body, recruiter1, r, "/links", http.MethodPost)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpireLink_Idempotent(t *testing.T) {
	r := newLinkRouter()
	recruiter1 := testutil.Reviewer(database.TestRecruiter1ID.String(),
		"links.create", "links.expire_own")
	id := createTestLink(t, r, recruiter1, "Expire Twice")

	rec, resp := testutil.MakeJSONRequest(nil, recruiter1, r, "/links/"+id+"/expire", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "expired", resp["status"])

	rec, resp = testutil.MakeJSONRequest(nil, recruiter1, r, "/links/"+id+"/expire", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "expired", resp["status"])
}

func TestRevokeThenActivate(t *testing.T) {
	r := newLinkRouter()
	recruiter1 := testutil.Reviewer(database.TestRecruiter1ID.String(),
		"links.create", "links.revoke_own", "links.activate_own")
	id := createTestLink(t, r, recruiter1, "Revoke Then Reopen")

	rec, resp := testutil.MakeJSONRequest(nil, recruiter1, r, "/links/"+id+"/revoke", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "revoked", resp["status"])

	rec, resp = testutil.MakeJSONRequest(nil, recruiter1, r, "/links/"+id+"/activate", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "active", resp["status"])
}

func TestActivateLink_PastDeadline(t *testing.T) {
	r := newLinkRouter()
	recruiter1 := testutil.Reviewer(database.TestRecruiter1ID.String(), "links.activate_own")

	rec, resp := testutil.MakeJSONRequest(nil, recruiter1, r,
		"/links/"+database.TestLinkExpired.ID.String()+"/activate", http.MethodPost)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "deadline")
}

func TestExpireDueLinks_Sweep(t *testing.T) {
	overdue := model.RecruitmentLink{
		CampaignID: database.TestCampaign1.ID,
		Slug:       "sweep-overdue",
		OwnerID:    database.TestRecruiter1ID,
		Status:     model.LinkStatusActive,
		EditableLinkInfo: model.EditableLinkInfo{
			Title:     "Overdue Link",
			ExpiresAt: time.Now().Add(-time.Hour),
		},
	}
	manual := false
	pinned := model.RecruitmentLink{
		CampaignID: database.TestCampaign1.ID,
		Slug:       "sweep-pinned",
		OwnerID:    database.TestRecruiter1ID,
		Status:     model.LinkStatusActive,
		EditableLinkInfo: model.EditableLinkInfo{
			Title:                "Manually Closed Link",
			ExpiresAt:            time.Now().Add(-time.Hour),
			ExpiresAutomatically: &manual,
		},
	}
	assert.NoError(t, testDB.Create(&overdue).Error)
	assert.NoError(t, testDB.Create(&pinned).Error)

	count, err := service.ExpireDueLinks(testDB.DB, time.Now())
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, count, int64(1))

	var reloaded model.RecruitmentLink
	assert.NoError(t, testDB.First(&reloaded, "id = ?", overdue.ID).Error)
	assert.Equal(t, model.LinkStatusExpired, reloaded.Status)

	assert.NoError(t, testDB.First(&reloaded, "id = ?", pinned.ID).Error)
	assert.Equal(t, model.LinkStatusActive, reloaded.Status)
}

func TestCreateLink_SlugCollision(t *testing.T) {
	r := newLinkRouter()
	recruiter1 := testutil.Reviewer(database.TestRecruiter1ID.String(), "links.create")

	first := createTestLink(t, r, recruiter1, "Same Title Twice")

	body := gin.H{
		"campaign_id": database.TestCampaign1.ID.String(),
		"title":       "Same Title Twice",
		"expires_at":  time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
	}
	rec, resp := testutil.MakeJSONRequest(body, recruiter1, r, "/links", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEqual(t, first, resp["id"])

	var a, b model.RecruitmentLink
	assert.NoError(t, testDB.First(&a, "id = ?", first).Error)
	assert.NoError(t, testDB.First(&b, "id = ?", resp["id"]).Error)
	assert.NotEqual(t, a.Slug, b.Slug)
}

func TestEditLink_Owner(t *testing.T) {
	r := newLinkRouter()
	recruiter1 := testutil.Reviewer(database.TestRecruiter1ID.String(),
		"links.create", "links.update_own")
	id := createTestLink(t, r, recruiter1, "Editable Link")

	rec, resp := testutil.MakeJSONRequest(gin.H{"compensation": "1800 PEN"}, recruiter1, r,
		"/links/"+id, http.MethodPatch)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1800 PEN", resp["compensation"])
}
