package candidate

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

func newCandidateRouter() *gin.Engine {
	cc := NewCandidateController(testDB)
	r := gin.Default()
	r.Use(middleware.RequireAuth(authenticator))
	r.GET("/candidates", middleware.RequirePermissions(middleware.PermissionsAny, "candidates.read_all", "candidates.read_own"), cc.ListCandidates)
	r.GET("/candidates/:id", middleware.RequirePermissions(middleware.PermissionsAny, "candidates.read_all", "candidates.read_own"), cc.GetCandidate)
	r.POST("/candidates", middleware.RequirePermissions(middleware.PermissionsAll, "candidates.manage"), cc.CreateCandidate)
	r.PATCH("/candidates/:id", middleware.RequirePermissions(middleware.PermissionsAll, "candidates.manage"), cc.EditCandidate)
	r.PATCH("/candidates/:id/process", middleware.RequirePermissions(middleware.PermissionsAll, "candidates.process"), cc.EditProcess)
	r.PATCH("/candidates/:id/documents", middleware.RequirePermissions(middleware.PermissionsAll, "candidates.process"), cc.EditChecklist)
	r.PATCH("/candidates/:id/assignment", middleware.RequirePermissions(middleware.PermissionsAll, "candidates.contract"), cc.EditAssignment)
	return r
}

func seedCandidate(t *testing.T, dni, status string) *model.Applicant {
	applicant := &model.Applicant{
		LinkID: database.TestLinkActive.ID,
		EditableApplicantInfo: model.EditableApplicantInfo{
			FirstName:      "ELENA",
			LastName:       "TORRES",
			DocumentType:   model.DocumentTypeDNI,
			DocumentNumber: dni,
			Email:          "elena@example.com",
			Phone:          "914567890",
		},
		Status:       status,
		ConsentGiven: true,
	}
	if err := testDB.Create(applicant).Error; err != nil {
		t.Fatalf("failed to seed candidate: %v", err)
	}
	return applicant
}

func TestListCandidates_OwnScope(t *testing.T) {
	r := newCandidateRouter()
	seedCandidate(t, "44000001", model.ApplicantStatusSubmitted)

	// recruiter2 owns no links, the scoped listing is empty
	recruiter2 := testutil.Reviewer(database.TestRecruiter2ID.String(), "candidates.read_own")
	rec, resp := testutil.MakeListRequest(recruiter2, r, "/candidates")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp)

	recruiter1 := testutil.Reviewer(database.TestRecruiter1ID.String(), "candidates.read_own")
	rec, resp = testutil.MakeListRequest(recruiter1, r, "/candidates")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp)
}

func TestListCandidates_FilterByDocument(t *testing.T) {
	r := newCandidateRouter()
	candidate := seedCandidate(t, "44000002", model.ApplicantStatusSubmitted)
	admin := testutil.Reviewer(database.TestAdminID.String(), "candidates.read_all")

	rec, resp := testutil.MakeListRequest(admin, r, "/candidates?document=44000002")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp, 1)
	assert.Equal(t, candidate.ID.String(), resp[0]["id"])
}

func TestGetCandidate(t *testing.T) {
	r := newCandidateRouter()
	candidate := seedCandidate(t, "44000003", model.ApplicantStatusSubmitted)
	admin := testutil.Reviewer(database.TestAdminID.String(), "candidates.read_all")

	rec, resp := testutil.MakeJSONRequest(nil, admin, r,
		"/candidates/"+candidate.ID.String(), http.MethodGet)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "44000003", resp["document_number"])
}

func TestCreateCandidate_Staff(t *testing.T) {
	r := newCandidateRouter()
	manager := testutil.Reviewer(database.TestAdminID.String(), "candidates.manage")

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"link_id":         database.TestLinkActive.ID.String(),
		"first_name":      "Pedro",
		"last_name":       "Castillo",
		"document_type":   "dni",
		"document_number": "44000010",
		"email":           "pedro@example.com",
		"phone":           "987000111",
		"consent_given":   true,
	}, manager, r, "/candidates", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "PEDRO", resp["first_name"])
	assert.Equal(t, "draft", resp["status"])
}

func TestCreateCandidate_ClosedLink(t *testing.T) {
	r := newCandidateRouter()
	manager := testutil.Reviewer(database.TestAdminID.String(), "candidates.manage")

	rec, _ := testutil.MakeJSONRequest(gin.H{
		"link_id":         database.TestLinkExpired.ID.String(),
		"first_name":      "Pedro",
		"last_name":       "Castillo",
		"document_type":   "dni",
		"document_number": "44000011",
		"email":           "pedro@example.com",
		"phone":           "987000111",
	}, manager, r, "/candidates", http.MethodPost)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditCandidate_BlacklistApplies(t *testing.T) {
	r := newCandidateRouter()
	candidate := seedCandidate(t, "44000004", model.ApplicantStatusSubmitted)
	manager := testutil.Reviewer(database.TestAdminID.String(), "candidates.manage")

	rec, _ := testutil.MakeJSONRequest(gin.H{"document_number": database.TestBlacklistedDNI},
		manager, r, "/candidates/"+candidate.ID.String(), http.MethodPatch)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditCandidate_NotEditable(t *testing.T) {
	r := newCandidateRouter()
	candidate := seedCandidate(t, "44000005", model.ApplicantStatusExported)
	manager := testutil.Reviewer(database.TestAdminID.String(), "candidates.manage")

	rec, _ := testutil.MakeJSONRequest(gin.H{"phone": "955555555"},
		manager, r, "/candidates/"+candidate.ID.String(), http.MethodPatch)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEditProcess_CreatedOnFirstWrite(t *testing.T) {
	r := newCandidateRouter()
	candidate := seedCandidate(t, "44000006", model.ApplicantStatusVerifiedOK)
	staff := testutil.Reviewer(database.TestAdminID.String(), "candidates.process")

	interviewAt := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	rec, resp := testutil.MakeJSONRequest(gin.H{
		"interview_at": interviewAt.Format(time.RFC3339),
		"notes":        "Morning slot preferred",
	}, staff, r, "/candidates/"+candidate.ID.String()+"/process", http.MethodPatch)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, candidate.ID.String(), resp["applicant_id"])
	assert.Equal(t, "Morning slot preferred", resp["notes"])
	assert.Equal(t, database.TestAdminID.String(), resp["updated_by"])

	// second patch keeps the earlier milestone
	rec, resp = testutil.MakeJSONRequest(gin.H{
		"induction_at": time.Now().Add(96 * time.Hour).Format(time.RFC3339),
	}, staff, r, "/candidates/"+candidate.ID.String()+"/process", http.MethodPatch)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, resp["interview_at"])
	assert.NotNil(t, resp["induction_at"])
}

func TestEditChecklist_CreatedOnFirstWrite(t *testing.T) {
	r := newCandidateRouter()
	candidate := seedCandidate(t, "44000008", model.ApplicantStatusVerifiedOK)
	staff := testutil.Reviewer(database.TestAdminID.String(), "candidates.process")

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"cv_received":              true,
		"criminal_record_received": true,
		"notes":                    "Originals pending",
	}, staff, r, "/candidates/"+candidate.ID.String()+"/documents", http.MethodPatch)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, candidate.ID.String(), resp["applicant_id"])
	assert.Equal(t, true, resp["cv_received"])
	assert.Equal(t, database.TestAdminID.String(), resp["updated_by"])

	// second patch keeps earlier items
	rec, resp = testutil.MakeJSONRequest(gin.H{
		"photos_received": true,
	}, staff, r, "/candidates/"+candidate.ID.String()+"/documents", http.MethodPatch)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["cv_received"])
	assert.Equal(t, true, resp["photos_received"])
}

func TestEditAssignment(t *testing.T) {
	r := newCandidateRouter()
	candidate := seedCandidate(t, "44000007", model.ApplicantStatusVerifiedOK)
	staff := testutil.Reviewer(database.TestAdminID.String(), "candidates.contract")

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"employment_condition": "payroll",
		"company_name":         "Stafflink Outsourcing SAC",
		"compensation":         "1600 PEN",
		"contract_role":        "Store Promoter",
	}, staff, r, "/candidates/"+candidate.ID.String()+"/assignment", http.MethodPatch)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1600 PEN", resp["compensation"])
	assert.Equal(t, "Store Promoter", resp["contract_role"])
}

func TestGetCandidate_NotFound(t *testing.T) {
	r := newCandidateRouter()
	admin := testutil.Reviewer(database.TestAdminID.String(), "candidates.read_all")

	rec, _ := testutil.MakeJSONRequest(nil, admin, r,
		"/candidates/a2d5b3ee-0000-4000-8000-00000000dead", http.MethodGet)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
