package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Lavodnos/stafflink/internal/database"
	"github.com/Lavodnos/stafflink/internal/iam"
	"github.com/Lavodnos/stafflink/internal/middleware"
	"github.com/Lavodnos/stafflink/internal/model"
	"github.com/Lavodnos/stafflink/internal/service"
	"github.com/Lavodnos/stafflink/internal/storage"
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

func newExportRouter(t *testing.T) *gin.Engine {
	backend, err := storage.NewLocalBackend(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage backend: %v", err)
	}
	ec := NewExportController(testDB, backend)

	r := gin.Default()
	r.Use(middleware.RequireAuth(authenticator))
	r.GET("/exports", middleware.RequirePermissions(middleware.PermissionsAll, "exports.read"), ec.ListBatches)
	r.GET("/exports/:id", middleware.RequirePermissions(middleware.PermissionsAll, "exports.read"), ec.GetBatch)
	r.POST("/exports", middleware.RequirePermissions(middleware.PermissionsAll, "exports.create"), ec.CreateBatch)
	r.GET("/exports/:id/file", middleware.RequirePermissions(middleware.PermissionsAll, "exports.download"), ec.DownloadFile)
	r.POST("/exports/:id/mark-delivered", middleware.RequirePermissions(middleware.PermissionsAll, "exports.deliver"), ec.MarkDelivered)
	return r
}

// seedApplicant creates an applicant on the active link in the given status.
func seedApplicant(t *testing.T, dni, status string) *model.Applicant {
	applicant := &model.Applicant{
		LinkID: database.TestLinkActive.ID,
		EditableApplicantInfo: model.EditableApplicantInfo{
			FirstName:      "CARLOS",
			LastName:       "HUAMAN",
			DocumentType:   model.DocumentTypeDNI,
			DocumentNumber: dni,
			Email:          "carlos@example.com",
			Phone:          "913456789",
		},
		Status:       status,
		ConsentGiven: true,
	}
	if err := testDB.Create(applicant).Error; err != nil {
		t.Fatalf("failed to seed applicant: %v", err)
	}
	return applicant
}

func TestCreateBatch_Success(t *testing.T) {
	r := newExportRouter(t)
	a1 := seedApplicant(t, "42000001", model.ApplicantStatusVerifiedOK)
	a2 := seedApplicant(t, "42000002", model.ApplicantStatusVerifiedOK)
	actor := testutil.Reviewer(database.TestAdminID.String(), "exports.create")

	body := gin.H{
		"applicant_ids": []string{a1.ID.String(), a2.ID.String()},
		"notes":         "September payroll intake",
	}
	rec, resp := testutil.MakeJSONRequest(body, actor, r, "/exports", http.MethodPost)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "generated", resp["status"])
	assert.Contains(t, resp["batch_code"], "BATCH-")
	assert.NotEmpty(t, resp["file_checksum"])

	for _, a := range []*model.Applicant{a1, a2} {
		var reloaded model.Applicant
		assert.NoError(t, testDB.First(&reloaded, "id = ?", a.ID).Error)
		assert.Equal(t, model.ApplicantStatusExported, reloaded.Status)
	}

	var items int64
	batchID, _ := resp["id"].(string)
	assert.NoError(t, testDB.Model(&model.SmartExportBatchItem{}).
		Where("batch_id = ?", batchID).Count(&items).Error)
	assert.Equal(t, int64(2), items)
}

func TestCreateBatch_AllOrNothing(t *testing.T) {
	r := newExportRouter(t)
	verified := seedApplicant(t, "42000003", model.ApplicantStatusVerifiedOK)
	draft := seedApplicant(t, "42000004", model.ApplicantStatusDraft)
	actor := testutil.Reviewer(database.TestAdminID.String(), "exports.create")

	body := gin.H{"applicant_ids": []string{verified.ID.String(), draft.ID.String()}}
	rec, resp := testutil.MakeJSONRequest(body, actor, r, "/exports", http.MethodPost)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], draft.ID.String())

	// the eligible applicant must be untouched
	var reloaded model.Applicant
	assert.NoError(t, testDB.First(&reloaded, "id = ?", verified.ID).Error)
	assert.Equal(t, model.ApplicantStatusVerifiedOK, reloaded.Status)
}

func TestCreateBatch_StorageFailureMarksFailed(t *testing.T) {
	applicant := seedApplicant(t, "42000010", model.ApplicantStatusVerifiedOK)
	actor := testutil.AuthContextFor(testutil.Reviewer(database.TestAdminID.String(), "exports.create"))

	// the cloud backend rejects every write
	_, err := service.CreateExportBatch(testDB.DB, storage.NewCloudBackend("payroll"),
		[]uuid.UUID{applicant.ID}, "", actor)
	assert.Error(t, err)

	var item model.SmartExportBatchItem
	assert.NoError(t, testDB.First(&item, "applicant_id = ?", applicant.ID).Error)
	assert.Equal(t, model.ExportItemStatusFailed, item.Status)

	var batch model.SmartExportBatch
	assert.NoError(t, testDB.First(&batch, "id = ?", item.BatchID).Error)
	assert.Equal(t, model.ExportBatchStatusFailed, batch.Status)

	// the applicant stays exportable
	var reloaded model.Applicant
	assert.NoError(t, testDB.First(&reloaded, "id = ?", applicant.ID).Error)
	assert.Equal(t, model.ApplicantStatusVerifiedOK, reloaded.Status)
}

func TestCreateBatch_EmptySelection(t *testing.T) {
	r := newExportRouter(t)
	actor := testutil.Reviewer(database.TestAdminID.String(), "exports.create")

	rec, _ := testutil.MakeJSONRequest(gin.H{"applicant_ids": []string{}}, actor, r, "/exports", http.MethodPost)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadFile(t *testing.T) {
	r := newExportRouter(t)
	applicant := seedApplicant(t, "42000005", model.ApplicantStatusVerifiedOK)
	actor := testutil.Reviewer(database.TestAdminID.String(), "exports.create", "exports.download")

	_, resp := testutil.MakeJSONRequest(gin.H{"applicant_ids": []string{applicant.ID.String()}},
		actor, r, "/exports", http.MethodPost)
	batchID, _ := resp["id"].(string)

	req, _ := http.NewRequest(http.MethodGet, "/exports/"+batchID+"/file", nil)
	req.Header.Set(middleware.DebugUserIDHeader, actor.UserID)
	req.Header.Set(middleware.DebugPermissionsHeader, strings.Join(actor.Permissions, ","))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "document_number,full_name,campaign\n"))
	assert.Contains(t, rec.Body.String(), "42000005,HUAMAN CARLOS,Lima Norte Intake")
}

func TestMarkDelivered_Idempotent(t *testing.T) {
	r := newExportRouter(t)
	applicant := seedApplicant(t, "42000006", model.ApplicantStatusVerifiedOK)
	actor := testutil.Reviewer(database.TestAdminID.String(), "exports.create", "exports.deliver")

	_, resp := testutil.MakeJSONRequest(gin.H{"applicant_ids": []string{applicant.ID.String()}},
		actor, r, "/exports", http.MethodPost)
	batchID, _ := resp["id"].(string)

	rec, resp := testutil.MakeJSONRequest(nil, actor, r, "/exports/"+batchID+"/mark-delivered", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "delivered", resp["status"])

	rec, resp = testutil.MakeJSONRequest(nil, actor, r, "/exports/"+batchID+"/mark-delivered", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "delivered", resp["status"])
}

func TestListBatches_RequiresPermission(t *testing.T) {
	r := newExportRouter(t)
	nobody := testutil.Reviewer(database.TestRecruiter2ID.String(), "campaigns.read")

	rec, _ := testutil.MakeJSONRequest(nil, nobody, r, "/exports", http.MethodGet)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
