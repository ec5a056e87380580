// Package export provides the payroll export batch endpoints.
package export

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Lavodnos/stafflink/internal/audit"
	"github.com/Lavodnos/stafflink/internal/database"
	"github.com/Lavodnos/stafflink/internal/model"
	"github.com/Lavodnos/stafflink/internal/service"
	"github.com/Lavodnos/stafflink/internal/storage"
	"github.com/Lavodnos/stafflink/internal/utilities"
)

// ExportController handles export batch endpoints
type ExportController struct {
	DB      *database.DBinstanceStruct
	Storage storage.Backend
}

// NewExportController creates a new instance of ExportController
func NewExportController(db *database.DBinstanceStruct, backend storage.Backend) *ExportController {
	return &ExportController{
		DB:      db,
		Storage: backend,
	}
}

type createBatchInfo struct {
	ApplicantIDs []uuid.UUID `json:"applicant_ids" binding:"required"`
	Notes        string      `json:"notes"`
}

// ListBatches returns export batches, newest first.
// @Summary List export batches
// @Tags Export
// @Produce json
// @Success 200 {array} model.SmartExportBatch "Batches"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Missing permission"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /exports [get]
func (ec *ExportController) ListBatches(c *gin.Context) {
	batches := []model.SmartExportBatch{}
	if err := ec.DB.Order("created_at desc").Find(&batches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch export batches: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, batches)
}

// GetBatch returns one batch with its items.
// @Summary Get export batch by ID
// @Tags Export
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} model.SmartExportBatch "Batch"
// @Failure 404 {object} utilities.ErrorResponse "Batch not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /exports/{id} [get]
func (ec *ExportController) GetBatch(c *gin.Context) {
	batch, ok := ec.batchByID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, batch)
}

// CreateBatch exports verified applicants to the payroll system. The
// operation is all-or-nothing: one ineligible applicant fails the batch.
// @Summary Create export batch
// @Tags Export
// @Accept json
// @Produce json
// @Param Batch body createBatchInfo true "Applicants to export"
// @Success 201 {object} model.SmartExportBatch "Batch created"
// @Failure 400 {object} utilities.ErrorResponse "No applicants, or applicants not in verified_ok"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Router /exports [post]
func (ec *ExportController) CreateBatch(c *gin.Context) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var info createBatchInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	batch, err := service.CreateExportBatch(ec.DB.DB, ec.Storage, info.ApplicantIDs, info.Notes, auth)
	if err != nil {
		var validationErr *service.ValidationError
		var notEligible *service.NotEligibleError
		if errors.As(err, &validationErr) || errors.As(err, &notEligible) {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create export batch: %s", err.Error()),
		})
		return
	}

	audit.Record(ec.DB.DB, audit.Entry{
		EntityType: model.AuditEntityExport,
		EntityID:   batch.ID,
		Action:     "created",
		ActorID:    auth.UserUUID(),
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
		Payload:    map[string]interface{}{"batch_code": batch.BatchCode, "applicants": len(info.ApplicantIDs)},
	})
	c.JSON(http.StatusCreated, batch)
}

// DownloadFile streams the batch CSV.
// @Summary Download the batch CSV file
// @Tags Export
// @Produce octet-stream
// @Param id path string true "Batch ID"
// @Success 200 {string} binary "CSV content"
// @Failure 404 {object} utilities.ErrorResponse "Batch not found"
// @Failure 500 {object} utilities.ErrorResponse "File cannot be read"
// @Router /exports/{id}/file [get]
func (ec *ExportController) DownloadFile(c *gin.Context) {
	batch, ok := ec.batchByID(c)
	if !ok {
		return
	}

	local, ok := ec.Storage.(*storage.LocalBackend)
	if !ok {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "The configured storage backend does not support downloads",
		})
		return
	}
	reader, err := local.Open(batch.FilePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to open export file: %s", err.Error()),
		})
		return
	}
	defer func() {
		_ = reader.Close()
	}()

	c.Writer.Header().Set("Content-Disposition", "attachment; filename="+batch.BatchCode+".csv")
	c.DataFromReader(http.StatusOK, -1, "text/csv", reader, nil)
}

// MarkDelivered flags a batch as handed over to payroll. Idempotent.
// @Summary Mark export batch as delivered
// @Tags Export
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} model.SmartExportBatch "Batch delivered"
// @Failure 400 {object} utilities.ErrorResponse "Batch not in generated status"
// @Failure 404 {object} utilities.ErrorResponse "Batch not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /exports/{id}/mark-delivered [post]
func (ec *ExportController) MarkDelivered(c *gin.Context) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	batch, ok := ec.batchByID(c)
	if !ok {
		return
	}

	if err := service.MarkBatchDelivered(ec.DB.DB, batch); err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to mark batch delivered: %s", err.Error()),
		})
		return
	}

	audit.Record(ec.DB.DB, audit.Entry{
		EntityType: model.AuditEntityExport,
		EntityID:   batch.ID,
		Action:     "delivered",
		ActorID:    auth.UserUUID(),
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
	})
	c.JSON(http.StatusOK, batch)
}

func (ec *ExportController) batchByID(c *gin.Context) (*model.SmartExportBatch, bool) {
	var batch model.SmartExportBatch
	err := ec.DB.Preload("Items").Where("id = ?", c.Param("id")).First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Export batch not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve export batch: %s", err.Error()),
		})
		return nil, false
	}
	return &batch, true
}
