// Package blacklist provides the hiring denylist endpoints.
package blacklist

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Lavodnos/stafflink/internal/audit"
	"github.com/Lavodnos/stafflink/internal/database"
	"github.com/Lavodnos/stafflink/internal/model"
	"github.com/Lavodnos/stafflink/internal/utilities"
)

// BlacklistController handles denylist endpoints
type BlacklistController struct {
	DB *database.DBinstanceStruct
}

// NewBlacklistController creates a new instance of BlacklistController
func NewBlacklistController(db *database.DBinstanceStruct) *BlacklistController {
	return &BlacklistController{
		DB: db,
	}
}

type createEntryInfo struct {
	DocumentNumber string `json:"document_number" binding:"required"`
	Reason         string `json:"reason"`
}

type patchEntryInfo struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
	Reason string `json:"reason"`
}

// ListEntries returns denylist entries, optionally filtered by document.
// @Summary List blacklist entries
// @Tags Blacklist
// @Produce json
// @Param document query string false "Filter by document number"
// @Success 200 {array} model.Blacklist "Entries"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Missing permission"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /blacklist [get]
func (bc *BlacklistController) ListEntries(c *gin.Context) {
	query := bc.DB.Order("created_at desc")
	if document := c.Query("document"); document != "" {
		query = query.Where("document_number = ?", strings.ToUpper(strings.TrimSpace(document)))
	}

	entries := []model.Blacklist{}
	if err := query.Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch blacklist: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetEntry returns one denylist entry.
// @Summary Get blacklist entry by ID
// @Tags Blacklist
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} model.Blacklist "Entry"
// @Failure 404 {object} utilities.ErrorResponse "Entry not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /blacklist/{id} [get]
func (bc *BlacklistController) GetEntry(c *gin.Context) {
	entry, ok := bc.entryByID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CreateEntry adds a document to the denylist.
// @Summary Create blacklist entry
// @Tags Blacklist
// @Accept json
// @Produce json
// @Param Entry body createEntryInfo true "Entry data"
// @Success 201 {object} model.Blacklist "Entry created"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or duplicate document"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /blacklist [post]
func (bc *BlacklistController) CreateEntry(c *gin.Context) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var info createEntryInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	entry := model.Blacklist{
		DocumentNumber: strings.ToUpper(strings.TrimSpace(info.DocumentNumber)),
		Status:         model.BlacklistStatusActive,
		Reason:         info.Reason,
		AddedBy:        auth.UserUUID(),
		AddedByName:    auth.UserName,
	}
	if err := bc.DB.Create(&entry).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: "This document is already on the blacklist",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create blacklist entry: %s", err.Error()),
		})
		return
	}

	audit.Record(bc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityBlacklist,
		EntityID:   entry.ID,
		Action:     "created",
		ActorID:    auth.UserUUID(),
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
		Payload:    map[string]interface{}{"document_number": entry.DocumentNumber},
	})
	c.JSON(http.StatusCreated, entry)
}

// EditEntry activates or deactivates an entry.
// @Summary Edit blacklist entry
// @Tags Blacklist
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param Entry body patchEntryInfo true "Status and optional reason"
// @Success 200 {object} model.Blacklist "Updated entry"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 404 {object} utilities.ErrorResponse "Entry not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /blacklist/{id} [patch]
func (bc *BlacklistController) EditEntry(c *gin.Context) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	entry, ok := bc.entryByID(c)
	if !ok {
		return
	}

	var info patchEntryInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Status must be active or inactive",
		})
		return
	}

	entry.Status = info.Status
	if info.Reason != "" {
		entry.Reason = info.Reason
	}
	if err := bc.DB.Save(entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update blacklist entry: %s", err.Error()),
		})
		return
	}

	audit.Record(bc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityBlacklist,
		EntityID:   entry.ID,
		Action:     info.Status,
		ActorID:    auth.UserUUID(),
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
	})
	c.JSON(http.StatusOK, entry)
}

// DeleteEntry removes an entry entirely.
// @Summary Delete blacklist entry
// @Tags Blacklist
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} utilities.MessageResponse "Entry deleted"
// @Failure 404 {object} utilities.ErrorResponse "Entry not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /blacklist/{id} [delete]
func (bc *BlacklistController) DeleteEntry(c *gin.Context) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	entry, ok := bc.entryByID(c)
	if !ok {
		return
	}

	if err := bc.DB.Delete(entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete blacklist entry: %s", err.Error()),
		})
		return
	}

	audit.Record(bc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityBlacklist,
		EntityID:   entry.ID,
		Action:     "deleted",
		ActorID:    auth.UserUUID(),
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
		Payload:    map[string]interface{}{"document_number": entry.DocumentNumber},
	})
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Blacklist entry deleted"})
}

func (bc *BlacklistController) entryByID(c *gin.Context) (*model.Blacklist, bool) {
	var entry model.Blacklist
	err := bc.DB.Where("id = ?", c.Param("id")).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Blacklist entry not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve blacklist entry: %s", err.Error()),
		})
		return nil, false
	}
	return &entry, true
}
