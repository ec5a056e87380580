// Package public provides the unauthenticated intake endpoints reached
// through a shared recruitment link.
package public

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Lavodnos/stafflink/internal/audit"
	"github.com/Lavodnos/stafflink/internal/database"
	"github.com/Lavodnos/stafflink/internal/model"
	"github.com/Lavodnos/stafflink/internal/service"
	"github.com/Lavodnos/stafflink/internal/storage"
	"github.com/Lavodnos/stafflink/internal/utilities"
)

// linkNotFoundMessage conceals whether a link exists, expired or was revoked.
const linkNotFoundMessage = "Application link not found or no longer available"

// PublicController handles the public intake endpoints
type PublicController struct {
	DB      *database.DBinstanceStruct
	Storage storage.Backend
}

// NewPublicController creates a new instance of PublicController
func NewPublicController(db *database.DBinstanceStruct, backend storage.Backend) *PublicController {
	return &PublicController{
		DB:      db,
		Storage: backend,
	}
}

type createApplicantInfo struct {
	Slug string `json:"slug" binding:"required"`
	model.EditableApplicantInfo
	ConsentGiven bool                   `json:"consent_given"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// GetLink returns the public view of an open recruitment link.
// @Summary Get an application link by slug
// @Description Expired or revoked links answer 404, indistinguishable from unknown slugs
// @Tags Public
// @Produce json
// @Param slug path string true "Link slug"
// @Success 200 {object} model.PublicLinkResponse "Link is open for applications"
// @Failure 404 {object} utilities.ErrorResponse "Link not found or no longer available"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /public/links/{slug} [get]
func (pc *PublicController) GetLink(c *gin.Context) {
	link, ok := pc.openLinkBySlug(c, c.Param("slug"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, link.ToPublicResponse())
}

// CreateApplicant registers a draft application against an open link.
// @Summary Start an application
// @Description Creates a draft applicant on the link identified by slug
// @Tags Public
// @Accept json
// @Produce json
// @Param Applicant body createApplicantInfo true "Applicant form data"
// @Success 201 {object} model.Applicant "Draft application created"
// @Failure 400 {object} utilities.ErrorResponse "Validation failed, duplicate document, or applicant blocked"
// @Failure 404 {object} utilities.ErrorResponse "Link not found or no longer available"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /public/applicants [post]
func (pc *PublicController) CreateApplicant(c *gin.Context) {
	var info createApplicantInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	link, ok := pc.openLinkBySlug(c, info.Slug)
	if !ok {
		return
	}

	applicant, err := service.CreateApplicant(pc.DB.DB, link, service.CreateApplicantInput{
		EditableApplicantInfo: info.EditableApplicantInfo,
		ConsentGiven:          info.ConsentGiven,
		Metadata:              info.Metadata,
		OriginIP:              c.ClientIP(),
		UserAgent:             c.Request.UserAgent(),
	})
	if err != nil {
		pc.respondDomainError(c, err)
		return
	}

	audit.Record(pc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityApplicant,
		EntityID:   applicant.ID,
		Action:     "created",
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	c.JSON(http.StatusCreated, applicant)
}

// UpdateApplicant patches a still-editable application.
// @Summary Update a draft or submitted application
// @Tags Public
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param Applicant body model.EditableApplicantInfo true "Fields to update"
// @Success 200 {object} model.Applicant "Updated application"
// @Failure 400 {object} utilities.ErrorResponse "Validation failed or applicant blocked"
// @Failure 404 {object} utilities.ErrorResponse "Applicant not found"
// @Failure 409 {object} utilities.ErrorResponse "Application can no longer be modified"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /public/applicants/{id} [patch]
func (pc *PublicController) UpdateApplicant(c *gin.Context) {
	applicant, ok := pc.applicantByID(c)
	if !ok {
		return
	}

	var patch model.EditableApplicantInfo
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if err := service.UpdateApplicant(pc.DB.DB, applicant, patch); err != nil {
		pc.respondDomainError(c, err)
		return
	}

	audit.Record(pc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityApplicant,
		EntityID:   applicant.ID,
		Action:     "updated",
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	c.JSON(http.StatusOK, applicant)
}

// SubmitApplicant moves a draft into the verification queue.
// @Summary Submit an application for review
// @Description Requires consent and the documents matching the identity type
// @Tags Public
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} model.Applicant "Application submitted"
// @Failure 400 {object} utilities.ErrorResponse "Consent or documents missing"
// @Failure 404 {object} utilities.ErrorResponse "Applicant not found"
// @Failure 409 {object} utilities.ErrorResponse "Application is not a draft"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /public/applicants/{id}/submit [post]
func (pc *PublicController) SubmitApplicant(c *gin.Context) {
	applicant, ok := pc.applicantByID(c)
	if !ok {
		return
	}

	if err := service.SubmitApplicant(pc.DB.DB, applicant, c.ClientIP(), c.Request.UserAgent()); err != nil {
		pc.respondDomainError(c, err)
		return
	}

	audit.Record(pc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityApplicant,
		EntityID:   applicant.ID,
		Action:     "submitted",
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	c.JSON(http.StatusOK, applicant)
}

// UploadDocument attaches an identity document to an application.
// @Summary Upload an identity document
// @Description Multipart upload with fields kind and file. Replaces a previous upload of the same kind.
// @Tags Public
// @Accept mpfd
// @Produce json
// @Param id path string true "Applicant ID"
// @Param kind formData string true "Document kind (dni_front, dni_back, ce_front, ce_back, other)"
// @Param file formData file true "Document file"
// @Success 201 {object} model.ApplicantDocument "Document stored"
// @Failure 400 {object} utilities.ErrorResponse "Unknown kind"
// @Failure 404 {object} utilities.ErrorResponse "Applicant not found"
// @Failure 409 {object} utilities.ErrorResponse "Application can no longer be modified"
// @Failure 413 {object} utilities.ErrorResponse "File too large"
// @Failure 415 {object} utilities.ErrorResponse "File extension not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Router /public/applicants/{id}/documents [post]
func (pc *PublicController) UploadDocument(c *gin.Context) {
	applicant, ok := pc.applicantByID(c)
	if !ok {
		return
	}

	kind := c.PostForm("kind")

	rawFile, err := c.FormFile("file")
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return
	}

	extension := strings.ToLower(filepath.Ext(rawFile.Filename))
	if !allowedUploadExtensions()[extension] {
		c.JSON(http.StatusUnsupportedMediaType, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unsupported file extension: %s", extension),
		})
		return
	}
	if rawFile.Size > maxUploadBytes() {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
			Error: "File size exceeds the upload limit",
		})
		return
	}

	f, err := rawFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot open file"})
		return
	}
	defer func() {
		_ = f.Close()
	}()

	contentType := rawFile.Header.Get("Content-Type")
	doc, err := service.AttachDocument(pc.DB.DB, pc.Storage, applicant, kind, rawFile.Filename, contentType, rawFile.Size, f)
	if err != nil {
		pc.respondDomainError(c, err)
		return
	}

	audit.Record(pc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityApplicant,
		EntityID:   applicant.ID,
		Action:     "document_uploaded",
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		Payload:    map[string]interface{}{"kind": kind},
	})
	c.JSON(http.StatusCreated, doc)
}

// openLinkBySlug loads a link and enforces the concealment rule: anything
// other than an open link answers 404.
func (pc *PublicController) openLinkBySlug(c *gin.Context, slug string) (*model.RecruitmentLink, bool) {
	var link model.RecruitmentLink
	err := pc.DB.Preload("Campaign").Where("slug = ?", slug).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: linkNotFoundMessage})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve link: %s", err.Error()),
		})
		return nil, false
	}

	if !link.IsOpen(time.Now()) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: linkNotFoundMessage})
		return nil, false
	}
	return &link, true
}

func (pc *PublicController) applicantByID(c *gin.Context) (*model.Applicant, bool) {
	var applicant model.Applicant
	err := pc.DB.Where("id = ?", c.Param("id")).First(&applicant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Applicant not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve applicant: %s", err.Error()),
		})
		return nil, false
	}
	return &applicant, true
}

// respondDomainError maps workflow errors onto HTTP statuses.
func (pc *PublicController) respondDomainError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var missingDocs *service.MissingDocumentsError

	switch {
	case errors.Is(err, service.ErrLinkClosed):
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: linkNotFoundMessage})
	case errors.Is(err, service.ErrDuplicateApplicant),
		errors.Is(err, service.ErrBlacklisted):
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotEditable):
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrConsentRequired):
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
	case errors.As(err, &validationErr), errors.As(err, &missingDocs):
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to process application: %s", err.Error()),
		})
	}
}

func allowedUploadExtensions() map[string]bool {
	raw := os.Getenv("STAFFLINK_UPLOAD_EXTENSIONS")
	if raw == "" {
		raw = ".jpg,.jpeg,.png,.pdf"
	}
	allowed := map[string]bool{}
	for _, ext := range strings.Split(raw, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}
	return allowed
}

func maxUploadBytes() int64 {
	if raw := os.Getenv("STAFFLINK_UPLOAD_MAX_BYTES"); raw != "" {
		if limit, err := strconv.ParseInt(raw, 10, 64); err == nil && limit > 0 {
			return limit
		}
	}
	return 5 * 1024 * 1024
}
