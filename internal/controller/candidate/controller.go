// Package candidate provides the back-office view over applicants.
package candidate

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Lavodnos/stafflink/internal/audit"
	"github.com/Lavodnos/stafflink/internal/database"
	"github.com/Lavodnos/stafflink/internal/model"
	"github.com/Lavodnos/stafflink/internal/service"
	"github.com/Lavodnos/stafflink/internal/utilities"
)

// CandidateController handles applicant endpoints for back-office users
type CandidateController struct {
	DB *database.DBinstanceStruct
}

// NewCandidateController creates a new instance of CandidateController
func NewCandidateController(db *database.DBinstanceStruct) *CandidateController {
	return &CandidateController{
		DB: db,
	}
}

// ListCandidates returns applicants matching the filters. Users without
// candidates.read_all only see applicants on links they own.
// @Summary List candidates
// @Tags Candidate
// @Produce json
// @Param document query string false "Filter by document number"
// @Param campaign_id query string false "Filter by campaign"
// @Param link_id query string false "Filter by link"
// @Param status query string false "Filter by workflow status"
// @Success 200 {array} model.Applicant "Candidates"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Missing permission"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidates [get]
func (cc *CandidateController) ListCandidates(c *gin.Context) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	query := cc.DB.Model(&model.Applicant{}).
		Preload("Documents").
		Preload("Verification").
		Joins("JOIN recruitment_links ON recruitment_links.id = applicants.link_id").
		Order("applicants.created_at desc")

	if !auth.Permissions.Has("candidates.read_all") {
		query = query.Where("recruitment_links.owner_id = ?", auth.UserID)
	}
	if document := c.Query("document"); document != "" {
		query = query.Where("applicants.document_number = ?", strings.ToUpper(strings.TrimSpace(document)))
	}
	if campaignID := c.Query("campaign_id"); campaignID != "" {
		query = query.Where("recruitment_links.campaign_id = ?", campaignID)
	}
	if linkID := c.Query("link_id"); linkID != "" {
		query = query.Where("applicants.link_id = ?", linkID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("applicants.status = ?", status)
	}

	candidates := []model.Applicant{}
	if err := query.Find(&candidates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch candidates: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, candidates)
}

// GetCandidate returns one applicant with every sub-record preloaded.
// @Summary Get candidate by ID
// @Tags Candidate
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} model.Applicant "Candidate"
// @Failure 404 {object} utilities.ErrorResponse "Candidate not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidates/{id} [get]
func (cc *CandidateController) GetCandidate(c *gin.Context) {
	var applicant model.Applicant
	err := cc.DB.
		Preload("Documents").
		Preload("Verification").
		Preload("Process").
		Preload("Checklist").
		Preload("Assignment").
		Preload("Link").
		Preload("Link.Campaign").
		Where("id = ?", c.Param("id")).
		First(&applicant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Candidate not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve candidate: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, applicant)
}

type createCandidateInfo struct {
	LinkID string `json:"link_id" binding:"required"`
	model.EditableApplicantInfo
	ConsentGiven bool `json:"consent_given"`
}

// CreateCandidate registers an applicant on behalf of the back office,
// for walk-ins and referrals that never touch the public form. The link
// must still be open and the usual document and blacklist rules apply.
// @Summary Create candidate
// @Tags Candidate
// @Accept json
// @Produce json
// @Param Candidate body createCandidateInfo true "Candidate form data"
// @Success 201 {object} model.Applicant "Candidate created"
// @Failure 400 {object} utilities.ErrorResponse "Validation failed, duplicate document, or candidate blocked"
// @Failure 404 {object} utilities.ErrorResponse "Link not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidates [post]
func (cc *CandidateController) CreateCandidate(c *gin.Context) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var info createCandidateInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var link model.RecruitmentLink
	err = cc.DB.Where("id = ?", info.LinkID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Link not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve link: %s", err.Error()),
		})
		return
	}

	applicant, err := service.CreateApplicant(cc.DB.DB, &link, service.CreateApplicantInput{
		EditableApplicantInfo: info.EditableApplicantInfo,
		ConsentGiven:          info.ConsentGiven,
		OriginIP:              c.ClientIP(),
		UserAgent:             c.Request.UserAgent(),
	})
	if err != nil {
		respondCandidateError(c, err)
		return
	}

	audit.Record(cc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityApplicant,
		EntityID:   applicant.ID,
		Action:     "created_by_staff",
		ActorID:    auth.UserUUID(),
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
	})
	c.JSON(http.StatusCreated, applicant)
}

// EditCandidate patches an applicant on behalf of the back office. The same
// document and blacklist rules as the public form apply.
// @Summary Edit candidate
// @Tags Candidate
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param Candidate body model.EditableApplicantInfo true "Fields to update"
// @Success 200 {object} model.Applicant "Updated candidate"
// @Failure 400 {object} utilities.ErrorResponse "Validation failed"
// @Failure 404 {object} utilities.ErrorResponse "Candidate not found"
// @Failure 409 {object} utilities.ErrorResponse "Candidate no longer editable"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidates/{id} [patch]
func (cc *CandidateController) EditCandidate(c *gin.Context) {
	auth, applicant, ok := cc.candidateByID(c)
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

	if err := service.UpdateApplicant(cc.DB.DB, applicant, patch); err != nil {
		respondCandidateError(c, err)
		return
	}

	audit.Record(cc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityApplicant,
		EntityID:   applicant.ID,
		Action:     "updated_by_staff",
		ActorID:    auth.UserUUID(),
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
	})
	c.JSON(http.StatusOK, applicant)
}

// EditProcess patches the interview/induction/contract milestones,
// creating the process record on first write.
// @Summary Edit candidate process milestones
// @Tags Candidate
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param Process body model.ApplicantProcess true "Milestones to update (RFC 3339 timestamps)"
// @Success 200 {object} model.ApplicantProcess "Updated process record"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 404 {object} utilities.ErrorResponse "Candidate not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidates/{id}/process [patch]
func (cc *CandidateController) EditProcess(c *gin.Context) {
	auth, applicant, ok := cc.candidateByID(c)
	if !ok {
		return
	}

	var patch model.ApplicantProcess
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var process model.ApplicantProcess
	err := cc.DB.Where("applicant_id = ?", applicant.ID).First(&process).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		process = model.ApplicantProcess{ApplicantID: applicant.ID}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve process record: %s", err.Error()),
		})
		return
	}

	if patch.InterviewAt != nil {
		process.InterviewAt = patch.InterviewAt
	}
	if patch.InductionAt != nil {
		process.InductionAt = patch.InductionAt
	}
	if patch.ContractSignedAt != nil {
		process.ContractSignedAt = patch.ContractSignedAt
	}
	if patch.StartDate != nil {
		process.StartDate = patch.StartDate
	}
	if patch.Notes != "" {
		process.Notes = patch.Notes
	}
	process.UpdatedBy = auth.UserUUID()

	if err := cc.DB.Save(&process).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update process record: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, process)
}

// EditChecklist patches the physical-paperwork checklist, creating the
// record on first write. Absent fields keep their stored value.
// @Summary Edit candidate document checklist
// @Tags Candidate
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param Checklist body model.ApplicantChecklist true "Checklist items to update"
// @Success 200 {object} model.ApplicantChecklist "Updated checklist"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 404 {object} utilities.ErrorResponse "Candidate not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidates/{id}/documents [patch]
func (cc *CandidateController) EditChecklist(c *gin.Context) {
	auth, applicant, ok := cc.candidateByID(c)
	if !ok {
		return
	}

	var patch model.ApplicantChecklist
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var checklist model.ApplicantChecklist
	err := cc.DB.Where("applicant_id = ?", applicant.ID).First(&checklist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		checklist = model.ApplicantChecklist{ApplicantID: applicant.ID}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve checklist: %s", err.Error()),
		})
		return
	}

	if patch.CVReceived != nil {
		checklist.CVReceived = patch.CVReceived
	}
	if patch.CriminalRecordReceived != nil {
		checklist.CriminalRecordReceived = patch.CriminalRecordReceived
	}
	if patch.AddressProofReceived != nil {
		checklist.AddressProofReceived = patch.AddressProofReceived
	}
	if patch.PhotosReceived != nil {
		checklist.PhotosReceived = patch.PhotosReceived
	}
	if patch.BankAccountProvided != nil {
		checklist.BankAccountProvided = patch.BankAccountProvided
	}
	if patch.Notes != "" {
		checklist.Notes = patch.Notes
	}
	checklist.UpdatedBy = auth.UserUUID()

	if err := cc.DB.Save(&checklist).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update checklist: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, checklist)
}

// EditAssignment patches the contractual terms offered to a candidate,
// creating the assignment record on first write.
// @Summary Edit candidate assignment terms
// @Tags Candidate
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param Assignment body model.ApplicantAssignment true "Terms to update"
// @Success 200 {object} model.ApplicantAssignment "Updated assignment record"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 404 {object} utilities.ErrorResponse "Candidate not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /candidates/{id}/assignment [patch]
func (cc *CandidateController) EditAssignment(c *gin.Context) {
	_, applicant, ok := cc.candidateByID(c)
	if !ok {
		return
	}

	var patch model.ApplicantAssignment
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var assignment model.ApplicantAssignment
	err := cc.DB.Where("applicant_id = ?", applicant.ID).First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		assignment = model.ApplicantAssignment{ApplicantID: applicant.ID}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve assignment record: %s", err.Error()),
		})
		return
	}

	if patch.EmploymentCondition != "" {
		assignment.EmploymentCondition = patch.EmploymentCondition
	}
	if patch.CompanyName != "" {
		assignment.CompanyName = patch.CompanyName
	}
	if patch.Compensation != "" {
		assignment.Compensation = patch.Compensation
	}
	if patch.ContractRole != "" {
		assignment.ContractRole = patch.ContractRole
	}
	if patch.Notes != "" {
		assignment.Notes = patch.Notes
	}

	if err := cc.DB.Save(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update assignment record: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (cc *CandidateController) candidateByID(c *gin.Context) (model.AuthContext, *model.Applicant, bool) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return auth, nil, false
	}

	var applicant model.Applicant
	err = cc.DB.Where("id = ?", c.Param("id")).First(&applicant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Candidate not found"})
		return auth, nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve candidate: %s", err.Error()),
		})
		return auth, nil, false
	}
	return auth, &applicant, true
}

func respondCandidateError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotEditable):
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrDuplicateApplicant),
		errors.Is(err, service.ErrBlacklisted),
		errors.Is(err, service.ErrLinkClosed),
		errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update candidate: %s", err.Error()),
		})
	}
}
