// Package verification provides the review queue and decision endpoints.
package verification

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Lavodnos/stafflink/internal/audit"
	"github.com/Lavodnos/stafflink/internal/database"
	"github.com/Lavodnos/stafflink/internal/model"
	"github.com/Lavodnos/stafflink/internal/service"
	"github.com/Lavodnos/stafflink/internal/utilities"
)

// VerificationController handles verification queue endpoints
type VerificationController struct {
	DB *database.DBinstanceStruct
}

// NewVerificationController creates a new instance of VerificationController
func NewVerificationController(db *database.DBinstanceStruct) *VerificationController {
	return &VerificationController{
		DB: db,
	}
}

type correctionInfo struct {
	Reason string `json:"reason"`
}

// GetQueue lists applicants waiting for a decision, oldest submission first.
// Users without verification.read_all only see applicants on their own links.
// @Summary Get the verification queue
// @Tags Verification
// @Produce json
// @Success 200 {array} model.Applicant "Applicants in submitted or under_review status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Missing permission"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /verification/queue [get]
func (vc *VerificationController) GetQueue(c *gin.Context) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	ownerID := ""
	if !auth.Permissions.Has("verification.read_all") {
		ownerID = auth.UserID
	}

	queue, err := service.VerificationQueue(vc.DB.DB, ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch verification queue: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, queue)
}

// GetDetail returns one applicant with documents and verification record,
// the full view a reviewer works from.
// @Summary Get a verification case
// @Tags Verification
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} model.Applicant "Applicant with documents and verification"
// @Failure 403 {object} utilities.ErrorResponse "Applicant is on another recruiter's link"
// @Failure 404 {object} utilities.ErrorResponse "Applicant not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /verification/{id} [get]
func (vc *VerificationController) GetDetail(c *gin.Context) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var applicant model.Applicant
	err = vc.DB.
		Preload("Documents").
		Preload("Verification").
		Preload("Link").
		Where("id = ?", c.Param("id")).
		First(&applicant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Applicant not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve applicant: %s", err.Error()),
		})
		return
	}
	if !auth.Permissions.Has("verification.read_all") && applicant.Link.OwnerID.String() != auth.UserID {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "Applicant is on another recruiter's link"})
		return
	}
	c.JSON(http.StatusOK, applicant)
}

// StartReview marks a submitted applicant as under review. Idempotent.
// @Summary Take an applicant into review
// @Tags Verification
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} model.Applicant "Applicant under review"
// @Failure 400 {object} utilities.ErrorResponse "Applicant not in the queue"
// @Failure 404 {object} utilities.ErrorResponse "Applicant not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /verification/{id}/start [post]
func (vc *VerificationController) StartReview(c *gin.Context) {
	_, applicant, ok := vc.applicantByID(c)
	if !ok {
		return
	}

	if err := service.StartReview(vc.DB.DB, applicant); err != nil {
		respondVerificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, applicant)
}

// EditContactFields applies a controlled correction to the applicant's
// contact data. Only the allow-listed fields can be written.
// @Summary Correct applicant contact fields
// @Tags Verification
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param Fields body map[string]string true "Allow-listed fields: first_name, last_name, second_last_name, email, phone, alternate_phone"
// @Success 200 {object} model.Applicant "Updated applicant"
// @Failure 400 {object} utilities.ErrorResponse "Field outside the allow-list"
// @Failure 404 {object} utilities.ErrorResponse "Applicant not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /verification/{id} [patch]
func (vc *VerificationController) EditContactFields(c *gin.Context) {
	auth, applicant, ok := vc.applicantByID(c)
	if !ok {
		return
	}

	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if err := service.ApplyControlledUpdate(vc.DB.DB, applicant, fields); err != nil {
		respondVerificationError(c, err)
		return
	}

	audit.Record(vc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityApplicant,
		EntityID:   applicant.ID,
		Action:     "contact_corrected",
		ActorID:    auth.UserUUID(),
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
	})
	c.JSON(http.StatusOK, applicant)
}

// Decide records the reviewer's verdict on an applicant.
// @Summary Decide on an applicant
// @Description approved moves the applicant to verified_ok, observed to observed, rejected to rejected
// @Tags Verification
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param Decision body service.DecisionInput true "Verdict"
// @Success 200 {object} model.Applicant "Applicant after the decision"
// @Failure 400 {object} utilities.ErrorResponse "Unknown decision or applicant not awaiting one"
// @Failure 404 {object} utilities.ErrorResponse "Applicant not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /verification/{id}/decision [post]
func (vc *VerificationController) Decide(c *gin.Context) {
	auth, applicant, ok := vc.applicantByID(c)
	if !ok {
		return
	}

	var input service.DecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if err := service.Decide(vc.DB.DB, applicant, input, auth); err != nil {
		respondVerificationError(c, err)
		return
	}

	audit.Record(vc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityVerification,
		EntityID:   applicant.ID,
		Action:     "decision_" + input.Status,
		ActorID:    auth.UserUUID(),
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
		Payload:    map[string]interface{}{"reason": input.Reason},
	})
	c.JSON(http.StatusOK, applicant)
}

// RequestCorrection sends the application back to the applicant as observed.
// @Summary Request a correction from the applicant
// @Tags Verification
// @Accept json
// @Produce json
// @Param id path string true "Applicant ID"
// @Param Correction body correctionInfo false "Reason shown to the applicant"
// @Success 200 {object} model.Applicant "Applicant moved to observed"
// @Failure 404 {object} utilities.ErrorResponse "Applicant not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /verification/{id}/request-correction [post]
func (vc *VerificationController) RequestCorrection(c *gin.Context) {
	auth, applicant, ok := vc.applicantByID(c)
	if !ok {
		return
	}

	var info correctionInfo
	_ = c.ShouldBindJSON(&info)

	if err := service.RequestCorrection(vc.DB.DB, applicant, info.Reason, auth); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to request correction: %s", err.Error()),
		})
		return
	}

	audit.Record(vc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityVerification,
		EntityID:   applicant.ID,
		Action:     "correction_requested",
		ActorID:    auth.UserUUID(),
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
		Payload:    map[string]interface{}{"reason": info.Reason},
	})
	c.JSON(http.StatusOK, applicant)
}

func (vc *VerificationController) applicantByID(c *gin.Context) (model.AuthContext, *model.Applicant, bool) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return auth, nil, false
	}

	var applicant model.Applicant
	err = vc.DB.Preload("Verification").Where("id = ?", c.Param("id")).First(&applicant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Applicant not found"})
		return auth, nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve applicant: %s", err.Error()),
		})
		return auth, nil, false
	}
	return auth, &applicant, true
}

func respondVerificationError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
		Error: fmt.Sprintf("Failed to process verification: %s", err.Error()),
	})
}
