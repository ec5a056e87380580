// Package link provides HTTP handlers for recruitment link operations.
package link

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Lavodnos/stafflink/internal/audit"
	"github.com/Lavodnos/stafflink/internal/database"
	"github.com/Lavodnos/stafflink/internal/model"
	"github.com/Lavodnos/stafflink/internal/service"
	"github.com/Lavodnos/stafflink/internal/utilities"
)

// LinkController handles recruitment link endpoints
type LinkController struct {
	DB *database.DBinstanceStruct
}

// NewLinkController creates a new instance of LinkController
func NewLinkController(db *database.DBinstanceStruct) *LinkController {
	return &LinkController{
		DB: db,
	}
}

type createLinkInfo struct {
	CampaignID string `json:"campaign_id" binding:"required"`
	Slug       string `json:"slug"`
	model.EditableLinkInfo
}

// ListLinks returns links visible to the requesting user. Users without
// links.read_all only see links they own.
// @Summary List recruitment links
// @Tags Link
// @Produce json
// @Param campaign_id query string false "Filter by campaign"
// @Param status query string false "Filter by status"
// @Success 200 {array} model.RecruitmentLink "Links"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Missing permission"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /links [get]
func (lc *LinkController) ListLinks(c *gin.Context) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	query := lc.DB.Preload("Campaign").Order("created_at desc")
	if !auth.Permissions.Has("links.read_all") {
		query = query.Where("owner_id = ?", auth.UserID)
	}
	if campaignID := c.Query("campaign_id"); campaignID != "" {
		query = query.Where("campaign_id = ?", campaignID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	links := []model.RecruitmentLink{}
	if err := query.Find(&links).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch links: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, links)
}

// GetLink returns one link. Owners may always read their own links.
// @Summary Get recruitment link by ID
// @Tags Link
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} model.RecruitmentLink "Link"
// @Failure 403 {object} utilities.ErrorResponse "Link owned by another user"
// @Failure 404 {object} utilities.ErrorResponse "Link not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /links/{id} [get]
func (lc *LinkController) GetLink(c *gin.Context) {
	_, link, ok := lc.authorizedLink(c, "links.read_all")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, link)
}

// CreateLink creates an active link under a campaign, owned by the caller.
// @Summary Create recruitment link
// @Tags Link
// @Accept json
// @Produce json
// @Param Link body createLinkInfo true "Link data; slug derived from campaign and title when omitted"
// @Success 201 {object} model.RecruitmentLink "Link created"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 404 {object} utilities.ErrorResponse "Campaign not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /links [post]
func (lc *LinkController) CreateLink(c *gin.Context) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var info createLinkInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	var campaign model.Campaign
	err = lc.DB.Where("id = ?", info.CampaignID).First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Campaign not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve campaign: %s", err.Error()),
		})
		return
	}

	ownerID := auth.UserUUID()
	if ownerID == nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Authenticated user id is not a UUID"})
		return
	}

	link, err := service.CreateLink(lc.DB.DB, &campaign, service.CreateLinkInput{
		EditableLinkInfo: info.EditableLinkInfo,
		Slug:             info.Slug,
		OwnerID:          *ownerID,
		OwnerName:        auth.UserName,
	})
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create link: %s", err.Error()),
		})
		return
	}

	audit.Record(lc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityLink,
		EntityID:   link.ID,
		Action:     "created",
		ActorID:    ownerID,
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
	})
	c.JSON(http.StatusCreated, link)
}

// EditLink patches the editable link fields.
// @Summary Edit recruitment link
// @Tags Link
// @Accept json
// @Produce json
// @Param id path string true "Link ID"
// @Param Link body model.EditableLinkInfo true "Fields to update"
// @Success 200 {object} model.RecruitmentLink "Updated link"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 403 {object} utilities.ErrorResponse "Link owned by another user"
// @Failure 404 {object} utilities.ErrorResponse "Link not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /links/{id} [patch]
func (lc *LinkController) EditLink(c *gin.Context) {
	auth, link, ok := lc.authorizedLink(c, "links.update_all")
	if !ok {
		return
	}

	var patch model.EditableLinkInfo
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	utilities.MergeNonEmpty(&link.EditableLinkInfo, &patch)
	if err := lc.DB.Save(link).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update link: %s", err.Error()),
		})
		return
	}

	audit.Record(lc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityLink,
		EntityID:   link.ID,
		Action:     "updated",
		ActorID:    auth.UserUUID(),
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
	})
	c.JSON(http.StatusOK, link)
}

// DeleteLink removes a link and its applications.
// @Summary Delete recruitment link
// @Tags Link
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} utilities.MessageResponse "Link deleted"
// @Failure 403 {object} utilities.ErrorResponse "Link owned by another user"
// @Failure 404 {object} utilities.ErrorResponse "Link not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /links/{id} [delete]
func (lc *LinkController) DeleteLink(c *gin.Context) {
	auth, link, ok := lc.authorizedLink(c, "links.update_all")
	if !ok {
		return
	}

	if err := lc.DB.Delete(link).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete link: %s", err.Error()),
		})
		return
	}

	audit.Record(lc.DB.DB, audit.Entry{
		EntityType: model.AuditEntityLink,
		EntityID:   link.ID,
		Action:     "deleted",
		ActorID:    auth.UserUUID(),
		ActorName:  auth.UserName,
		IPAddress:  c.ClientIP(),
	})
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Link deleted"})
}

// ExpireLink closes a link for new applications. Idempotent.
// @Summary Expire recruitment link
// @Tags Link
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} model.RecruitmentLink "Link expired"
// @Failure 403 {object} utilities.ErrorResponse "Link owned by another user"
// @Failure 404 {object} utilities.ErrorResponse "Link not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /links/{id}/expire [post]
func (lc *LinkController) ExpireLink(c *gin.Context) {
	lc.setStatus(c, model.LinkStatusExpired, "links.expire")
}

// RevokeLink cancels a link. Idempotent.
// @Summary Revoke recruitment link
// @Tags Link
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} model.RecruitmentLink "Link revoked"
// @Failure 403 {object} utilities.ErrorResponse "Link owned by another user"
// @Failure 404 {object} utilities.ErrorResponse "Link not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /links/{id}/revoke [post]
func (lc *LinkController) RevokeLink(c *gin.Context) {
	lc.setStatus(c, model.LinkStatusRevoked, "links.revoke")
}

// ActivateLink reopens a link, provided its deadline has not passed.
// @Summary Activate recruitment link
// @Tags Link
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} model.RecruitmentLink "Link activated"
// @Failure 400 {object} utilities.ErrorResponse "Deadline already passed"
// @Failure 403 {object} utilities.ErrorResponse "Link owned by another user"
// @Failure 404 {object} utilities.ErrorResponse "Link not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /links/{id}/activate [post]
func (lc *LinkController) ActivateLink(c *gin.Context) {
	lc.setStatus(c, model.LinkStatusActive, "links.activate")
}

func (lc *LinkController) setStatus(c *gin.Context, status, allPerm string) {
	auth, link, ok := lc.authorizedLink(c, allPerm)
	if !ok {
		return
	}

	if status == model.LinkStatusActive && !time.Now().Before(link.ExpiresAt) {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Cannot activate a link past its deadline",
		})
		return
	}

	previous := link.Status
	if err := service.SetLinkStatus(lc.DB.DB, link, status); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update link status: %s", err.Error()),
		})
		return
	}

	if previous != status {
		audit.Record(lc.DB.DB, audit.Entry{
			EntityType: model.AuditEntityLink,
			EntityID:   link.ID,
			Action:     status,
			ActorID:    auth.UserUUID(),
			ActorName:  auth.UserName,
			IPAddress:  c.ClientIP(),
			Payload:    map[string]interface{}{"previous_status": previous},
		})
	}
	c.JSON(http.StatusOK, link)
}

// authorizedLink loads the link and checks access: the allPerm permission
// grants access to every link, otherwise the caller must own it.
func (lc *LinkController) authorizedLink(c *gin.Context, allPerm string) (model.AuthContext, *model.RecruitmentLink, bool) {
	auth, err := utilities.ExtractAuth(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return auth, nil, false
	}

	var link model.RecruitmentLink
	err = lc.DB.Preload("Campaign").Where("id = ?", c.Param("id")).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Link not found"})
		return auth, nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve link: %s", err.Error()),
		})
		return auth, nil, false
	}

	if !auth.Permissions.Has(allPerm) && link.OwnerID.String() != auth.UserID {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to access this link",
		})
		return auth, nil, false
	}
	return auth, &link, true
}
