// Package campaign provides HTTP handlers for hiring campaign operations.
package campaign

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Lavodnos/stafflink/internal/database"
	"github.com/Lavodnos/stafflink/internal/model"
	"github.com/Lavodnos/stafflink/internal/utilities"
)

// CampaignController handles campaign related endpoints
type CampaignController struct {
	DB *database.DBinstanceStruct
}

// NewCampaignController creates a new instance of CampaignController
func NewCampaignController(db *database.DBinstanceStruct) *CampaignController {
	return &CampaignController{
		DB: db,
	}
}

type createCampaignInfo struct {
	Code string `json:"code" binding:"required"`
	model.EditableCampaignInfo
}

// ListCampaigns returns all campaigns, optionally only active ones.
// @Summary List campaigns
// @Tags Campaign
// @Produce json
// @Param active query boolean false "Only active campaigns when true"
// @Success 200 {array} model.Campaign "Campaigns"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Missing permission"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /campaigns [get]
func (cc *CampaignController) ListCampaigns(c *gin.Context) {
	query := cc.DB.Order("created_at desc")
	if c.Query("active") == "true" {
		query = query.Where("is_active")
	}

	campaigns := []model.Campaign{}
	if err := query.Find(&campaigns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch campaigns: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

// GetCampaign returns one campaign with its links.
// @Summary Get campaign by ID
// @Tags Campaign
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} model.Campaign "Campaign"
// @Failure 404 {object} utilities.ErrorResponse "Campaign not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /campaigns/{id} [get]
func (cc *CampaignController) GetCampaign(c *gin.Context) {
	var campaign model.Campaign
	err := cc.DB.Preload("Links").Where("id = ?", c.Param("id")).First(&campaign).Error
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
	c.JSON(http.StatusOK, campaign)
}

// CreateCampaign registers a new campaign.
// @Summary Create campaign
// @Tags Campaign
// @Accept json
// @Produce json
// @Param Campaign body createCampaignInfo true "Campaign data"
// @Success 201 {object} model.Campaign "Campaign created"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or duplicate code"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /campaigns [post]
func (cc *CampaignController) CreateCampaign(c *gin.Context) {
	var info createCampaignInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	campaign := model.Campaign{
		Code:                 info.Code,
		EditableCampaignInfo: info.EditableCampaignInfo,
	}
	if err := cc.DB.Create(&campaign).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: "A campaign with this code already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create campaign: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

// EditCampaign patches the editable campaign fields.
// @Summary Edit campaign
// @Tags Campaign
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param Campaign body model.EditableCampaignInfo true "Fields to update"
// @Success 200 {object} model.Campaign "Updated campaign"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 404 {object} utilities.ErrorResponse "Campaign not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /campaigns/{id} [patch]
func (cc *CampaignController) EditCampaign(c *gin.Context) {
	var campaign model.Campaign
	err := cc.DB.Where("id = ?", c.Param("id")).First(&campaign).Error
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

	var patch model.EditableCampaignInfo
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	utilities.MergeNonEmpty(&campaign.EditableCampaignInfo, &patch)
	if err := cc.DB.Save(&campaign).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update campaign: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, campaign)
}
