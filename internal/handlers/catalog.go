package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/monzter50/api-gamification-finances/internal/services"
	"github.com/monzter50/api-gamification-finances/internal/types"
)

type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type rewardRequest struct {
	Kind              string     `json:"kind"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Rarity            string     `json:"rarity"`
	CriteriaKind      string     `json:"criteria_kind"`
	CriteriaThreshold int64      `json:"criteria_threshold"`
	RewardCoins       int        `json:"reward_coins"`
	RewardExperience  int        `json:"reward_experience"`
	Limited           bool       `json:"limited"`
	AvailableFrom     *time.Time `json:"available_from"`
	AvailableUntil    *time.Time `json:"available_until"`
}

func (ch *CatalogHandler) Create(c *gin.Context) {
	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	def := &types.RewardDefinition{
		Kind:              types.RewardKind(req.Kind),
		Name:              req.Name,
		Description:       req.Description,
		Rarity:            types.Rarity(req.Rarity),
		CriteriaKind:      types.CriteriaKind(req.CriteriaKind),
		CriteriaThreshold: req.CriteriaThreshold,
		RewardCoins:       req.RewardCoins,
		RewardExperience:  req.RewardExperience,
		Limited:           req.Limited,
		AvailableFrom:     req.AvailableFrom,
		AvailableUntil:    req.AvailableUntil,
		Active:            true,
	}
	if err := ch.catalog.CreateReward(c.Request.Context(), def); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, def)
}

func (ch *CatalogHandler) Get(c *gin.Context) {
	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reward id"})
		return
	}
	def, err := ch.catalog.GetReward(c.Request.Context(), rewardID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, def)
}

func (ch *CatalogHandler) List(c *gin.Context) {
	kind := types.RewardKind(c.Query("kind"))
	activeOnly := c.Query("active") == "true"
	defs, err := ch.catalog.ListRewards(c.Request.Context(), kind, activeOnly)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, defs)
}

type rewardPatchRequest struct {
	Name              *string    `json:"name"`
	Description       *string    `json:"description"`
	Rarity            *string    `json:"rarity"`
	CriteriaKind      *string    `json:"criteria_kind"`
	CriteriaThreshold *int64     `json:"criteria_threshold"`
	RewardCoins       *int       `json:"reward_coins"`
	RewardExperience  *int       `json:"reward_experience"`
	Limited           *bool      `json:"limited"`
	AvailableFrom     *time.Time `json:"available_from"`
	AvailableUntil    *time.Time `json:"available_until"`
	Active            *bool      `json:"active"`
}

func (ch *CatalogHandler) Update(c *gin.Context) {
	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reward id"})
		return
	}
	var req rewardPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	patch := services.RewardPatch{
		Name:              req.Name,
		Description:       req.Description,
		Rarity:            req.Rarity,
		CriteriaKind:      req.CriteriaKind,
		CriteriaThreshold: req.CriteriaThreshold,
		RewardCoins:       req.RewardCoins,
		RewardExperience:  req.RewardExperience,
		Limited:           req.Limited,
		AvailableFrom:     req.AvailableFrom,
		AvailableUntil:    req.AvailableUntil,
		Active:            req.Active,
	}
	if err := ch.catalog.UpdateReward(c.Request.Context(), rewardID, patch); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CatalogHandler) Delete(c *gin.Context) {
	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reward id"})
		return
	}
	if err := ch.catalog.DeleteReward(c.Request.Context(), rewardID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
