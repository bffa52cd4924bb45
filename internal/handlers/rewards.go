package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
	"github.com/monzter50/api-gamification-finances/internal/requestdata"
	"github.com/monzter50/api-gamification-finances/internal/services"
)

type RewardsHandler struct {
	coordinator services.RewardCoordinator
	unlocks     services.UnlockRegistry
}

func NewRewardsHandler(coordinator services.RewardCoordinator, unlocks services.UnlockRegistry) *RewardsHandler {
	return &RewardsHandler{coordinator: coordinator, unlocks: unlocks}
}

// Claim grants a single reward if the caller has not already unlocked it.
// A repeat claim is a 200 with granted=false, not an error. A partial payout
// is surfaced as 500 alongside the unlock result so clients can retry the
// check later without re-claiming.
func (rh *RewardsHandler) Claim(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reward id"})
		return
	}
	result, err := rh.coordinator.GrantIfEligible(c.Request.Context(), rd.UserID, rewardID)
	if err != nil {
		if apierr.IsCode(err, apierr.CodePartialPayout) {
			c.JSON(http.StatusInternalServerError, gin.H{"result": result, "error": err.Error()})
			return
		}
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

// CheckAll evaluates the full catalog against the caller's current stats and
// grants everything newly satisfied.
func (rh *RewardsHandler) CheckAll(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	result, err := rh.coordinator.CheckAndGrantAll(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (rh *RewardsHandler) ListUnlocked(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	unlocks, err := rh.unlocks.ListUnlocked(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, unlocks)
}
