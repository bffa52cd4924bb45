package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/monzter50/api-gamification-finances/internal/requestdata"
	"github.com/monzter50/api-gamification-finances/internal/services"
)

type WalletHandler struct {
	wallet services.WalletLedger
}

func NewWalletHandler(wallet services.WalletLedger) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

func (wh *WalletHandler) GetWallet(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	wallet, err := wh.wallet.GetWallet(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, wallet)
}

func (wh *WalletHandler) Spend(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		Amount int    `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := wh.wallet.SpendCoins(c.Request.Context(), rd.UserID, req.Amount, req.Reason); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (wh *WalletHandler) CanAfford(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	cost, err := strconv.Atoi(c.Query("cost"))
	if err != nil || cost < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cost"})
		return
	}
	ok, err := wh.wallet.CanAfford(c.Request.Context(), rd.UserID, cost)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"can_afford": ok})
}
