package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sa-birth-backend/internal/models"
	"sa-birth-backend/internal/services"
)

type UserHandler struct {
	engine  *services.CalibrationEngine
	wallets WalletReader
}

func NewUserHandler(engine *services.CalibrationEngine, wallets WalletReader) *UserHandler {
	return &UserHandler{
		engine:  engine,
		wallets: wallets,
	}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	player := c.GetString("player_id")
	if player == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	session, err := h.engine.GetSession(c.Request.Context(), player)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player":             player,
		"login_session_id":   c.GetString("session_id"),
		"calibration":        session,
		"calibration_active": session != nil && session.Active,
	})
}

func (h *UserHandler) GetWallet(c *gin.Context) {
	player := c.GetString("player_id")

	if h.wallets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Wallets unavailable",
			"code":  services.CodeEscrowUnavailable,
		})
		return
	}

	wallet, err := h.wallets.GetWallet(c.Request.Context(), player)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get wallet",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balance": models.BalanceResponse{
			Balance:       wallet.Balance,
			LockedBalance: wallet.LockedBalance,
			TotalWagered:  wallet.TotalWagered,
			TotalWon:      wallet.TotalWon,
		},
	})
}
