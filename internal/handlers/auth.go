package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sa-birth-backend/internal/services"
)

type AuthHandler struct {
	login *services.LoginService
}

func NewAuthHandler(login *services.LoginService) *AuthHandler {
	return &AuthHandler{login: login}
}

type ChallengeRequest struct {
	Player string `json:"player" binding:"required"`
}

type LoginRequest struct {
	Player    string `json:"player" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

func (h *AuthHandler) Challenge(c *gin.Context) {
	var req ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	player, message, err := h.login.Challenge(c.Request.Context(), req.Player)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player":  player,
		"message": message,
	})
}

func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	player, token, err := h.login.Login(c.Request.Context(), req.Player, req.Signature)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"player":  player,
	})
}
