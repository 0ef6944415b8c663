package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sa-birth-backend/internal/models"
	"sa-birth-backend/internal/services"
)

type WalletReader interface {
	GetWallet(ctx context.Context, player string) (*models.Wallet, error)
}

type CalibrationHandler struct {
	engine  *services.CalibrationEngine
	houseID string
}

// NewCalibrationHandler serves calibration runs played against houseID. The
// house is the only counterparty a player may stake against.
func NewCalibrationHandler(engine *services.CalibrationEngine, houseID string) *CalibrationHandler {
	return &CalibrationHandler{engine: engine, houseID: houseID}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidCharacter),
		errors.Is(err, services.ErrInvalidSense),
		errors.Is(err, services.ErrVerificationFailed):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotPlayer):
		return http.StatusForbidden
	case errors.Is(err, services.ErrLoginFailed):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSessionNotActive),
		errors.Is(err, services.ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, services.ErrEscrowUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError hides internal detail: clients get the public error and code only.
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	code := services.ErrorCode(err)

	message := "Internal error"
	switch {
	case errors.Is(err, services.ErrVerificationFailed):
		message = services.ErrVerificationFailed.Error()
	case code != services.CodeUnknown:
		message = err.Error()
	}

	c.JSON(status, gin.H{
		"error": message,
		"code":  code,
	})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"details": err.Error(),
		"code":    services.CodeInvalidInput,
	})
}

func (h *CalibrationHandler) Start(c *gin.Context) {
	player := c.GetString("player_id")

	var req models.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if req.House != "" && req.House != h.houseID {
		respondError(c, fmt.Errorf("%w: unknown house %q", services.ErrInvalidInput, req.House))
		return
	}

	housePoints := req.PlayerPoints
	if req.HousePoints != nil && *req.HousePoints != req.PlayerPoints {
		respondError(c, fmt.Errorf("%w: house stake must match the player's stake", services.ErrInvalidInput))
		return
	}

	if req.SessionID == 0 {
		req.SessionID = models.GenerateSessionID()
	}

	if err := h.engine.Start(c.Request.Context(), player, h.houseID, req.SessionID, req.PlayerPoints, housePoints); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": req.SessionID,
	})
}

func (h *CalibrationHandler) SetCharacter(c *gin.Context) {
	player := c.GetString("player_id")

	var req models.CharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sessionID, err := h.engine.SetCharacter(c.Request.Context(), player, models.Character(*req.Character))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sessionID,
	})
}

func (h *CalibrationHandler) SubmitSense(c *gin.Context) {
	player := c.GetString("player_id")

	var req models.SenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	proof, err := req.Proof()
	if err != nil {
		bindError(c, err)
		return
	}

	err = h.engine.SubmitSense(c.Request.Context(), player, services.SenseSubmission{
		SenseID:     *req.SenseID,
		MazeID:      req.MazeID,
		Points:      req.Points,
		ElapsedTime: req.TimeMs,
		Score:       req.Score,
		Proof:       proof,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CalibrationHandler) AttemptExit(c *gin.Context) {
	player := c.GetString("player_id")

	result, err := h.engine.AttemptExit(c.Request.Context(), player)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *CalibrationHandler) GetSession(c *gin.Context) {
	player := c.GetString("player_id")

	session, err := h.engine.GetSession(c.Request.Context(), player)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *CalibrationHandler) GetSenseResult(c *gin.Context) {
	player := c.GetString("player_id")

	senseID, err := strconv.ParseUint(c.Param("sense_id"), 10, 32)
	if err != nil {
		bindError(c, err)
		return
	}

	result, err := h.engine.GetSenseResult(c.Request.Context(), player, uint32(senseID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *CalibrationHandler) GetGame(c *gin.Context) {
	sessionID, err := strconv.ParseUint(c.Param("session_id"), 10, 32)
	if err != nil {
		bindError(c, err)
		return
	}

	game, err := h.engine.GetGame(c.Request.Context(), uint32(sessionID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": game})
}

func (h *CalibrationHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.engine.GetLeaderboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"leaderboard": entries,
		"count":       len(entries),
	})
}
