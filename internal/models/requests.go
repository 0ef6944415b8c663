package models

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// StartRequest opens a session against the house. House and HousePoints may
// be omitted; when present they must name the configured house and match
// the player's stake.
type StartRequest struct {
	House        string `json:"house"`
	SessionID    uint32 `json:"session_id"`
	PlayerPoints int64  `json:"player_points" binding:"min=0,max=9007199254740991"`
	HousePoints  *int64 `json:"house_points" binding:"omitempty,min=0,max=9007199254740991"`
}

type CharacterRequest struct {
	Character *uint32 `json:"character" binding:"required"`
}

type SenseRequest struct {
	SenseID  *uint32 `json:"sense_id" binding:"required"`
	MazeID   uint32  `json:"maze_id"`
	Points   uint64  `json:"points"`
	TimeMs   uint64  `json:"time_ms"`
	Score    uint64  `json:"score"`
	ProofHex string  `json:"proof_hex"`
}

// Proof decodes the hex proof payload. An optional 0x prefix is accepted.
func (r *SenseRequest) Proof() ([]byte, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(r.ProofHex, "0x"), "0X")
	proof, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proof_hex: %v", err)
	}
	return proof, nil
}
