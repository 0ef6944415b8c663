package services

import (
	"context"
	"log"
)

// Hub is the external escrow service holding both parties' stakes while a
// calibration session runs.
type Hub interface {
	StartGame(ctx context.Context, gameID string, sessionID uint32, player1, player2 string, player1Points, player2Points int64) error
	EndGame(ctx context.Context, sessionID uint32, player1Won bool) error
}

// EscrowCoordinator issues lock and release requests to the hub on behalf of
// the calibration game identified by gameID.
type EscrowCoordinator struct {
	hub    Hub
	gameID string
}

func NewEscrowCoordinator(hub Hub, gameID string) *EscrowCoordinator {
	return &EscrowCoordinator{hub: hub, gameID: gameID}
}

func (e *EscrowCoordinator) Lock(ctx context.Context, sessionID uint32, player, house string, playerStake, houseStake int64) error {
	if e.hub == nil {
		return escrowError("lock", errHubNotConfigured)
	}

	if err := e.hub.StartGame(ctx, e.gameID, sessionID, player, house, playerStake, houseStake); err != nil {
		return escrowError("lock", err)
	}
	return nil
}

func (e *EscrowCoordinator) Release(ctx context.Context, sessionID uint32, playerWon bool) error {
	if e.hub == nil {
		return escrowError("release", errHubNotConfigured)
	}

	if err := e.hub.EndGame(ctx, sessionID, playerWon); err != nil {
		return escrowError("release", err)
	}
	return nil
}

// ReleaseOrphan settles an abandoned session in the house's favour. The old
// session may no longer be known to the hub, so failures are only logged.
func (e *EscrowCoordinator) ReleaseOrphan(ctx context.Context, sessionID uint32) {
	if err := e.Release(ctx, sessionID, false); err != nil {
		log.Printf("Orphaned session %d cleanup failed: %v", sessionID, err)
	}
}
