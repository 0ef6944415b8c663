package services

import "sa-birth-backend/internal/models"

// Broadcaster publishes lifecycle notifications to off-chain observers.
// Implementations must not block the caller.
type Broadcaster interface {
	BroadcastSessionStarted(player string, event models.SessionStartedEvent)
	BroadcastSenseCompleted(player string, event models.SenseCompletedEvent)
	BroadcastComplete(player string, event models.OutcomeEvent)
	BroadcastOverload(player string, event models.OutcomeEvent)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastSessionStarted(string, models.SessionStartedEvent) {}
func (nopBroadcaster) BroadcastSenseCompleted(string, models.SenseCompletedEvent) {}
func (nopBroadcaster) BroadcastComplete(string, models.OutcomeEvent)              {}
func (nopBroadcaster) BroadcastOverload(string, models.OutcomeEvent)              {}
