package models

type EventType string

const (
	EventSessionStarted EventType = "start"
	EventSenseCompleted EventType = "sense_completed"
	EventComplete       EventType = "complete"
	EventOverload       EventType = "overload"
)

type SessionStartedEvent struct {
	Character Character `json:"character"`
	SessionID uint32    `json:"session_id"`
}

// SenseCompletedEvent never carries the proof payload; proofs are verified off-chain.
type SenseCompletedEvent struct {
	SenseID     uint32 `json:"sense_id"`
	Score       uint64 `json:"score"`
	Points      uint64 `json:"points"`
	ElapsedTime uint64 `json:"time_ms"`
}

// OutcomeEvent is emitted for both the complete and overload outcomes.
type OutcomeEvent struct {
	Character  Character `json:"character"`
	TotalScore uint64    `json:"total_score"`
}
