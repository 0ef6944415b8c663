package services

import "sa-birth-backend/internal/models"

// Verdict is the outcome of validating a sense submission.
type Verdict int

const (
	VerdictValid Verdict = iota
	VerdictMazeMismatch
	VerdictScoreOverflow
	VerdictScoreMismatch
	VerdictDegenerateInput
	VerdictScoreOutOfRange
	VerdictEmptyProof
)

func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictMazeMismatch:
		return "maze id mismatch"
	case VerdictScoreOverflow:
		return "points x time overflows"
	case VerdictScoreMismatch:
		return "score != points x time"
	case VerdictDegenerateInput:
		return "zero points or time"
	case VerdictScoreOutOfRange:
		return "score above sense maximum"
	case VerdictEmptyProof:
		return "empty proof"
	default:
		return "unknown"
	}
}

type SenseSubmission struct {
	SenseID     uint32
	MazeID      uint32
	Points      uint64
	ElapsedTime uint64
	Score       uint64
	Proof       []byte
}

// ValidateSense mirrors the arithmetic constraints of the off-chain proof
// circuit. It does not verify the proof itself, only that one is attached.
func ValidateSense(character models.Character, sub SenseSubmission) Verdict {
	if sub.MazeID != models.MazeID(character, sub.SenseID) {
		return VerdictMazeMismatch
	}

	expected, ok := models.CheckedMul(sub.Points, sub.ElapsedTime)
	if !ok {
		return VerdictScoreOverflow
	}
	if sub.Score != expected {
		return VerdictScoreMismatch
	}

	if sub.Points == 0 || sub.ElapsedTime == 0 {
		return VerdictDegenerateInput
	}
	if sub.Score > models.MaxSenseScore {
		return VerdictScoreOutOfRange
	}

	if len(sub.Proof) == 0 {
		return VerdictEmptyProof
	}

	return VerdictValid
}
