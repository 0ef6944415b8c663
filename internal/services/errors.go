package services

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotPlayer          = errors.New("caller is not authorized for this player")
	ErrAlreadyCompleted   = errors.New("sense already completed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrSessionNotActive   = errors.New("session not active")
	ErrInvalidCharacter   = errors.New("invalid character")
	ErrInvalidSense       = errors.New("invalid sense")
	ErrVerificationFailed = errors.New("verification failed")
	ErrEscrowUnavailable  = errors.New("escrow unavailable")
	ErrLoginFailed        = errors.New("login failed")

	// ErrRecordNotFound is returned by a Ledger for missing or expired keys.
	ErrRecordNotFound = errors.New("record not found")

	errHubNotConfigured = errors.New("hub not configured")
)

// Stable error codes exposed to clients. The numbering follows the game hub's
// convention so existing frontends can keep switching on them.
const (
	CodeUnknown             = 0
	CodeSessionNotFound     = 1
	CodeNotPlayer           = 2
	CodeAlreadyCompleted    = 3
	CodeInvalidInput        = 4
	CodeSessionAlreadyEnded = 5
	CodeSessionActive       = 6
	CodeInvalidCharacter    = 7
	CodeInvalidSense        = 8
	CodeVerificationFailed  = 9
	CodeSessionNotActive    = 10
	CodeEscrowUnavailable   = 11
	CodeOverloadExceeded    = 12
)

func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return CodeSessionNotFound
	case errors.Is(err, ErrNotPlayer), errors.Is(err, ErrLoginFailed):
		return CodeNotPlayer
	case errors.Is(err, ErrAlreadyCompleted):
		return CodeAlreadyCompleted
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrInvalidCharacter):
		return CodeInvalidCharacter
	case errors.Is(err, ErrInvalidSense):
		return CodeInvalidSense
	case errors.Is(err, ErrVerificationFailed):
		return CodeVerificationFailed
	case errors.Is(err, ErrSessionNotActive):
		return CodeSessionNotActive
	case errors.Is(err, ErrEscrowUnavailable):
		return CodeEscrowUnavailable
	default:
		return CodeUnknown
	}
}

// VerificationError keeps the specific rule a submission broke. Callers only
// see "verification failed"; the verdict is for logs and tests.
type VerificationError struct {
	Verdict Verdict
}

func (e *VerificationError) Error() string {
	return ErrVerificationFailed.Error()
}

func (e *VerificationError) Unwrap() error {
	return ErrVerificationFailed
}

func escrowError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrEscrowUnavailable, op, err)
}
