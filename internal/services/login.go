package services

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ChallengeStore interface {
	StoreChallenge(ctx context.Context, player, nonce string, ttl time.Duration) error
	ConsumeChallenge(ctx context.Context, player string) (string, error)
}

// LoginService signs players in by challenge and response. A player is the
// hex encoding of an ed25519 public key and proves it by signing a one-time
// challenge message.
type LoginService struct {
	challenges ChallengeStore
	jwt        *JWTService
	ttl        time.Duration
}

func NewLoginService(challenges ChallengeStore, jwt *JWTService, ttl time.Duration) *LoginService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LoginService{challenges: challenges, jwt: jwt, ttl: ttl}
}

func LoginMessage(nonce string) string {
	return "sa-birth login " + nonce
}

// ParsePlayerKey normalises a hex ed25519 public key into a player id.
func ParsePlayerKey(player string) (string, ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(player), "0x"))
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return "", nil, fmt.Errorf("%w: player must be a hex ed25519 public key", ErrInvalidInput)
	}
	return hex.EncodeToString(raw), ed25519.PublicKey(raw), nil
}

// Challenge issues the message the player must sign. A new challenge
// replaces any pending one.
func (s *LoginService) Challenge(ctx context.Context, player string) (string, string, error) {
	player, _, err := ParsePlayerKey(player)
	if err != nil {
		return "", "", err
	}

	nonce := uuid.NewString()
	if err := s.challenges.StoreChallenge(ctx, player, nonce, s.ttl); err != nil {
		return "", "", err
	}
	return player, LoginMessage(nonce), nil
}

// Login checks the signature over the pending challenge and returns a token.
// The challenge is spent whether or not the signature verifies.
func (s *LoginService) Login(ctx context.Context, player, signatureHex string) (string, string, error) {
	player, key, err := ParsePlayerKey(player)
	if err != nil {
		return "", "", err
	}

	nonce, err := s.challenges.ConsumeChallenge(ctx, player)
	if errors.Is(err, ErrRecordNotFound) {
		return "", "", fmt.Errorf("%w: no pending challenge", ErrLoginFailed)
	}
	if err != nil {
		return "", "", err
	}

	signature, err := hex.DecodeString(strings.TrimPrefix(signatureHex, "0x"))
	if err != nil || !ed25519.Verify(key, []byte(LoginMessage(nonce)), signature) {
		return "", "", fmt.Errorf("%w: bad signature", ErrLoginFailed)
	}

	token, err := s.jwt.GenerateToken(player)
	if err != nil {
		return "", "", err
	}
	return player, token, nil
}
