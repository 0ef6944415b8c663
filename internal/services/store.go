package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sa-birth-backend/internal/models"
)

// Ledger is the keyed record capability calibration state is persisted in.
// Records expire unless their lifetime is extended; Put keeps any existing
// expiry and Get reports missing or expired keys as ErrRecordNotFound.
type Ledger interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	ExtendTTL(ctx context.Context, key string, ttl time.Duration) error
}

// SessionStore is the typed accessor over a Ledger for sessions, sense
// results, the session counter and the leaderboard.
type SessionStore struct {
	ledger Ledger
	ttl    time.Duration
}

func NewSessionStore(ledger Ledger, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = TTLSession
	}
	return &SessionStore{ledger: ledger, ttl: ttl}
}

func (s *SessionStore) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.ledger.Get(ctx, key)
	if errors.Is(err, ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *SessionStore) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := s.ledger.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) extend(ctx context.Context, key string) error {
	if err := s.ledger.ExtendTTL(ctx, key, s.ttl); err != nil {
		return fmt.Errorf("failed to extend %s: %w", key, err)
	}
	return nil
}

// GetSession returns nil without error when the player has no session.
func (s *SessionStore) GetSession(ctx context.Context, player string) (*models.CalibrationSession, error) {
	var session models.CalibrationSession
	found, err := s.get(ctx, fmt.Sprintf(KeySession, player), &session)
	if err != nil || !found {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) PutSession(ctx context.Context, session *models.CalibrationSession) error {
	return s.put(ctx, fmt.Sprintf(KeySession, session.Player), session)
}

func (s *SessionStore) ExtendSession(ctx context.Context, player string) error {
	return s.extend(ctx, fmt.Sprintf(KeySession, player))
}

// GetSenseResult returns nil without error when nothing is recorded.
func (s *SessionStore) GetSenseResult(ctx context.Context, player string, senseID uint32) (*models.SenseResult, error) {
	var result models.SenseResult
	found, err := s.get(ctx, fmt.Sprintf(KeySenseResult, player, senseID), &result)
	if err != nil || !found {
		return nil, err
	}
	return &result, nil
}

func (s *SessionStore) PutSenseResult(ctx context.Context, player string, result *models.SenseResult) error {
	return s.put(ctx, fmt.Sprintf(KeySenseResult, player, result.SenseID), result)
}

func (s *SessionStore) ExtendSenseResult(ctx context.Context, player string, senseID uint32) error {
	return s.extend(ctx, fmt.Sprintf(KeySenseResult, player, senseID))
}

func (s *SessionStore) SessionCounter(ctx context.Context) (uint32, error) {
	var counter uint32
	if _, err := s.get(ctx, KeySessionCounter, &counter); err != nil {
		return 0, err
	}
	return counter, nil
}

// IncrementSessionCounter bumps the process-wide counter, saturating at the
// maximum instead of wrapping.
func (s *SessionStore) IncrementSessionCounter(ctx context.Context) (uint32, error) {
	counter, err := s.SessionCounter(ctx)
	if err != nil {
		return 0, err
	}

	counter = models.SaturatingIncrement(counter)
	if err := s.put(ctx, KeySessionCounter, counter); err != nil {
		return 0, err
	}
	return counter, nil
}

func (s *SessionStore) GetLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	if _, err := s.get(ctx, KeyLeaderboard, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *SessionStore) PutLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error {
	return s.put(ctx, KeyLeaderboard, entries)
}
