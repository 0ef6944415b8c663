package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"sa-birth-backend/internal/models"
)

// CalibrationEngine owns the calibration session state machine:
// NoSession -> Active -> Closed, with a fresh Active session allowed once the
// previous one is closed or orphaned.
//
// Every operation holds mu for its whole duration, escrow calls included, so
// operations are observed in a single total order.
type CalibrationEngine struct {
	mu          sync.Mutex
	store       *SessionStore
	leaderboard *Leaderboard
	escrow      *EscrowCoordinator
	auth        Authorizer
	broadcaster Broadcaster
	now         func() time.Time
}

func NewCalibrationEngine(store *SessionStore, escrow *EscrowCoordinator, auth Authorizer, broadcaster Broadcaster) *CalibrationEngine {
	if broadcaster == nil {
		broadcaster = nopBroadcaster{}
	}
	if auth == nil {
		auth = ContextAuthorizer{}
	}

	return &CalibrationEngine{
		store:       store,
		leaderboard: NewLeaderboard(store),
		escrow:      escrow,
		auth:        auth,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

func (ce *CalibrationEngine) SetClock(now func() time.Time) {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	ce.now = now
}

// activeSession loads the player's session and requires it to be active.
func (ce *CalibrationEngine) activeSession(ctx context.Context, player string) (*models.CalibrationSession, error) {
	session, err := ce.store.GetSession(ctx, player)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if !session.Active {
		return nil, ErrSessionNotActive
	}
	return session, nil
}

// Start opens a new session for player against house and locks both stakes
// with the hub. An active session left behind by the player is settled in the
// house's favour first; that cleanup never blocks the new start.
func (ce *CalibrationEngine) Start(ctx context.Context, player, house string, sessionID uint32, playerStake, houseStake int64) error {
	ce.mu.Lock()
	defer ce.mu.Unlock()

	if player == house {
		return fmt.Errorf("%w: player and house must differ", ErrInvalidInput)
	}

	if err := ce.auth.Authorize(ctx, player, sessionID, playerStake); err != nil {
		return err
	}

	existing, err := ce.store.GetSession(ctx, player)
	if err != nil {
		return err
	}
	if existing != nil && existing.Active {
		log.Printf("Closing orphaned session %d for %s", existing.SessionID, player)
		ce.escrow.ReleaseOrphan(ctx, existing.SessionID)
	}

	if err := ce.escrow.Lock(ctx, sessionID, player, house, playerStake, houseStake); err != nil {
		return err
	}

	session := &models.CalibrationSession{
		Player:       player,
		House:        house,
		Character:    models.CharacterAlice,
		SessionID:    sessionID,
		PlayerPoints: playerStake,
		HousePoints:  houseStake,
		Active:       true,
	}

	if err := ce.store.PutSession(ctx, session); err != nil {
		return err
	}
	return ce.store.ExtendSession(ctx, player)
}

// SetCharacter records the character for the player's active session and
// returns the hub session id.
func (ce *CalibrationEngine) SetCharacter(ctx context.Context, player string, character models.Character) (uint32, error) {
	ce.mu.Lock()
	defer ce.mu.Unlock()

	if err := ce.auth.Authorize(ctx, player, character); err != nil {
		return 0, err
	}

	if !character.Valid() {
		return 0, ErrInvalidCharacter
	}

	session, err := ce.activeSession(ctx, player)
	if err != nil {
		return 0, err
	}

	session.Character = character
	if err := ce.store.PutSession(ctx, session); err != nil {
		return 0, err
	}
	if err := ce.store.ExtendSession(ctx, player); err != nil {
		return 0, err
	}

	if _, err := ce.store.IncrementSessionCounter(ctx); err != nil {
		return 0, err
	}

	ce.broadcaster.BroadcastSessionStarted(player, models.SessionStartedEvent{
		Character: character,
		SessionID: session.SessionID,
	})

	return session.SessionID, nil
}

// SubmitSense records one completed maze sense. Checks run in a fixed order
// and the first failure wins; a rejected submission changes nothing.
func (ce *CalibrationEngine) SubmitSense(ctx context.Context, player string, sub SenseSubmission) error {
	ce.mu.Lock()
	defer ce.mu.Unlock()

	if err := ce.auth.Authorize(ctx, player, sub.SenseID, sub.MazeID, sub.Points, sub.ElapsedTime, sub.Score); err != nil {
		return err
	}

	if !models.ValidSense(sub.SenseID) {
		return ErrInvalidSense
	}

	session, err := ce.activeSession(ctx, player)
	if err != nil {
		return err
	}

	if session.CompletedSenses.IsCompleted(sub.SenseID) {
		return ErrAlreadyCompleted
	}

	if verdict := ValidateSense(session.Character, sub); verdict != VerdictValid {
		log.Printf("Rejected sense %d for %s: %s", sub.SenseID, player, verdict)
		return &VerificationError{Verdict: verdict}
	}

	result := &models.SenseResult{
		SenseID:     sub.SenseID,
		Points:      sub.Points,
		ElapsedTime: sub.ElapsedTime,
		Score:       sub.Score,
	}
	if err := ce.store.PutSenseResult(ctx, player, result); err != nil {
		return err
	}
	if err := ce.store.ExtendSenseResult(ctx, player, sub.SenseID); err != nil {
		return err
	}

	session.CompletedSenses = session.CompletedSenses.MarkCompleted(sub.SenseID)
	session.TotalScore = models.SaturatingAdd(session.TotalScore, sub.Score)
	if err := ce.store.PutSession(ctx, session); err != nil {
		return err
	}
	if err := ce.store.ExtendSession(ctx, player); err != nil {
		return err
	}

	ce.broadcaster.BroadcastSenseCompleted(player, models.SenseCompletedEvent{
		SenseID:     sub.SenseID,
		Score:       sub.Score,
		Points:      sub.Points,
		ElapsedTime: sub.ElapsedTime,
	})

	return nil
}

// AttemptExit closes the player's session and settles it with the hub. The
// session is closed before the outcome is evaluated, so a failed settlement
// still leaves it closed and must be reconciled out of band.
func (ce *CalibrationEngine) AttemptExit(ctx context.Context, player string) (models.ExitResult, error) {
	ce.mu.Lock()
	defer ce.mu.Unlock()

	if err := ce.auth.Authorize(ctx, player); err != nil {
		return models.ExitResult{}, err
	}

	session, err := ce.activeSession(ctx, player)
	if err != nil {
		return models.ExitResult{}, err
	}

	session.Active = false
	if err := ce.store.PutSession(ctx, session); err != nil {
		return models.ExitResult{}, err
	}
	if err := ce.store.ExtendSession(ctx, player); err != nil {
		return models.ExitResult{}, err
	}

	result := models.ExitResult{TotalScore: session.TotalScore}
	outcome := models.OutcomeEvent{Character: session.Character, TotalScore: session.TotalScore}

	switch {
	case !session.CompletedSenses.Complete():
		if err := ce.escrow.Release(ctx, session.SessionID, false); err != nil {
			return models.ExitResult{}, err
		}
		return result, nil

	case session.TotalScore > models.ScoreCap:
		if err := ce.escrow.Release(ctx, session.SessionID, false); err != nil {
			return models.ExitResult{}, err
		}
		ce.broadcaster.BroadcastOverload(player, outcome)
		return result, nil
	}

	if err := ce.escrow.Release(ctx, session.SessionID, true); err != nil {
		return models.ExitResult{}, err
	}

	entry := models.LeaderboardEntry{
		Player:     player,
		Character:  session.Character,
		TotalScore: session.TotalScore,
		Timestamp:  uint64(ce.now().Unix()),
	}
	// A failed leaderboard write never undoes a settled win.
	if err := ce.leaderboard.Record(ctx, entry); err != nil {
		log.Printf("Failed to record leaderboard entry for %s (session %d): %v", player, session.SessionID, err)
	}

	ce.broadcaster.BroadcastComplete(player, outcome)

	result.Won = true
	return result, nil
}

// GetSession returns the player's current or last session, or nil.
func (ce *CalibrationEngine) GetSession(ctx context.Context, player string) (*models.CalibrationSession, error) {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	return ce.store.GetSession(ctx, player)
}

// GetSenseResult returns nil for unknown senses and out of range ids.
func (ce *CalibrationEngine) GetSenseResult(ctx context.Context, player string, senseID uint32) (*models.SenseResult, error) {
	if !models.ValidSense(senseID) {
		return nil, nil
	}

	ce.mu.Lock()
	defer ce.mu.Unlock()
	return ce.store.GetSenseResult(ctx, player, senseID)
}

func (ce *CalibrationEngine) GetLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	return ce.leaderboard.Read(ctx)
}

// GetGame always returns nil: sessions are indexed by player, not by hub
// session id. Use GetSession.
func (ce *CalibrationEngine) GetGame(_ context.Context, _ uint32) (*models.CalibrationSession, error) {
	return nil, nil
}

func (ce *CalibrationEngine) SessionCounter(ctx context.Context) (uint32, error) {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	return ce.store.SessionCounter(ctx)
}
