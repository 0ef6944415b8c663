package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"sa-birth-backend/internal/models"
	"sa-birth-backend/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*services.RedisService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	redisService, err := services.NewRedisServiceFromClient(context.Background(), client)
	if err != nil {
		t.Fatalf("Failed to set up Redis service: %v", err)
	}
	t.Cleanup(func() { redisService.Close() })

	return redisService, mr
}

func TestRedisLedger(t *testing.T) {
	redisService, mr := setupTestRedis(t)
	ctx := context.Background()

	if _, err := redisService.Get(ctx, "missing"); !errors.Is(err, services.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}

	if err := redisService.ExtendTTL(ctx, "missing", time.Hour); !errors.Is(err, services.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound extending a missing key, got %v", err)
	}

	if err := redisService.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Failed to put: %v", err)
	}
	if err := redisService.ExtendTTL(ctx, "k", time.Hour); err != nil {
		t.Fatalf("Failed to extend: %v", err)
	}

	// A later write must not drop the expiry.
	if err := redisService.Put(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Failed to overwrite: %v", err)
	}
	if ttl := mr.TTL("k"); ttl != time.Hour {
		t.Errorf("Expected TTL to survive overwrite, got %s", ttl)
	}

	data, err := redisService.Get(ctx, "k")
	if err != nil || string(data) != "v2" {
		t.Errorf("Expected v2, got %q (err=%v)", data, err)
	}

	mr.FastForward(time.Hour)
	if _, err := redisService.Get(ctx, "k"); !errors.Is(err, services.ErrRecordNotFound) {
		t.Errorf("Expected expired key, got %v", err)
	}
}

func TestRedisSessionStore(t *testing.T) {
	redisService, mr := setupTestRedis(t)
	ctx := context.Background()
	store := services.NewSessionStore(redisService, services.TTLSession)

	session := &models.CalibrationSession{Player: "alice", House: "house", SessionID: 5, Active: true}
	if err := store.PutSession(ctx, session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if err := store.ExtendSession(ctx, "alice"); err != nil {
		t.Fatalf("Failed to extend session: %v", err)
	}

	if ttl := mr.TTL("calibration:session:alice"); ttl != services.TTLSession {
		t.Errorf("Expected TTL %s, got %s", services.TTLSession, ttl)
	}

	got, err := store.GetSession(ctx, "alice")
	if err != nil || got == nil || *got != *session {
		t.Errorf("Expected %+v, got %+v (err=%v)", session, got, err)
	}

	for i := 0; i < 3; i++ {
		if _, err := store.IncrementSessionCounter(ctx); err != nil {
			t.Fatalf("Failed to increment counter: %v", err)
		}
	}
	if counter, _ := store.SessionCounter(ctx); counter != 3 {
		t.Errorf("Expected counter 3, got %d", counter)
	}
}

func TestRedisHubSettlement(t *testing.T) {
	redisService, _ := setupTestRedis(t)
	ctx := context.Background()
	hub := services.NewRedisHub(redisService.Client(), 10_000)

	created, err := hub.FundWallet(ctx, "house", 1_000_000)
	if err != nil || !created {
		t.Fatalf("Failed to fund house wallet: created=%v err=%v", created, err)
	}
	if created, _ := hub.FundWallet(ctx, "house", 5); created {
		t.Error("Funding an existing wallet should be a no-op")
	}

	if err := hub.StartGame(ctx, "sa-birth", 1, "alice", "house", 1000, 1000); err != nil {
		t.Fatalf("Failed to lock stakes: %v", err)
	}

	alice, _ := hub.GetWallet(ctx, "alice")
	if alice.Balance != 9000 || alice.LockedBalance != 1000 {
		t.Errorf("Unexpected alice wallet after lock: %+v", alice)
	}

	if err := hub.StartGame(ctx, "sa-birth", 1, "alice", "house", 1, 1); err == nil {
		t.Error("Reusing a hub session id should fail")
	}

	if err := hub.EndGame(ctx, 1, true); err != nil {
		t.Fatalf("Failed to settle: %v", err)
	}

	alice, _ = hub.GetWallet(ctx, "alice")
	if alice.Balance != 11000 || alice.LockedBalance != 0 || alice.TotalWon != 2000 {
		t.Errorf("Unexpected alice wallet after win: %+v", alice)
	}

	house, _ := hub.GetWallet(ctx, "house")
	if house.Balance != 999_000 || house.LockedBalance != 0 {
		t.Errorf("Unexpected house wallet after loss: %+v", house)
	}

	game, err := hub.GetGame(ctx, 1)
	if err != nil || game.Status != models.HubGameSettled || !game.Player1Won {
		t.Errorf("Unexpected hub game %+v (err=%v)", game, err)
	}

	if err := hub.EndGame(ctx, 1, false); err == nil {
		t.Error("Settling twice should fail")
	}
	if err := hub.EndGame(ctx, 99, false); err == nil {
		t.Error("Settling an unknown session should fail")
	}
}

func TestRedisHubHouseWins(t *testing.T) {
	redisService, _ := setupTestRedis(t)
	ctx := context.Background()
	hub := services.NewRedisHub(redisService.Client(), 10_000)

	if err := hub.StartGame(ctx, "sa-birth", 2, "bob", "house", 4000, 4000); err != nil {
		t.Fatalf("Failed to lock stakes: %v", err)
	}
	if err := hub.EndGame(ctx, 2, false); err != nil {
		t.Fatalf("Failed to settle: %v", err)
	}

	bob, _ := hub.GetWallet(ctx, "bob")
	if bob.Balance != 6000 || bob.LockedBalance != 0 || bob.TotalWagered != 4000 {
		t.Errorf("Unexpected bob wallet: %+v", bob)
	}

	house, _ := hub.GetWallet(ctx, "house")
	if house.Balance != 14000 || house.TotalWon != 8000 {
		t.Errorf("Unexpected house wallet: %+v", house)
	}
}

func TestRedisHubLargeBalancesStayExact(t *testing.T) {
	redisService, mr := setupTestRedis(t)
	ctx := context.Background()
	hub := services.NewRedisHub(redisService.Client(), 10_000)

	if _, err := hub.FundWallet(ctx, "house", 100_000_000_000_000); err != nil {
		t.Fatalf("Failed to fund house wallet: %v", err)
	}

	if err := hub.StartGame(ctx, "sa-birth", 4, "alice", "house", 999, 1); err != nil {
		t.Fatalf("Failed to lock stakes: %v", err)
	}
	if err := hub.EndGame(ctx, 4, false); err != nil {
		t.Fatalf("Failed to settle: %v", err)
	}

	house, err := hub.GetWallet(ctx, "house")
	if err != nil {
		t.Fatalf("Failed to read house wallet: %v", err)
	}
	if house.Balance != 100_000_000_000_999 || house.TotalWon != 1000 {
		t.Errorf("Unexpected house wallet %+v", house)
	}

	// Balances are stored as plain integers, never in exponent form.
	if raw := mr.HGet("hub:wallet:house", "balance"); raw != "100000000000999" {
		t.Errorf("Expected integer balance field, got %q", raw)
	}

	game, err := hub.GetGame(ctx, 4)
	if err != nil || game.Player1Points != 999 || game.Player2Points != 1 || game.Player1Won {
		t.Errorf("Unexpected hub game %+v (err=%v)", game, err)
	}

	if _, err := hub.FundWallet(ctx, "whale", models.MaxPoints+1); err == nil {
		t.Error("Expected oversized balance to be rejected")
	}
	if err := hub.StartGame(ctx, "sa-birth", 5, "alice", "house", models.MaxPoints+1, 0); err == nil {
		t.Error("Expected oversized stake to be rejected")
	}
	if err := hub.StartGame(ctx, "sa-birth", 5, "alice", "house", -1, 0); err == nil {
		t.Error("Expected negative stake to be rejected")
	}
}

func TestRedisHubInsufficientBalance(t *testing.T) {
	redisService, _ := setupTestRedis(t)
	ctx := context.Background()
	hub := services.NewRedisHub(redisService.Client(), 100)

	if err := hub.StartGame(ctx, "sa-birth", 3, "carol", "house", 500, 10); err == nil {
		t.Fatal("Expected insufficient balance error")
	}

	if _, err := hub.GetGame(ctx, 3); err == nil {
		t.Error("Failed lock must not create a hub game")
	}

	escrow := services.NewEscrowCoordinator(hub, "sa-birth")
	if err := escrow.Lock(ctx, 3, "carol", "house", 500, 10); !errors.Is(err, services.ErrEscrowUnavailable) {
		t.Errorf("Expected ErrEscrowUnavailable, got %v", err)
	}
}

func TestRedisRateLimit(t *testing.T) {
	redisService, _ := setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := redisService.CheckRateLimit(ctx, "alice", "senses", 3, time.Minute)
		if err != nil || !allowed {
			t.Fatalf("Call %d should be allowed (err=%v)", i, err)
		}
	}

	allowed, err := redisService.CheckRateLimit(ctx, "alice", "senses", 3, time.Minute)
	if err != nil || allowed {
		t.Errorf("Fourth call should be limited (err=%v)", err)
	}

	if err := redisService.ClearRateLimit(ctx, "alice", "senses"); err != nil {
		t.Fatalf("Failed to clear rate limit: %v", err)
	}
	if allowed, _ := redisService.CheckRateLimit(ctx, "alice", "senses", 3, time.Minute); !allowed {
		t.Error("Cleared rate limit should allow again")
	}
}

func TestRedisRateLimitAlwaysExpires(t *testing.T) {
	redisService, mr := setupTestRedis(t)
	ctx := context.Background()

	if _, err := redisService.CheckRateLimit(ctx, "alice", "start", 3, time.Minute); err != nil {
		t.Fatalf("Failed to check rate limit: %v", err)
	}
	if ttl := mr.TTL("ratelimit:alice:start"); ttl != time.Minute {
		t.Errorf("Expected a one minute window, got %s", ttl)
	}

	// A counter left without an expiry must not lock the player out forever.
	if err := mr.Set("ratelimit:bob:start", "9"); err != nil {
		t.Fatalf("Failed to seed counter: %v", err)
	}
	allowed, err := redisService.CheckRateLimit(ctx, "bob", "start", 3, time.Minute)
	if err != nil || allowed {
		t.Errorf("Expected bob to still be limited (err=%v)", err)
	}
	if ttl := mr.TTL("ratelimit:bob:start"); ttl != time.Minute {
		t.Errorf("Expected the stale counter to get an expiry, got %s", ttl)
	}

	mr.FastForward(time.Minute)
	if allowed, _ := redisService.CheckRateLimit(ctx, "bob", "start", 3, time.Minute); !allowed {
		t.Error("Expected bob to be allowed after the window")
	}

	// Later calls in the same window keep the original expiry.
	mr.FastForward(30 * time.Second)
	if _, err := redisService.CheckRateLimit(ctx, "bob", "start", 3, time.Minute); err != nil {
		t.Fatalf("Failed to check rate limit: %v", err)
	}
	if ttl := mr.TTL("ratelimit:bob:start"); ttl != 30*time.Second {
		t.Errorf("Expected the window not to slide, got %s", ttl)
	}
}

func TestCalibrationEngineOverRedis(t *testing.T) {
	redisService, _ := setupTestRedis(t)
	hub := services.NewRedisHub(redisService.Client(), 10_000)
	store := services.NewSessionStore(redisService, services.TTLSession)
	engine := services.NewCalibrationEngine(store, services.NewEscrowCoordinator(hub, "sa-birth"), nil, nil)

	ctx := services.WithPlayer(context.Background(), "alice")
	if err := engine.Start(ctx, "alice", "house", 11, 1000, 1000); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	if _, err := engine.SetCharacter(ctx, "alice", models.CharacterRobert); err != nil {
		t.Fatalf("Failed to set character: %v", err)
	}
	for id := uint32(0); id < models.SenseCount; id++ {
		sub := services.SenseSubmission{
			SenseID:     id,
			MazeID:      models.MazeID(models.CharacterRobert, id),
			Points:      100,
			ElapsedTime: 100,
			Score:       10_000,
			Proof:       []byte{1},
		}
		if err := engine.SubmitSense(ctx, "alice", sub); err != nil {
			t.Fatalf("Failed to submit sense %d: %v", id, err)
		}
	}

	result, err := engine.AttemptExit(ctx, "alice")
	if err != nil || !result.Won || result.TotalScore != 60_000 {
		t.Fatalf("Unexpected exit %+v (err=%v)", result, err)
	}

	alice, _ := hub.GetWallet(ctx, "alice")
	if alice.Balance != 11000 {
		t.Errorf("Expected winner balance 11000, got %d", alice.Balance)
	}

	// A second session orphaned by a new start settles for the house.
	if err := engine.Start(ctx, "alice", "house", 12, 1000, 1000); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	if err := engine.Start(ctx, "alice", "house", 13, 1000, 1000); err != nil {
		t.Fatalf("Failed to restart: %v", err)
	}

	game, err := hub.GetGame(ctx, 12)
	if err != nil || game.Status != models.HubGameSettled || game.Player1Won {
		t.Errorf("Expected orphaned session settled for the house, got %+v (err=%v)", game, err)
	}
}
