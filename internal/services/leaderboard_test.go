package services_test

import (
	"context"
	"testing"

	"sa-birth-backend/internal/models"
	"sa-birth-backend/internal/services"
)

func TestLeaderboardReadsAscending(t *testing.T) {
	ctx := context.Background()
	store := services.NewSessionStore(services.NewMemoryLedger(), services.TTLSession)
	board := services.NewLeaderboard(store)

	entries := []models.LeaderboardEntry{
		{Player: "a", TotalScore: 900},
		{Player: "b", TotalScore: 100},
		{Player: "c", TotalScore: 500},
		{Player: "d", TotalScore: 100},
		{Player: "e", TotalScore: 30_000_000},
	}
	for _, e := range entries {
		if err := board.Record(ctx, e); err != nil {
			t.Fatalf("Failed to record entry: %v", err)
		}
	}

	got, err := board.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read leaderboard: %v", err)
	}

	want := []string{"b", "d", "c", "a", "e"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(got))
	}
	for i, player := range want {
		if got[i].Player != player {
			t.Errorf("Position %d: expected %s, got %s", i, player, got[i].Player)
		}
	}

	// Read sorts a copy; the stored collection keeps insertion order.
	stored, err := store.GetLeaderboard(ctx)
	if err != nil {
		t.Fatalf("Failed to load stored leaderboard: %v", err)
	}
	if stored[0].Player != "a" || stored[4].Player != "e" {
		t.Errorf("Stored order changed: %+v", stored)
	}
}

func TestLeaderboardRecordsDuplicates(t *testing.T) {
	ctx := context.Background()
	board := services.NewLeaderboard(services.NewSessionStore(services.NewMemoryLedger(), services.TTLSession))

	entry := models.LeaderboardEntry{Player: "a", TotalScore: 5}
	for i := 0; i < 3; i++ {
		if err := board.Record(ctx, entry); err != nil {
			t.Fatalf("Failed to record entry: %v", err)
		}
	}

	got, _ := board.Read(ctx)
	if len(got) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(got))
	}
}
