package services

import (
	"context"
	"sort"

	"sa-birth-backend/internal/models"
)

// Leaderboard appends winning runs and serves them ranked by total score,
// lowest first. Entries are never updated or removed.
type Leaderboard struct {
	store *SessionStore
}

func NewLeaderboard(store *SessionStore) *Leaderboard {
	return &Leaderboard{store: store}
}

// Record appends entry. Callers are responsible for only passing qualifying runs.
func (l *Leaderboard) Record(ctx context.Context, entry models.LeaderboardEntry) error {
	entries, err := l.store.GetLeaderboard(ctx)
	if err != nil {
		return err
	}

	return l.store.PutLeaderboard(ctx, append(entries, entry))
}

func (l *Leaderboard) Read(ctx context.Context) ([]models.LeaderboardEntry, error) {
	entries, err := l.store.GetLeaderboard(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalScore < entries[j].TotalScore
	})

	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return entries, nil
}
