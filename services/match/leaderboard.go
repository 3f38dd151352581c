package match

import (
	game_constants "Trivium/constants/game"
	"Trivium/models/postgres"
	"Trivium/services/store"
	"context"
	"errors"
	"log"
	"sort"
	"sync"
)

type LeaderboardEntry struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Score   *int   `json:"score"`
}

// Leaderboard ranks the room's players by score, highest first, players
// without a score last.
func (m *Manager) Leaderboard(ctx context.Context, identifier string) ([]LeaderboardEntry, error) {
	room, err := m.GetStatus(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return m.rank(ctx, room), nil
}

// rank never fails: a player whose profile cannot be read keeps the name
// and photo cached on the room, or "Unknown".
func (m *Manager) rank(ctx context.Context, room *postgres.MatchRoom) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, len(room.Players))

	var wg sync.WaitGroup
	for i := range room.Players {
		wg.Add(1)
		go func(i int, p postgres.Player) {
			defer wg.Done()
			entries[i] = m.entryFor(ctx, p)
		}(i, room.Players[i])
	}
	wg.Wait()

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Score, entries[j].Score
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return entries
}

func (m *Manager) entryFor(ctx context.Context, p postgres.Player) LeaderboardEntry {
	entry := LeaderboardEntry{
		UID:     p.UID,
		Name:    p.Username,
		Picture: p.PhotoURL,
	}
	if p.Score != nil {
		score := *p.Score
		entry.Score = &score
	}

	if m.profiles != nil {
		profile, err := m.profiles.FindProfile(ctx, p.UID)
		switch {
		case err == nil:
			if profile.Name != "" {
				entry.Name = profile.Name
			}
			if profile.Picture != "" {
				entry.Picture = profile.Picture
			}
		case errors.Is(err, store.ErrNotFound):
			log.Printf("[LEADERBOARD] no profile for %s", p.UID)
		default:
			log.Printf("[LEADERBOARD] profile lookup for %s failed: %v", p.UID, err)
		}
	}

	if entry.Name == "" {
		entry.Name = game_constants.UnknownPlayerName
	}
	return entry
}
