package match

import (
	"Trivium/models/postgres"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardSortsWithMissingScoresLast(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	room := &postgres.MatchRoom{Capacity: 5, Status: postgres.RoomStarted, HostUID: "a"}
	room.Players = append(room.Players,
		postgres.Player{UID: "nil-1", Username: "N1"},
		postgres.Player{UID: "a", Username: "A", Score: intPtr(10)},
		postgres.Player{UID: "nil-2", Username: "N2"},
		postgres.Player{UID: "b", Username: "B", Score: intPtr(30)},
		postgres.Player{UID: "c", Username: "C", Score: intPtr(10)},
	)
	require.NoError(t, env.mem.CreateRoom(ctx, room))

	board, err := env.manager.Leaderboard(ctx, room.ID)
	require.NoError(t, err)

	var order []string
	for _, e := range board {
		order = append(order, e.UID)
	}
	assert.Equal(t, []string{"b", "a", "c", "nil-1", "nil-2"}, order)
	assert.Nil(t, board[3].Score)
}

func TestLeaderboardNameFallbacks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.mem.UpsertProfile(ctx, &postgres.UserProfile{UID: "with-profile", Name: "Profile Name", Picture: "https://img/p"}))

	room := &postgres.MatchRoom{Capacity: 4, Status: postgres.RoomStarted, HostUID: "with-profile"}
	room.Players = append(room.Players,
		postgres.Player{UID: "with-profile", Username: "Cached", Score: intPtr(3)},
		postgres.Player{UID: "cached-only", Username: "Cached Only", PhotoURL: "https://img/c", Score: intPtr(2)},
		postgres.Player{UID: "anonymous", Score: intPtr(1)},
		postgres.Player{UID: "broken", Username: "Broken Cached", Score: intPtr(0)},
	)
	require.NoError(t, env.mem.CreateRoom(ctx, room))

	env.manager.profiles = &failingProfiles{ProfileStore: env.mem, failFor: map[string]bool{"broken": true}}

	board, err := env.manager.Leaderboard(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, board, 4)

	assert.Equal(t, LeaderboardEntry{UID: "with-profile", Name: "Profile Name", Picture: "https://img/p", Score: intPtr(3)}, board[0])
	assert.Equal(t, LeaderboardEntry{UID: "cached-only", Name: "Cached Only", Picture: "https://img/c", Score: intPtr(2)}, board[1])
	assert.Equal(t, "Unknown", board[2].Name)
	assert.Equal(t, "Broken Cached", board[3].Name, "a failed lookup degrades to the cached name")
}

func TestLeaderboardUnknownRoom(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.manager.Leaderboard(context.Background(), "nope")
	assert.Error(t, err)
}
