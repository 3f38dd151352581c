package socket_io

import (
	"Trivium/models/postgres"
	"Trivium/services/match"
	"Trivium/services/store"
	"Trivium/utils"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	room    string
	event   string
	payload any
}

type fakeEmitter struct {
	mu   sync.Mutex
	sent []emitted
	err  error
}

func (f *fakeEmitter) EmitToRoom(roomID string, event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, emitted{room: roomID, event: event, payload: payload})
	return f.err
}

type countingResolver struct {
	store.RoomStore
	calls int
}

func (c *countingResolver) FindRoom(ctx context.Context, identifier string) (*postgres.MatchRoom, error) {
	c.calls++
	return c.RoomStore.FindRoom(ctx, identifier)
}

func newRoom(t *testing.T, mem *store.MemoryStore, code string) *postgres.MatchRoom {
	t.Helper()
	room := &postgres.MatchRoom{Capacity: 4, HostUID: "host", Status: postgres.RoomWaiting}
	if code != "" {
		room.CustomRoomID = &code
	}
	require.NoError(t, mem.CreateRoom(context.Background(), room))
	return room
}

func TestSubscribeResolvesCodeToRoomID(t *testing.T) {
	mem := store.NewMemoryStore()
	room := newRoom(t, mem, "QUIZ42")
	resolver := &countingResolver{RoomStore: mem}
	n := NewNotifier(&fakeEmitter{}, resolver)
	ctx := context.Background()

	var joined []string
	join := func(id string) { joined = append(joined, id) }

	id, err := n.Subscribe(ctx, " QUIZ42 ", join)
	require.NoError(t, err)
	assert.Equal(t, room.ID, id)

	id, err = n.Subscribe(ctx, room.ID, join)
	require.NoError(t, err)
	assert.Equal(t, room.ID, id)

	assert.Equal(t, []string{room.ID, room.ID}, joined)
	assert.Equal(t, 1, resolver.calls, "aliases are remembered")

	n.Forget("QUIZ42")
	_, err = n.Subscribe(ctx, "QUIZ42", join)
	require.NoError(t, err)
	assert.Equal(t, 2, resolver.calls)
}

func TestSubscribeErrors(t *testing.T) {
	n := NewNotifier(&fakeEmitter{}, store.NewMemoryStore())
	join := func(string) { t.Fatal("join must not be called") }

	_, err := n.Subscribe(context.Background(), "", join)
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))

	_, err = n.Subscribe(context.Background(), "NOPE", join)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestBroadcastsUseRoomChannel(t *testing.T) {
	emitter := &fakeEmitter{}
	n := NewNotifier(emitter, store.NewMemoryStore())
	ctx := context.Background()

	n.BroadcastPlayerJoined(ctx, "r1", match.PlayerJoined{RoomID: "r1", Players: 2})
	n.BroadcastMatchStarted(ctx, "r1", match.MatchStarted{RoomID: "r1"})
	n.BroadcastScoreUpdate(ctx, "r1", match.ScoreUpdate{RoomID: "r1", User: match.PlayerSummary{UID: "u", Score: 10}})
	n.BroadcastMatchFinished(ctx, "r1", match.MatchFinished{RoomID: "r1"})

	require.Len(t, emitter.sent, 4)
	events := []string{}
	for _, e := range emitter.sent {
		assert.Equal(t, "r1", e.room)
		events = append(events, e.event)
	}
	assert.Equal(t, []string{EventPlayerJoined, EventMatchStarted, EventScoreUpdate, EventMatchFinished}, events)
	assert.Equal(t, 10, emitter.sent[2].payload.(match.ScoreUpdate).User.Score)
}

func TestBroadcastSurvivesEmitError(t *testing.T) {
	emitter := &fakeEmitter{err: errors.New("closed")}
	n := NewNotifier(emitter, store.NewMemoryStore())

	assert.NotPanics(t, func() {
		n.BroadcastMatchStarted(context.Background(), "r1", match.MatchStarted{RoomID: "r1"})
	})
	assert.Len(t, emitter.sent, 1)
}

func TestRelayScore(t *testing.T) {
	mem := store.NewMemoryStore()
	room := newRoom(t, mem, "RELAY1")
	emitter := &fakeEmitter{}
	n := NewNotifier(emitter, mem)

	user := map[string]any{"uid": "alice", "score": float64(30)}
	require.NoError(t, n.RelayScore(context.Background(), "RELAY1", user))

	require.Len(t, emitter.sent, 1)
	assert.Equal(t, room.ID, emitter.sent[0].room)
	assert.Equal(t, EventScoreUpdate, emitter.sent[0].event)
	assert.Equal(t, map[string]any{"roomId": room.ID, "user": user}, emitter.sent[0].payload)

	err := n.RelayScore(context.Background(), "GONE", user)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
