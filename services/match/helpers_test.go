package match

import (
	"Trivium/models/postgres"
	"Trivium/services/identity"
	"Trivium/services/store"
	"Trivium/services/trivia"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeQuestions struct {
	mu     sync.Mutex
	calls  []trivia.Params
	err    error
	amount int
}

func (f *fakeQuestions) FetchQuestions(ctx context.Context, p trivia.Params) ([]postgres.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	if f.err != nil {
		return nil, f.err
	}
	n := p.Amount
	if f.amount > 0 {
		n = f.amount
	}
	out := make([]postgres.Question, n)
	for i := range out {
		out[i] = postgres.Question{
			Question:         fmt.Sprintf("question %d", i),
			CorrectAnswer:    "right",
			IncorrectAnswers: []string{"a", "b", "c"},
			AllAnswers:       []string{"a", "right", "b", "c"},
			Category:         p.Category,
			Difficulty:       p.Difficulty,
		}
	}
	return out, nil
}

type recordedEvent struct {
	name   string
	roomID string
	data   any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingBroadcaster) record(name, roomID string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name: name, roomID: roomID, data: data})
}

func (r *recordingBroadcaster) BroadcastPlayerJoined(ctx context.Context, roomID string, e PlayerJoined) {
	r.record("playerJoined", roomID, e)
}

func (r *recordingBroadcaster) BroadcastMatchStarted(ctx context.Context, roomID string, e MatchStarted) {
	r.record("matchStarted", roomID, e)
}

func (r *recordingBroadcaster) BroadcastScoreUpdate(ctx context.Context, roomID string, e ScoreUpdate) {
	r.record("scoreUpdate", roomID, e)
}

func (r *recordingBroadcaster) BroadcastMatchFinished(ctx context.Context, roomID string, e MatchFinished) {
	r.record("matchFinished", roomID, e)
}

func (r *recordingBroadcaster) named(name string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

// conflictingRooms makes the next n UpdateRoom calls lose the race: a
// competing writer bumps the stored room first.
type conflictingRooms struct {
	store.RoomStore
	mu        sync.Mutex
	remaining int
	competing func(room *postgres.MatchRoom)
	updates   int
}

func (c *conflictingRooms) UpdateRoom(ctx context.Context, room *postgres.MatchRoom) error {
	c.mu.Lock()
	c.updates++
	lose := c.remaining > 0
	if lose {
		c.remaining--
	}
	c.mu.Unlock()

	if lose {
		current, err := c.RoomStore.FindRoom(ctx, room.ID)
		if err != nil {
			return err
		}
		if c.competing != nil {
			c.competing(current)
		}
		if err := c.RoomStore.UpdateRoom(ctx, current); err != nil {
			return err
		}
	}
	return c.RoomStore.UpdateRoom(ctx, room)
}

type failingProfiles struct {
	store.ProfileStore
	failFor map[string]bool
}

func (f *failingProfiles) FindProfile(ctx context.Context, uid string) (*postgres.UserProfile, error) {
	if f.failFor[uid] {
		return nil, errors.New("profile backend timeout")
	}
	return f.ProfileStore.FindProfile(ctx, uid)
}

type testEnv struct {
	mem       *store.MemoryStore
	questions *fakeQuestions
	events    *recordingBroadcaster
	manager   *Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := store.NewMemoryStore()
	env := &testEnv{
		mem:       mem,
		questions: &fakeQuestions{},
		events:    &recordingBroadcaster{},
	}
	env.manager = NewManager(Options{
		Rooms:     mem,
		Profiles:  mem,
		Questions: env.questions,
		Notifier:  env.events,
	})
	return env
}

func who(uid string) identity.Identity {
	return identity.Identity{UID: uid, Name: "name-" + uid, Picture: "https://img/" + uid}
}

func intPtr(v int) *int { return &v }

var fixedNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func identityWith(uid, name, picture string) identity.Identity {
	return identity.Identity{UID: uid, Name: name, Picture: picture}
}
