package match

import (
	"Trivium/models/postgres"
	"Trivium/utils"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startedRoom returns a started two-player room (host, guest) with n questions.
func startedRoom(t *testing.T, env *testEnv, n int) *postgres.MatchRoom {
	t.Helper()
	ctx := context.Background()
	room, err := env.manager.CreateRoom(ctx, RoomConfig{Amount: n}, who("host"))
	require.NoError(t, err)
	_, err = env.manager.JoinRoom(ctx, room.ID, who("guest"))
	require.NoError(t, err)
	_, err = env.manager.StartMatch(ctx, room.ID, StartOverrides{}, who("host"))
	require.NoError(t, err)
	return room
}

func TestSubmitAnswerScoring(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := startedRoom(t, env, 5)

	score, err := env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: room.ID, QuestionIndex: intPtr(0), Answer: "wrong"}, "host")
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	score, err = env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: room.ID, QuestionIndex: intPtr(1), Answer: "right", IsCorrect: true}, "host")
	require.NoError(t, err)
	assert.Equal(t, 10, score)

	updates := env.events.named("scoreUpdate")
	require.Len(t, updates, 2)
	last := updates[1].data.(ScoreUpdate)
	assert.Equal(t, "host", last.User.UID)
	assert.Equal(t, 10, last.User.Score)
}

func TestSubmitAnswerSkippedIndexIsClosed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := startedRoom(t, env, 5)

	_, err := env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: room.ID, QuestionIndex: intPtr(2), Answer: "c"}, "guest")
	require.NoError(t, err)

	stored, err := env.mem.FindRoom(ctx, room.ID)
	require.NoError(t, err)
	_, p := stored.FindPlayer("guest")
	assert.Equal(t, []string{"", "", "c"}, p.Answers)

	_, err = env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: room.ID, QuestionIndex: intPtr(1), Answer: "b", IsCorrect: true}, "guest")
	assert.True(t, utils.IsKind(err, utils.KindDuplicateSubmission))
}

func TestSubmitAnswerDuplicateNeverChangesScore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := startedRoom(t, env, 3)

	_, err := env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: room.ID, QuestionIndex: intPtr(0), Answer: "right", IsCorrect: true}, "guest")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: room.ID, QuestionIndex: intPtr(0), Answer: "right", IsCorrect: true}, "guest")
		assert.True(t, utils.IsKind(err, utils.KindDuplicateSubmission))
	}

	stored, err := env.mem.FindRoom(ctx, room.ID)
	require.NoError(t, err)
	_, p := stored.FindPlayer("guest")
	assert.Equal(t, 10, p.ScoreValue())
	assert.Len(t, p.Answers, 1)
}

func TestSubmitAnswerErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := startedRoom(t, env, 2)

	_, err := env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: "missing", QuestionIndex: intPtr(0)}, "host")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: room.ID, QuestionIndex: intPtr(0)}, "stranger")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: room.ID}, "host")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))

	_, err = env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: room.ID, QuestionIndex: intPtr(-1)}, "host")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))

	_, err = env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: room.ID, QuestionIndex: intPtr(2)}, "host")
	assert.True(t, utils.IsKind(err, utils.KindBadRequest))
}

func TestConcurrentAnswersFromDifferentPlayers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := startedRoom(t, env, 5)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, uid := range []string{"host", "guest"} {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: room.ID, QuestionIndex: intPtr(0), Answer: "right", IsCorrect: true}, uid)
			errs <- err
		}(uid)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := env.mem.FindRoom(ctx, room.ID)
	require.NoError(t, err)
	for _, p := range stored.Players {
		assert.Equal(t, 10, p.ScoreValue(), p.UID)
	}
}

func TestBulkOverwritesPartialState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := startedRoom(t, env, 3)

	_, err := env.manager.SubmitAnswer(ctx, AnswerSubmission{RoomID: room.ID, QuestionIndex: intPtr(0), Answer: "a", IsCorrect: true}, "guest")
	require.NoError(t, err)

	answers := AnswerSet{"right", "right", "b"}
	score, err := env.manager.SubmitAnswersBulk(ctx, BulkSubmission{RoomID: room.ID, Answers: &answers, FinalScore: intPtr(20)}, "guest")
	require.NoError(t, err)
	assert.Equal(t, 20, score)

	stored, err := env.mem.FindRoom(ctx, room.ID)
	require.NoError(t, err)
	_, p := stored.FindPlayer("guest")
	assert.Equal(t, []string{"right", "right", "b"}, p.Answers)
	assert.Equal(t, 20, p.ScoreValue())
}

func TestBulkRequiresFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	answers := AnswerSet{}

	cases := map[string]BulkSubmission{
		"no room":   {Answers: &answers, FinalScore: intPtr(1)},
		"no answer": {RoomID: "r", FinalScore: intPtr(1)},
		"no score":  {RoomID: "r", Answers: &answers},
		"negative":  {RoomID: "r", Answers: &answers, FinalScore: intPtr(-5)},
	}
	for name, sub := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.manager.SubmitAnswersBulk(ctx, sub, "host")
			assert.True(t, utils.IsKind(err, utils.KindBadRequest), "got %v", err)
		})
	}
}

func TestBulkRetriesOnceOnConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := startedRoom(t, env, 3)

	rooms := &conflictingRooms{
		RoomStore: env.mem,
		remaining: 1,
		competing: func(r *postgres.MatchRoom) {
			// the other player lands an answer first
			_, p := r.FindPlayer("host")
			p.Answers = append(p.Answers, "right")
			p.SetScore(10)
		},
	}
	env.manager.rooms = rooms

	answers := AnswerSet{"x", "y", "z"}
	score, err := env.manager.SubmitAnswersBulk(ctx, BulkSubmission{RoomID: room.ID, Answers: &answers, FinalScore: intPtr(30)}, "guest")
	require.NoError(t, err)
	assert.Equal(t, 30, score)
	assert.Equal(t, 2, rooms.updates)

	stored, err := env.mem.FindRoom(ctx, room.ID)
	require.NoError(t, err)
	_, host := stored.FindPlayer("host")
	_, guest := stored.FindPlayer("guest")
	assert.Equal(t, 10, host.ScoreValue(), "the competing write survives")
	assert.Equal(t, 30, guest.ScoreValue())
}

func TestBulkSecondConflictIsFatal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := startedRoom(t, env, 3)

	rooms := &conflictingRooms{RoomStore: env.mem, remaining: 2}
	env.manager.rooms = rooms

	answers := AnswerSet{"x"}
	_, err := env.manager.SubmitAnswersBulk(ctx, BulkSubmission{RoomID: room.ID, Answers: &answers, FinalScore: intPtr(10)}, "guest")
	assert.True(t, utils.IsKind(err, utils.KindConflict), "got %v", err)
	assert.Equal(t, 2, rooms.updates)

	stored, err := env.mem.FindRoom(ctx, room.ID)
	require.NoError(t, err)
	_, guest := stored.FindPlayer("guest")
	assert.Equal(t, 0, guest.ScoreValue())
}

func TestBulkBackfillsOnlyMissingProfileFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.mem.UpsertProfile(ctx, &postgres.UserProfile{UID: "guest", Name: "Profile Name", Picture: "https://img/profile"}))

	room, err := env.manager.CreateRoom(ctx, RoomConfig{}, who("host"))
	require.NoError(t, err)
	_, err = env.manager.JoinRoom(ctx, room.ID, identityWith("guest", "Chosen Name", ""))
	require.NoError(t, err)

	answers := AnswerSet{"a"}
	_, err = env.manager.SubmitAnswersBulk(ctx, BulkSubmission{RoomID: room.ID, Answers: &answers, FinalScore: intPtr(0)}, "guest")
	require.NoError(t, err)

	stored, err := env.mem.FindRoom(ctx, room.ID)
	require.NoError(t, err)
	_, p := stored.FindPlayer("guest")
	assert.Equal(t, "Chosen Name", p.Username)
	assert.Equal(t, "https://img/profile", p.PhotoURL)
}

func TestSubmitScore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := startedRoom(t, env, 2)

	score, err := env.manager.SubmitScore(ctx, room.ID, "host", 70)
	require.NoError(t, err)
	assert.Equal(t, 70, score)

	_, err = env.manager.SubmitScore(ctx, room.ID, "nobody", 5)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestAnswerSetDecoding(t *testing.T) {
	var fromArray AnswerSet
	require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &fromArray))
	assert.Equal(t, AnswerSet{"a", "b"}, fromArray)

	var fromObject AnswerSet
	require.NoError(t, json.Unmarshal([]byte(`{"0":"a","2":"c"}`), &fromObject))
	assert.Equal(t, AnswerSet{"a", "", "c"}, fromObject)

	var empty AnswerSet
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Empty(t, empty)

	var bad AnswerSet
	assert.Error(t, json.Unmarshal([]byte(`{"first":"a"}`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"-1":"a"}`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"9999":"a"}`), &bad))
}
