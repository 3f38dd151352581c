package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRoomIdentifier(t *testing.T) {
	room := MatchRoom{ID: "6c3a0bd4-5ad5-4d4c-b2a8-3a4a1c7b0d55"}
	assert.Equal(t, room.ID, room.Identifier())
	assert.Equal(t, "", room.Code())

	code := "FRIDAY"
	room.CustomRoomID = &code
	assert.Equal(t, "FRIDAY", room.Identifier())
	assert.Equal(t, "FRIDAY", room.Code())
}

func TestMatchRoomPlayers(t *testing.T) {
	room := MatchRoom{Capacity: 2}
	room.Players = append(room.Players, NewPlayer("u1", "Ana", ""))

	idx, p := room.FindPlayer("u1")
	require.NotNil(t, p)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0, p.ScoreValue())
	assert.False(t, room.HasPlayer("u2"))
	assert.False(t, room.IsFull())

	room.Players = append(room.Players, NewPlayer("u2", "Bo", ""))
	assert.True(t, room.IsFull())
}

func TestMatchRoomCloneIsDeep(t *testing.T) {
	code := "ABC123"
	room := &MatchRoom{ID: "r1", CustomRoomID: &code, Capacity: 2}
	room.Players = append(room.Players, NewPlayer("u1", "Ana", ""))
	room.Questions = append(room.Questions, Question{Question: "q", AllAnswers: []string{"a", "b"}})

	cp := room.Clone()
	cp.Players[0].SetScore(40)
	cp.Players[0].Answers = append(cp.Players[0].Answers, "x")
	cp.Questions[0].AllAnswers[0] = "z"
	*cp.CustomRoomID = "OTHER1"

	assert.Equal(t, 0, room.Players[0].ScoreValue())
	assert.Empty(t, room.Players[0].Answers)
	assert.Equal(t, "a", room.Questions[0].AllAnswers[0])
	assert.Equal(t, "ABC123", room.Code())
}

func TestQuestionsLocked(t *testing.T) {
	room := MatchRoom{Status: RoomWaiting}
	assert.False(t, room.QuestionsLocked())

	room.Status = RoomStarted
	assert.False(t, room.QuestionsLocked())

	room.Questions = append(room.Questions, Question{Question: "q"})
	assert.True(t, room.QuestionsLocked())
}

func TestMissingScoreIsZero(t *testing.T) {
	p := Player{UID: "u"}
	assert.Equal(t, 0, p.ScoreValue())
	p.SetScore(20)
	assert.Equal(t, 20, p.ScoreValue())
}

func TestFriendLinkHooks(t *testing.T) {
	link := &FriendLink{RequesterUID: "a", RecipientUID: "a"}
	assert.ErrorIs(t, link.BeforeSave(nil), ErrSelfFriendLink)

	link.RecipientUID = "b"
	assert.NoError(t, link.BeforeSave(nil))
	require.NoError(t, link.BeforeCreate(nil))
	assert.NotEmpty(t, link.ID)
	assert.Equal(t, "b", link.Other("a"))
	assert.Equal(t, "a", link.Other("b"))
	assert.Equal(t, "a|b", link.PairKey)
}

func TestFriendPairKeyIgnoresDirection(t *testing.T) {
	assert.Equal(t, FriendPairKey("alice", "bob"), FriendPairKey("bob", "alice"))
	assert.NotEqual(t, FriendPairKey("alice", "bob"), FriendPairKey("alice", "carol"))

	forward := &FriendLink{RequesterUID: "u2", RecipientUID: "u1"}
	reverse := &FriendLink{RequesterUID: "u1", RecipientUID: "u2"}
	require.NoError(t, forward.BeforeSave(nil))
	require.NoError(t, reverse.BeforeSave(nil))
	assert.Equal(t, forward.PairKey, reverse.PairKey)
}
