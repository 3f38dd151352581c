package match

import (
	game_constants "Trivium/constants/game"
	"Trivium/models/postgres"
	"Trivium/services/store"
	"Trivium/utils"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
)

// AnswerSet is an index-addressed answer list. It decodes from a JSON array
// or from an object keyed by question index ({"0": "Paris", "2": "Rome"});
// indices missing from an object become empty strings.
type AnswerSet []string

func (a *AnswerSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*a = list
		return nil
	}

	var byIndex map[string]string
	if err := json.Unmarshal(data, &byIndex); err != nil {
		return err
	}
	maxIndex := -1
	parsed := make(map[int]string, len(byIndex))
	for key, value := range byIndex {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			return fmt.Errorf("answer key %q is not a question index", key)
		}
		if idx > game_constants.MaxQuestionAmount {
			return fmt.Errorf("answer index %d out of range", idx)
		}
		parsed[idx] = value
		maxIndex = max(maxIndex, idx)
	}
	list := make([]string, maxIndex+1)
	for idx, value := range parsed {
		list[idx] = value
	}
	*a = list
	return nil
}

type AnswerSubmission struct {
	RoomID        string
	QuestionIndex *int
	Answer        string
	IsCorrect     bool
}

type BulkSubmission struct {
	RoomID     string
	Answers    *AnswerSet
	FinalScore *int
}

// SubmitAnswer records one answer and awards points if the caller says it
// was correct. Each index can be answered once; answering an index also
// closes every earlier unanswered one.
func (m *Manager) SubmitAnswer(ctx context.Context, sub AnswerSubmission, uid string) (int, error) {
	uid = utils.CanonicalUID(uid)
	if utils.NormalizeRoomIdentifier(sub.RoomID) == "" {
		return 0, utils.BadRequest("roomId is required")
	}
	if sub.QuestionIndex == nil {
		return 0, utils.BadRequest("questionIndex is required")
	}
	index := *sub.QuestionIndex
	if index < 0 {
		return 0, utils.BadRequest("questionIndex must not be negative")
	}

	var summary PlayerSummary
	room, _, err := m.mutateRoom(ctx, sub.RoomID, game_constants.MutationRetries, func(room *postgres.MatchRoom) error {
		_, player := room.FindPlayer(uid)
		if player == nil {
			return utils.NotFound("Player not found in room")
		}
		if len(room.Questions) > 0 && index >= len(room.Questions) {
			return utils.BadRequest(fmt.Sprintf("questionIndex %d is out of range", index))
		}
		if len(player.Answers) > index {
			return utils.NewError(utils.KindDuplicateSubmission, "Answer already submitted for this question")
		}

		for len(player.Answers) < index {
			player.Answers = append(player.Answers, "")
		}
		player.Answers = append(player.Answers, sub.Answer)
		if sub.IsCorrect {
			player.SetScore(player.ScoreValue() + game_constants.PointsPerCorrectAnswer)
		}
		summary = summarize(player)
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("[ANSWER] %s answered q%d in room %s (correct=%t, score=%d)", uid, index, room.ID, sub.IsCorrect, summary.Score)
	m.notifier.BroadcastScoreUpdate(ctx, room.ID, ScoreUpdate{RoomID: room.Identifier(), User: summary})
	return summary.Score, nil
}

// SubmitAnswersBulk replaces the caller's answers and score in one write.
// A version conflict is retried once against the reloaded room; a second
// conflict is returned to the caller.
func (m *Manager) SubmitAnswersBulk(ctx context.Context, sub BulkSubmission, uid string) (int, error) {
	uid = utils.CanonicalUID(uid)
	if utils.NormalizeRoomIdentifier(sub.RoomID) == "" || sub.Answers == nil || sub.FinalScore == nil {
		return 0, utils.BadRequest("roomId, answers and finalScore are required")
	}
	if *sub.FinalScore < 0 {
		return 0, utils.BadRequest("finalScore must not be negative")
	}

	profile := m.lookupProfile(ctx, uid)
	answers := append([]string{}, (*sub.Answers)...)
	score := *sub.FinalScore

	var summary PlayerSummary
	room, _, err := m.mutateRoom(ctx, sub.RoomID, game_constants.BulkSubmitRetries, func(room *postgres.MatchRoom) error {
		_, player := room.FindPlayer(uid)
		if player == nil {
			return utils.NotFound("Player not found in room")
		}
		player.Answers = append([]string{}, answers...)
		player.SetScore(score)
		if profile != nil {
			if player.Username == "" {
				player.Username = profile.Name
			}
			if player.PhotoURL == "" {
				player.PhotoURL = profile.Picture
			}
		}
		summary = summarize(player)
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("[ANSWER] %s submitted %d answers in room %s (score=%d)", uid, len(answers), room.ID, score)
	m.notifier.BroadcastScoreUpdate(ctx, room.ID, ScoreUpdate{RoomID: room.Identifier(), User: summary})
	return summary.Score, nil
}

// SubmitScore overwrites the caller's score only.
func (m *Manager) SubmitScore(ctx context.Context, identifier string, uid string, score int) (int, error) {
	uid = utils.CanonicalUID(uid)
	if score < 0 {
		return 0, utils.BadRequest("score must not be negative")
	}

	var summary PlayerSummary
	room, _, err := m.mutateRoom(ctx, identifier, game_constants.MutationRetries, func(room *postgres.MatchRoom) error {
		_, player := room.FindPlayer(uid)
		if player == nil {
			return utils.NotFound("User not in this match room")
		}
		player.SetScore(score)
		summary = summarize(player)
		return nil
	})
	if err != nil {
		return 0, err
	}

	m.notifier.BroadcastScoreUpdate(ctx, room.ID, ScoreUpdate{RoomID: room.Identifier(), User: summary})
	return summary.Score, nil
}

// lookupProfile returns nil when there is no profile or the lookup fails.
func (m *Manager) lookupProfile(ctx context.Context, uid string) *postgres.UserProfile {
	if m.profiles == nil {
		return nil
	}
	profile, err := m.profiles.FindProfile(ctx, uid)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[PROFILE] lookup %s failed: %v", uid, err)
		}
		return nil
	}
	return profile
}
