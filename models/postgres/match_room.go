package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomStarted  RoomStatus = "started"
	RoomFinished RoomStatus = "finished"
)

/*
 * 'MatchRoom' is one quiz match. Players and questions are embedded as
 * jsonb so a whole room is read and written as a single row. Every write
 * bumps Version, which is what concurrent writers compare against.
 */
type MatchRoom struct {
	ID           string                        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CustomRoomID *string                       `gorm:"uniqueIndex;size:32" json:"customRoomId,omitempty"`
	Category     string                        `gorm:"size:100;index:idx_match_rooms_lookup,priority:2" json:"category"`
	Difficulty   string                        `gorm:"size:20;index:idx_match_rooms_lookup,priority:3" json:"difficulty"`
	Amount       int                           `gorm:"not null;index:idx_match_rooms_lookup,priority:4" json:"amount"`
	Capacity     int                           `gorm:"not null;default:2" json:"capacity"`
	Status       RoomStatus                    `gorm:"size:16;not null;default:waiting;index:idx_match_rooms_lookup,priority:1" json:"status"`
	HostUID      string                        `gorm:"size:128;not null" json:"host"`
	Players      datatypes.JSONSlice[Player]   `gorm:"type:jsonb" json:"players"`
	Questions    datatypes.JSONSlice[Question] `gorm:"type:jsonb" json:"questions"`
	Version      int                           `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time                     `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time                     `json:"updatedAt"`
	StartedAt    *time.Time                    `json:"startedAt,omitempty"`
	FinishedAt   *time.Time                    `json:"finishedAt,omitempty"`
}

// Player is the per-room copy of a participant.
type Player struct {
	UID      string   `json:"uid"`
	Username string   `json:"username"`
	PhotoURL string   `json:"photoUrl"`
	Score    *int     `json:"score"`
	Answers  []string `json:"answers"`
}

// Question as served to clients, with all_answers already shuffled.
type Question struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	AllAnswers       []string `json:"all_answers"`
}

func (r *MatchRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Version == 0 {
		r.Version = 1
	}
	return nil
}

// Identifier is what clients use to address the room: the custom code when
// there is one, the internal id otherwise.
func (r *MatchRoom) Identifier() string {
	if r.CustomRoomID != nil && *r.CustomRoomID != "" {
		return *r.CustomRoomID
	}
	return r.ID
}

// Code returns the custom room code or "".
func (r *MatchRoom) Code() string {
	if r.CustomRoomID == nil {
		return ""
	}
	return *r.CustomRoomID
}

func (r *MatchRoom) FindPlayer(uid string) (int, *Player) {
	for i := range r.Players {
		if r.Players[i].UID == uid {
			return i, &r.Players[i]
		}
	}
	return -1, nil
}

func (r *MatchRoom) HasPlayer(uid string) bool {
	idx, _ := r.FindPlayer(uid)
	return idx >= 0
}

func (r *MatchRoom) IsFull() bool {
	return len(r.Players) >= r.Capacity
}

// QuestionsLocked reports whether the question set can no longer change.
func (r *MatchRoom) QuestionsLocked() bool {
	return r.Status != RoomWaiting && len(r.Questions) > 0
}

// Clone returns a deep copy, so callers can mutate it without touching
// whatever store or cache handed it out.
func (r *MatchRoom) Clone() *MatchRoom {
	if r == nil {
		return nil
	}
	out := *r
	if r.CustomRoomID != nil {
		code := *r.CustomRoomID
		out.CustomRoomID = &code
	}
	if r.StartedAt != nil {
		t := *r.StartedAt
		out.StartedAt = &t
	}
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		out.FinishedAt = &t
	}
	if r.Players != nil {
		out.Players = make(datatypes.JSONSlice[Player], len(r.Players))
		for i, p := range r.Players {
			out.Players[i] = p.clone()
		}
	}
	if r.Questions != nil {
		out.Questions = make(datatypes.JSONSlice[Question], len(r.Questions))
		for i, q := range r.Questions {
			q.IncorrectAnswers = append([]string(nil), q.IncorrectAnswers...)
			q.AllAnswers = append([]string(nil), q.AllAnswers...)
			out.Questions[i] = q
		}
	}
	return &out
}

// NewPlayer builds a participant with a zero score and no answers.
func NewPlayer(uid, username, photoURL string) Player {
	zero := 0
	return Player{
		UID:      uid,
		Username: username,
		PhotoURL: photoURL,
		Score:    &zero,
		Answers:  []string{},
	}
}

// ScoreValue treats a missing score as zero.
func (p *Player) ScoreValue() int {
	if p.Score == nil {
		return 0
	}
	return *p.Score
}

func (p *Player) SetScore(score int) {
	p.Score = &score
}

func (p Player) clone() Player {
	if p.Score != nil {
		s := *p.Score
		p.Score = &s
	}
	if p.Answers != nil {
		p.Answers = append([]string{}, p.Answers...)
	}
	return p
}
