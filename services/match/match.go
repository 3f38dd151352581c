// Package match owns the match-room lifecycle: creation, joining, random
// matchmaking, starting, answer ingestion and the leaderboard view.
package match

import (
	game_constants "Trivium/constants/game"
	"Trivium/models/postgres"
	"Trivium/services/store"
	"Trivium/services/trivia"
	"Trivium/utils"
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"time"
)

// QuestionSource is satisfied by *trivia.Client.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, p trivia.Params) ([]postgres.Question, error)
}

// Broadcaster fans room events out to connected clients. roomID is always
// the room's internal id. Implementations must not block on slow clients.
type Broadcaster interface {
	BroadcastPlayerJoined(ctx context.Context, roomID string, event PlayerJoined)
	BroadcastMatchStarted(ctx context.Context, roomID string, event MatchStarted)
	BroadcastScoreUpdate(ctx context.Context, roomID string, event ScoreUpdate)
	BroadcastMatchFinished(ctx context.Context, roomID string, event MatchFinished)
}

// SnapshotCache is satisfied by the Redis client. Misses return (nil, nil).
// SaveRoomSnapshot must not replace a cached copy of the same room whose
// version is equal or newer.
type SnapshotCache interface {
	GetRoomSnapshot(ctx context.Context, identifier string) (*postgres.MatchRoom, error)
	SaveRoomSnapshot(ctx context.Context, room *postgres.MatchRoom) error
	DeleteRoomSnapshot(ctx context.Context, identifiers ...string) error
}

type PlayerSummary struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	PhotoURL string `json:"photoUrl"`
	Score    int    `json:"score"`
}

type PlayerJoined struct {
	RoomID   string        `json:"roomId"`
	Player   PlayerSummary `json:"player"`
	Players  int           `json:"players"`
	Capacity int           `json:"capacity"`
	Status   string        `json:"status"`
}

type MatchStarted struct {
	RoomID    string              `json:"roomId"`
	Questions []postgres.Question `json:"questions"`
	Room      *postgres.MatchRoom `json:"room"`
}

type ScoreUpdate struct {
	RoomID string        `json:"roomId"`
	User   PlayerSummary `json:"user"`
}

type MatchFinished struct {
	RoomID      string             `json:"roomId"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type Options struct {
	Rooms     store.RoomStore
	Profiles  store.ProfileStore
	Questions QuestionSource
	Notifier  Broadcaster
	// Snapshots is optional; without it status reads always hit the store.
	Snapshots SnapshotCache
}

type Manager struct {
	rooms     store.RoomStore
	profiles  store.ProfileStore
	questions QuestionSource
	notifier  Broadcaster
	snapshots SnapshotCache
	now       func() time.Time
	newCode   func() string
}

func NewManager(opts Options) *Manager {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = noopBroadcaster{}
	}
	return &Manager{
		rooms:     opts.Rooms,
		profiles:  opts.Profiles,
		questions: opts.Questions,
		notifier:  notifier,
		snapshots: opts.Snapshots,
		now:       time.Now,
		newCode:   randomRoomCode,
	}
}

// errUnchanged lets a mutation report that the stored room already has the
// desired state, so nothing is written.
var errUnchanged = errors.New("room unchanged")

func (m *Manager) loadRoom(ctx context.Context, identifier string) (*postgres.MatchRoom, error) {
	identifier = utils.NormalizeRoomIdentifier(identifier)
	if identifier == "" {
		return nil, utils.BadRequest("roomId is required")
	}

	room, err := m.rooms.FindRoom(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return nil, utils.NotFound("Room not found")
		}
		return nil, utils.Internal("loading room", err)
	}
	return room, nil
}

// mutateRoom loads the room, applies fn and writes it back under the version
// check. On a version conflict the room is reloaded and fn reapplied, at most
// retries more times; after that the caller gets a Conflict. fn may return
// errUnchanged to skip the write.
func (m *Manager) mutateRoom(ctx context.Context, identifier string, retries int, fn func(room *postgres.MatchRoom) error) (*postgres.MatchRoom, bool, error) {
	for attempt := 0; ; attempt++ {
		room, err := m.loadRoom(ctx, identifier)
		if err != nil {
			return nil, false, err
		}

		if err := fn(room); err != nil {
			if errors.Is(err, errUnchanged) {
				return room, false, nil
			}
			return nil, false, err
		}

		err = m.rooms.UpdateRoom(ctx, room)
		if err == nil {
			m.refresh(ctx, room)
			return room, true, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, false, utils.Internal("saving room", err)
		}
		if attempt >= retries {
			log.Printf("[ROOM] %s: version conflict persisted after %d attempts", room.ID, attempt+1)
			return nil, false, utils.Conflict("Room was modified concurrently, please retry")
		}
		log.Printf("[ROOM] %s: version conflict, reloading (attempt %d)", room.ID, attempt+1)
	}
}

// refresh writes a just-committed room through to the snapshot cache. If the
// write fails the cached copies are dropped instead.
func (m *Manager) refresh(ctx context.Context, room *postgres.MatchRoom) {
	if m.snapshots == nil {
		return
	}
	if err := m.snapshots.SaveRoomSnapshot(ctx, room); err != nil {
		log.Printf("[CACHE] refreshing room %s: %v", room.ID, err)
		m.invalidate(ctx, room)
	}
}

func (m *Manager) invalidate(ctx context.Context, room *postgres.MatchRoom) {
	if m.snapshots == nil {
		return
	}
	if err := m.snapshots.DeleteRoomSnapshot(ctx, room.ID, room.Code()); err != nil {
		log.Printf("[CACHE] invalidating room %s: %v", room.ID, err)
	}
}

func summarize(p *postgres.Player) PlayerSummary {
	return PlayerSummary{
		UID:      p.UID,
		Username: p.Username,
		PhotoURL: p.PhotoURL,
		Score:    p.ScoreValue(),
	}
}

func randomRoomCode() string {
	charset := game_constants.RoomCodeCharset
	b := make([]byte, game_constants.RoomCodeLength)
	for i := range b {
		b[i] = charset[rand.IntN(len(charset))]
	}
	return string(b)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastPlayerJoined(context.Context, string, PlayerJoined)   {}
func (noopBroadcaster) BroadcastMatchStarted(context.Context, string, MatchStarted)   {}
func (noopBroadcaster) BroadcastScoreUpdate(context.Context, string, ScoreUpdate)     {}
func (noopBroadcaster) BroadcastMatchFinished(context.Context, string, MatchFinished) {}
