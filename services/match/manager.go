package match

import (
	game_constants "Trivium/constants/game"
	"Trivium/models/postgres"
	"Trivium/services/identity"
	"Trivium/services/store"
	"Trivium/services/trivia"
	"Trivium/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
)

// RoomConfig describes a room to create. Zero Capacity and Amount take the
// defaults.
type RoomConfig struct {
	Category   string
	Difficulty string
	Amount     int
	Capacity   int
	CustomCode string
}

// StartOverrides replace the room's question parameters when set.
type StartOverrides struct {
	Category   string
	Difficulty string
	Amount     int
}

var customCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

func validateRoomParams(category, difficulty string, amount int) error {
	if _, ok := trivia.CategoryID(category); !ok {
		return utils.BadRequest("Invalid category selected")
	}
	if !trivia.ValidDifficulty(difficulty) {
		return utils.BadRequest("Invalid difficulty selected")
	}
	if amount < 1 || amount > game_constants.MaxQuestionAmount {
		return utils.BadRequest(fmt.Sprintf("amount must be between 1 and %d", game_constants.MaxQuestionAmount))
	}
	return nil
}

func (cfg *RoomConfig) normalize() error {
	cfg.Category = strings.TrimSpace(cfg.Category)
	cfg.Difficulty = strings.ToLower(strings.TrimSpace(cfg.Difficulty))
	cfg.CustomCode = strings.TrimSpace(cfg.CustomCode)

	if cfg.Capacity == 0 {
		cfg.Capacity = game_constants.DefaultRoomCapacity
	}
	if cfg.Capacity < game_constants.MinRoomCapacity || cfg.Capacity > game_constants.MaxRoomCapacity {
		return utils.BadRequest(fmt.Sprintf("capacity must be between %d and %d",
			game_constants.MinRoomCapacity, game_constants.MaxRoomCapacity))
	}
	if cfg.Amount == 0 {
		cfg.Amount = game_constants.DefaultQuestionAmount
	}
	if err := validateRoomParams(cfg.Category, cfg.Difficulty, cfg.Amount); err != nil {
		return err
	}
	if cfg.CustomCode != "" {
		if !customCodePattern.MatchString(cfg.CustomCode) || utils.IsInternalRoomID(cfg.CustomCode) {
			return utils.BadRequest("customRoomId must be 3-32 letters, digits, '-' or '_'")
		}
	}
	return nil
}

// CreateRoom stores a new waiting room with host as its only player. Group
// rooms (capacity above two) without a custom code get a generated one.
// Clients address the result by room.Identifier().
func (m *Manager) CreateRoom(ctx context.Context, cfg RoomConfig, host identity.Identity) (*postgres.MatchRoom, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	host.UID = utils.CanonicalUID(host.UID)
	generate := cfg.CustomCode == "" && cfg.Capacity > game_constants.DefaultRoomCapacity

	if cfg.CustomCode != "" {
		taken, err := m.rooms.CodeExists(ctx, cfg.CustomCode)
		if err != nil {
			return nil, utils.Internal("checking room code", err)
		}
		if taken {
			return nil, utils.Conflict("Room code already in use")
		}
	}

	for attempt := 0; ; attempt++ {
		code := cfg.CustomCode
		if generate {
			var err error
			if code, err = m.freeCode(ctx); err != nil {
				return nil, err
			}
		}

		room := &postgres.MatchRoom{
			Category:   cfg.Category,
			Difficulty: cfg.Difficulty,
			Amount:     cfg.Amount,
			Capacity:   cfg.Capacity,
			Status:     postgres.RoomWaiting,
			HostUID:    host.UID,
		}
		if code != "" {
			room.CustomRoomID = &code
		}
		room.Players = append(room.Players, postgres.NewPlayer(host.UID, host.Name, host.Picture))

		err := m.rooms.CreateRoom(ctx, room)
		if err == nil {
			log.Printf("[ROOM] %s created by %s (code=%q, capacity=%d)", room.ID, host.UID, code, room.Capacity)
			return room, nil
		}
		if errors.Is(err, store.ErrDuplicateCode) {
			if generate && attempt < game_constants.RoomCodeMaxAttempts {
				continue
			}
			return nil, utils.Conflict("Room code already in use")
		}
		return nil, utils.Internal("creating room", err)
	}
}

// freeCode draws random codes until one is not in use.
func (m *Manager) freeCode(ctx context.Context) (string, error) {
	for i := 0; i < game_constants.RoomCodeMaxAttempts; i++ {
		code := m.newCode()
		taken, err := m.rooms.CodeExists(ctx, code)
		if err != nil {
			return "", utils.Internal("checking room code", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", utils.Internal("generating room code", errors.New("no free room code found"))
}

// JoinRoom adds the caller to a waiting room. Joining a room the caller is
// already in is a no-op that returns the current room.
func (m *Manager) JoinRoom(ctx context.Context, identifier string, who identity.Identity) (*postgres.MatchRoom, error) {
	uid := utils.CanonicalUID(who.UID)

	room, changed, err := m.mutateRoom(ctx, identifier, game_constants.MutationRetries, func(room *postgres.MatchRoom) error {
		if room.HasPlayer(uid) {
			return errUnchanged
		}
		if room.IsFull() {
			return utils.NewError(utils.KindCapacity, "Room is full")
		}
		if room.Status != postgres.RoomWaiting {
			return utils.Conflict("Match already in progress")
		}
		room.Players = append(room.Players, postgres.NewPlayer(uid, who.Name, who.Picture))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		log.Printf("[JOIN] %s joined room %s (%d/%d)", uid, room.ID, len(room.Players), room.Capacity)
		m.announceJoin(ctx, room, uid)
	}
	return room, nil
}

func (m *Manager) announceJoin(ctx context.Context, room *postgres.MatchRoom, uid string) {
	_, p := room.FindPlayer(uid)
	if p == nil {
		return
	}
	m.notifier.BroadcastPlayerJoined(ctx, room.ID, PlayerJoined{
		RoomID:   room.Identifier(),
		Player:   summarize(p),
		Players:  len(room.Players),
		Capacity: room.Capacity,
		Status:   string(room.Status),
	})
}

var errSkipRoom = errors.New("room no longer joinable")

const randomMatchCandidates = 5

// FindOrCreateRandomMatch seats the caller in the oldest waiting two-player
// room with the same parameters, starting it once full, or opens a new one.
// Two callers arriving together may each open a room; they are not merged.
func (m *Manager) FindOrCreateRandomMatch(ctx context.Context, cfg RoomConfig, who identity.Identity) (*postgres.MatchRoom, error) {
	cfg.Capacity = game_constants.RandomMatchCapacity
	cfg.CustomCode = ""
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	uid := utils.CanonicalUID(who.UID)

	criteria := store.MatchCriteria{
		Category:   cfg.Category,
		Difficulty: cfg.Difficulty,
		Amount:     cfg.Amount,
		Capacity:   cfg.Capacity,
	}
	candidates, err := m.rooms.FindWaitingRooms(ctx, criteria, uid, randomMatchCandidates)
	if err != nil {
		return nil, utils.Internal("searching waiting rooms", err)
	}

	for _, candidate := range candidates {
		room, changed, err := m.mutateRoom(ctx, candidate.ID, game_constants.MutationRetries, func(room *postgres.MatchRoom) error {
			if room.HasPlayer(uid) {
				return errUnchanged
			}
			if room.Status != postgres.RoomWaiting || room.IsFull() {
				return errSkipRoom
			}
			room.Players = append(room.Players, postgres.NewPlayer(uid, who.Name, who.Picture))
			if room.IsFull() {
				now := m.now()
				room.Status = postgres.RoomStarted
				room.StartedAt = &now
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, errSkipRoom) || utils.IsKind(err, utils.KindConflict) || utils.IsKind(err, utils.KindNotFound) {
				continue
			}
			return nil, err
		}
		if changed {
			log.Printf("[MATCH] %s paired into room %s (status=%s)", uid, room.ID, room.Status)
			m.announceJoin(ctx, room, uid)
		}
		return room, nil
	}

	log.Printf("[MATCH] no waiting room for %s/%s/%d, opening one for %s", cfg.Category, cfg.Difficulty, cfg.Amount, uid)
	who.UID = uid
	return m.CreateRoom(ctx, cfg, who)
}

// StartMatch lets the host fetch the question set and move the room to
// started. The questions are fixed from then on.
func (m *Manager) StartMatch(ctx context.Context, identifier string, overrides StartOverrides, host identity.Identity) ([]postgres.Question, error) {
	uid := utils.CanonicalUID(host.UID)

	room, err := m.loadRoom(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if err := checkStartable(room, uid); err != nil {
		return nil, err
	}

	params := trivia.Params{Category: room.Category, Difficulty: room.Difficulty, Amount: room.Amount}
	if c := strings.TrimSpace(overrides.Category); c != "" {
		params.Category = c
	}
	if d := strings.ToLower(strings.TrimSpace(overrides.Difficulty)); d != "" {
		params.Difficulty = d
	}
	if overrides.Amount != 0 {
		params.Amount = overrides.Amount
	}
	if err := validateRoomParams(params.Category, params.Difficulty, params.Amount); err != nil {
		return nil, err
	}

	questions, err := m.questions.FetchQuestions(ctx, params)
	if err != nil {
		if utils.IsKind(err, utils.KindBadRequest) || utils.IsKind(err, utils.KindUpstreamFailure) {
			return nil, err
		}
		return nil, utils.Wrap(utils.KindUpstreamFailure, "failed to fetch questions", err)
	}
	if len(questions) == 0 {
		return nil, utils.NewError(utils.KindUpstreamFailure, "no questions available")
	}
	if len(questions) < params.Amount {
		return nil, utils.NewError(utils.KindUpstreamFailure,
			fmt.Sprintf("only %d of %d questions available", len(questions), params.Amount))
	}
	questions = questions[:params.Amount]

	room, _, err = m.mutateRoom(ctx, room.ID, game_constants.MutationRetries, func(room *postgres.MatchRoom) error {
		if err := checkStartable(room, uid); err != nil {
			return err
		}
		now := m.now()
		room.Questions = questions
		room.Category = params.Category
		room.Difficulty = params.Difficulty
		room.Amount = params.Amount
		room.Status = postgres.RoomStarted
		if room.StartedAt == nil {
			room.StartedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[START] room %s started by %s with %d questions", room.ID, uid, len(questions))
	m.notifier.BroadcastMatchStarted(ctx, room.ID, MatchStarted{
		RoomID:    room.Identifier(),
		Questions: room.Questions,
		Room:      room,
	})
	return room.Questions, nil
}

func checkStartable(room *postgres.MatchRoom, uid string) error {
	if room.HostUID != uid {
		return utils.Forbidden("Only the host can start the match")
	}
	if room.Status == postgres.RoomFinished {
		return utils.Conflict("Match already finished")
	}
	if room.QuestionsLocked() {
		return utils.Conflict("Match already started")
	}
	if len(room.Players) < 2 {
		return utils.NewError(utils.KindInsufficientPlayers, "At least 2 players are required to start")
	}
	return nil
}

// GetStatus returns the room, from the snapshot cache when possible.
func (m *Manager) GetStatus(ctx context.Context, identifier string) (*postgres.MatchRoom, error) {
	identifier = utils.NormalizeRoomIdentifier(identifier)
	if m.snapshots != nil && identifier != "" {
		cached, err := m.snapshots.GetRoomSnapshot(ctx, identifier)
		if err != nil {
			log.Printf("[CACHE] room %s: %v", identifier, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	room, err := m.loadRoom(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if m.snapshots != nil {
		if err := m.snapshots.SaveRoomSnapshot(ctx, room); err != nil {
			log.Printf("[CACHE] saving room %s: %v", room.ID, err)
		}
	}
	return room, nil
}

// GetQuestions returns the assigned questions to a player of the room. It
// always reads the store, never the snapshot cache.
func (m *Manager) GetQuestions(ctx context.Context, identifier string, uid string) ([]postgres.Question, error) {
	room, err := m.loadRoom(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !room.HasPlayer(utils.CanonicalUID(uid)) {
		return nil, utils.Forbidden("You are not a player in this room")
	}
	if room.Questions == nil {
		return []postgres.Question{}, nil
	}
	return room.Questions, nil
}

// FinishMatch is the host's way to close a started match.
func (m *Manager) FinishMatch(ctx context.Context, identifier string, host identity.Identity) (*postgres.MatchRoom, error) {
	uid := utils.CanonicalUID(host.UID)
	return m.finish(ctx, identifier, func(room *postgres.MatchRoom) error {
		if room.HostUID != uid {
			return utils.Forbidden("Only the host can finish the match")
		}
		return nil
	})
}

func (m *Manager) finish(ctx context.Context, identifier string, allowed func(room *postgres.MatchRoom) error) (*postgres.MatchRoom, error) {
	room, _, err := m.mutateRoom(ctx, identifier, game_constants.MutationRetries, func(room *postgres.MatchRoom) error {
		if err := allowed(room); err != nil {
			return err
		}
		if room.Status != postgres.RoomStarted {
			return utils.Conflict(fmt.Sprintf("Match is %s, not started", room.Status))
		}
		now := m.now()
		room.Status = postgres.RoomFinished
		room.FinishedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[FINISH] room %s finished", room.ID)
	m.notifier.BroadcastMatchFinished(ctx, room.ID, MatchFinished{
		RoomID:      room.Identifier(),
		Leaderboard: m.rank(ctx, room),
	})
	return room, nil
}
