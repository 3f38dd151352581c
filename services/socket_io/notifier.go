package socket_io

import (
	"Trivium/models/postgres"
	"Trivium/services/match"
	"Trivium/services/store"
	"Trivium/utils"
	"context"
	"errors"
	"log"
	"sync"
)

const (
	EventPlayerJoined  = "playerJoined"
	EventMatchStarted  = "matchStarted"
	EventScoreUpdate   = "scoreUpdate"
	EventMatchFinished = "matchFinished"
)

// Emitter sends one event to every socket subscribed to a room channel.
type Emitter interface {
	EmitToRoom(roomID string, event string, payload any) error
}

// RoomResolver is satisfied by store.RoomStore.
type RoomResolver interface {
	FindRoom(ctx context.Context, identifier string) (*postgres.MatchRoom, error)
}

// Notifier implements match.Broadcaster over socket.io rooms. Channels are
// keyed by the room's internal id; custom codes are resolved once and
// remembered until Forget.
type Notifier struct {
	emitter  Emitter
	resolver RoomResolver

	mu      sync.RWMutex
	aliases map[string]string
}

var _ match.Broadcaster = (*Notifier)(nil)

func NewNotifier(emitter Emitter, resolver RoomResolver) *Notifier {
	return &Notifier{
		emitter:  emitter,
		resolver: resolver,
		aliases:  make(map[string]string),
	}
}

func (n *Notifier) emit(roomID string, event string, payload any) {
	if err := n.emitter.EmitToRoom(roomID, event, payload); err != nil {
		log.Printf("[SOCKET] emitting %s to room %s: %v", event, roomID, err)
	}
}

func (n *Notifier) BroadcastPlayerJoined(ctx context.Context, roomID string, event match.PlayerJoined) {
	n.emit(roomID, EventPlayerJoined, event)
}

func (n *Notifier) BroadcastMatchStarted(ctx context.Context, roomID string, event match.MatchStarted) {
	n.emit(roomID, EventMatchStarted, event)
}

func (n *Notifier) BroadcastScoreUpdate(ctx context.Context, roomID string, event match.ScoreUpdate) {
	n.emit(roomID, EventScoreUpdate, event)
}

func (n *Notifier) BroadcastMatchFinished(ctx context.Context, roomID string, event match.MatchFinished) {
	n.emit(roomID, EventMatchFinished, event)
}

// ResolveChannel maps a room id or custom code to the room's channel.
func (n *Notifier) ResolveChannel(ctx context.Context, identifier string) (string, error) {
	identifier = utils.NormalizeRoomIdentifier(identifier)
	if identifier == "" {
		return "", utils.BadRequest("roomId is required")
	}

	n.mu.RLock()
	id, ok := n.aliases[identifier]
	n.mu.RUnlock()
	if ok {
		return id, nil
	}

	room, err := n.resolver.FindRoom(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return "", utils.NotFound("Room not found")
		}
		return "", utils.Internal("resolving room channel", err)
	}

	n.mu.Lock()
	n.aliases[identifier] = room.ID
	n.aliases[room.ID] = room.ID
	n.mu.Unlock()
	return room.ID, nil
}

// Forget drops remembered aliases, for rooms that no longer exist.
func (n *Notifier) Forget(identifiers ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, identifier := range identifiers {
		delete(n.aliases, identifier)
	}
}

// Subscribe resolves identifier and hands the channel to join.
func (n *Notifier) Subscribe(ctx context.Context, identifier string, join func(roomID string)) (string, error) {
	roomID, err := n.ResolveChannel(ctx, identifier)
	if err != nil {
		return "", err
	}
	join(roomID)
	return roomID, nil
}

// RelayScore forwards a client-reported score update to everyone in the room.
func (n *Notifier) RelayScore(ctx context.Context, identifier string, user any) error {
	roomID, err := n.ResolveChannel(ctx, identifier)
	if err != nil {
		return err
	}
	n.emit(roomID, EventScoreUpdate, map[string]any{"roomId": roomID, "user": user})
	return nil
}
