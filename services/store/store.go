// Package store holds the persistence contracts for rooms, profiles and
// friend links, with a GORM/Postgres implementation and an in-memory one.
package store

import (
	"Trivium/models/postgres"
	"context"
	"errors"
	"time"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrVersionConflict = errors.New("room was modified concurrently")
	ErrDuplicateCode   = errors.New("room code already in use")
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("record already exists")
)

// MatchCriteria are the attributes random matchmaking pairs players on.
type MatchCriteria struct {
	Category   string
	Difficulty string
	Amount     int
	Capacity   int
}

type RoomStore interface {
	// CreateRoom inserts a new room. ErrDuplicateCode if its custom code is taken.
	CreateRoom(ctx context.Context, room *postgres.MatchRoom) error
	// FindRoom resolves an internal id or a custom code. ErrRoomNotFound if neither matches.
	FindRoom(ctx context.Context, identifier string) (*postgres.MatchRoom, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	// UpdateRoom writes room only if the stored version still equals
	// room.Version, then increments room.Version. ErrVersionConflict otherwise.
	UpdateRoom(ctx context.Context, room *postgres.MatchRoom) error
	// FindWaitingRooms lists waiting rooms matching criteria that have a free
	// seat and do not contain excludeUID, oldest first.
	FindWaitingRooms(ctx context.Context, criteria MatchCriteria, excludeUID string, limit int) ([]*postgres.MatchRoom, error)
	// ListRoomsBefore returns rooms in status whose status timestamp
	// (created, started or finished) is older than before.
	ListRoomsBefore(ctx context.Context, status postgres.RoomStatus, before time.Time) ([]*postgres.MatchRoom, error)
	DeleteRoom(ctx context.Context, id string) error
}

type ProfileStore interface {
	UpsertProfile(ctx context.Context, profile *postgres.UserProfile) error
	FindProfile(ctx context.Context, uid string) (*postgres.UserProfile, error)
	FindProfiles(ctx context.Context, uids []string) ([]postgres.UserProfile, error)
	// SearchProfiles matches query case-insensitively against name or email.
	SearchProfiles(ctx context.Context, query string, excludeUID string, limit int) ([]postgres.UserProfile, error)
	SampleProfiles(ctx context.Context, excludeUID string, n int) ([]postgres.UserProfile, error)
}

type FriendStore interface {
	CreateLink(ctx context.Context, link *postgres.FriendLink) error
	FindLink(ctx context.Context, id string) (*postgres.FriendLink, error)
	// FindLinkBetween looks the pair up in either direction.
	FindLinkBetween(ctx context.Context, a, b string) (*postgres.FriendLink, error)
	UpdateLinkStatus(ctx context.Context, id string, status postgres.FriendStatus) error
	// ListLinks returns links in status where uid is on either end.
	ListLinks(ctx context.Context, uid string, status postgres.FriendStatus) ([]postgres.FriendLink, error)
	// ListIncoming returns links in status where uid is the recipient.
	ListIncoming(ctx context.Context, uid string, status postgres.FriendStatus) ([]postgres.FriendLink, error)
}

func statusSince(room *postgres.MatchRoom) time.Time {
	switch room.Status {
	case postgres.RoomStarted:
		if room.StartedAt != nil {
			return *room.StartedAt
		}
	case postgres.RoomFinished:
		if room.FinishedAt != nil {
			return *room.FinishedAt
		}
	}
	return room.CreatedAt
}

func statusColumn(status postgres.RoomStatus) string {
	switch status {
	case postgres.RoomStarted:
		return "COALESCE(started_at, created_at)"
	case postgres.RoomFinished:
		return "COALESCE(finished_at, created_at)"
	default:
		return "created_at"
	}
}
