package store

import (
	"Trivium/models/postgres"
	"Trivium/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type GormRoomStore struct {
	db *gorm.DB
}

func NewGormRoomStore(db *gorm.DB) *GormRoomStore {
	return &GormRoomStore{db: db}
}

func (s *GormRoomStore) CreateRoom(ctx context.Context, room *postgres.MatchRoom) error {
	if err := s.db.WithContext(ctx).Create(room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("error creating room: %w", err)
	}
	return nil
}

func (s *GormRoomStore) FindRoom(ctx context.Context, identifier string) (*postgres.MatchRoom, error) {
	if utils.IsInternalRoomID(identifier) {
		room, err := s.first(ctx, "id = ?", identifier)
		if !errors.Is(err, ErrRoomNotFound) {
			return room, err
		}
	}
	return s.first(ctx, "custom_room_id = ?", identifier)
}

func (s *GormRoomStore) first(ctx context.Context, query string, arg any) (*postgres.MatchRoom, error) {
	var room postgres.MatchRoom
	err := s.db.WithContext(ctx).Where(query, arg).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("error loading room: %w", err)
	}
	return &room, nil
}

func (s *GormRoomStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&postgres.MatchRoom{}).
		Where("custom_room_id = ?", code).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("error checking room code: %w", err)
	}
	return count > 0, nil
}

// UpdateRoom is a compare-and-swap on the version column: zero affected
// rows means someone else wrote first (or the room is gone).
func (s *GormRoomStore) UpdateRoom(ctx context.Context, room *postgres.MatchRoom) error {
	expected := room.Version
	now := time.Now()

	result := s.db.WithContext(ctx).Model(&postgres.MatchRoom{}).
		Where("id = ? AND version = ?", room.ID, expected).
		Updates(map[string]any{
			"category":    room.Category,
			"difficulty":  room.Difficulty,
			"amount":      room.Amount,
			"capacity":    room.Capacity,
			"status":      room.Status,
			"players":     room.Players,
			"questions":   room.Questions,
			"started_at":  room.StartedAt,
			"finished_at": room.FinishedAt,
			"updated_at":  now,
			"version":     expected + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("error updating room %s: %w", room.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	room.Version = expected + 1
	room.UpdatedAt = now
	return nil
}

func (s *GormRoomStore) FindWaitingRooms(ctx context.Context, criteria MatchCriteria, excludeUID string, limit int) ([]*postgres.MatchRoom, error) {
	// jsonb containment: the players array holds an element with this uid
	member, err := json.Marshal([]map[string]string{{"uid": excludeUID}})
	if err != nil {
		return nil, err
	}

	var rooms []*postgres.MatchRoom
	err = s.db.WithContext(ctx).
		Where("status = ? AND category = ? AND difficulty = ? AND amount = ? AND capacity = ?",
			postgres.RoomWaiting, criteria.Category, criteria.Difficulty, criteria.Amount, criteria.Capacity).
		Where("jsonb_array_length(COALESCE(players, '[]'::jsonb)) < capacity").
		Where("NOT (COALESCE(players, '[]'::jsonb) @> ?::jsonb)", string(member)).
		Order("created_at ASC").
		Limit(limit).
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("error searching waiting rooms: %w", err)
	}
	return rooms, nil
}

func (s *GormRoomStore) ListRoomsBefore(ctx context.Context, status postgres.RoomStatus, before time.Time) ([]*postgres.MatchRoom, error) {
	var rooms []*postgres.MatchRoom
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Where(statusColumn(status)+" < ?", before).
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("error listing %s rooms: %w", status, err)
	}
	return rooms, nil
}

func (s *GormRoomStore) DeleteRoom(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&postgres.MatchRoom{})
	if result.Error != nil {
		return fmt.Errorf("error deleting room %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}
