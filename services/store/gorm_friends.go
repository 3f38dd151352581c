package store

import (
	"Trivium/models/postgres"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type GormFriendStore struct {
	db *gorm.DB
}

func NewGormFriendStore(db *gorm.DB) *GormFriendStore {
	return &GormFriendStore{db: db}
}

func (s *GormFriendStore) CreateLink(ctx context.Context, link *postgres.FriendLink) error {
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("error creating friend link: %w", err)
	}
	return nil
}

func (s *GormFriendStore) FindLink(ctx context.Context, id string) (*postgres.FriendLink, error) {
	var link postgres.FriendLink
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error loading friend link: %w", err)
	}
	return &link, nil
}

func (s *GormFriendStore) FindLinkBetween(ctx context.Context, a, b string) (*postgres.FriendLink, error) {
	var link postgres.FriendLink
	err := s.db.WithContext(ctx).
		Where("(requester_uid = ? AND recipient_uid = ?) OR (requester_uid = ? AND recipient_uid = ?)", a, b, b, a).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error loading friend link: %w", err)
	}
	return &link, nil
}

func (s *GormFriendStore) UpdateLinkStatus(ctx context.Context, id string, status postgres.FriendStatus) error {
	result := s.db.WithContext(ctx).Model(&postgres.FriendLink{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("error updating friend link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormFriendStore) ListLinks(ctx context.Context, uid string, status postgres.FriendStatus) ([]postgres.FriendLink, error) {
	var links []postgres.FriendLink
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Where("requester_uid = ? OR recipient_uid = ?", uid, uid).
		Order("updated_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("error listing friend links: %w", err)
	}
	return links, nil
}

func (s *GormFriendStore) ListIncoming(ctx context.Context, uid string, status postgres.FriendStatus) ([]postgres.FriendLink, error) {
	var links []postgres.FriendLink
	err := s.db.WithContext(ctx).
		Where("recipient_uid = ? AND status = ?", uid, status).
		Order("created_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("error listing friend requests: %w", err)
	}
	return links, nil
}
