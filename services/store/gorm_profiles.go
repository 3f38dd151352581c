package store

import (
	"Trivium/models/postgres"
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormProfileStore struct {
	db *gorm.DB
}

func NewGormProfileStore(db *gorm.DB) *GormProfileStore {
	return &GormProfileStore{db: db}
}

func (s *GormProfileStore) UpsertProfile(ctx context.Context, profile *postgres.UserProfile) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "picture", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return fmt.Errorf("error upserting profile %s: %w", profile.UID, err)
	}
	return nil
}

func (s *GormProfileStore) FindProfile(ctx context.Context, uid string) (*postgres.UserProfile, error) {
	var profile postgres.UserProfile
	if err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error loading profile %s: %w", uid, err)
	}
	return &profile, nil
}

func (s *GormProfileStore) FindProfiles(ctx context.Context, uids []string) ([]postgres.UserProfile, error) {
	var profiles []postgres.UserProfile
	if len(uids) == 0 {
		return profiles, nil
	}
	if err := s.db.WithContext(ctx).Where("uid IN ?", uids).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("error loading profiles: %w", err)
	}
	return profiles, nil
}

func (s *GormProfileStore) SearchProfiles(ctx context.Context, query string, excludeUID string, limit int) ([]postgres.UserProfile, error) {
	pattern := "%" + escapeLike(query) + "%"

	var profiles []postgres.UserProfile
	err := s.db.WithContext(ctx).
		Where("uid <> ?", excludeUID).
		Where("name ILIKE ? OR email ILIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("error searching profiles: %w", err)
	}
	return profiles, nil
}

func (s *GormProfileStore) SampleProfiles(ctx context.Context, excludeUID string, n int) ([]postgres.UserProfile, error) {
	var profiles []postgres.UserProfile
	err := s.db.WithContext(ctx).
		Where("uid <> ?", excludeUID).
		Order("RANDOM()").
		Limit(n).
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("error sampling profiles: %w", err)
	}
	return profiles, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
