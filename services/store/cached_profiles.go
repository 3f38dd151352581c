package store

import (
	"Trivium/models/postgres"
	"context"
	"log"
)

// ProfileCache is satisfied by the Redis client.
type ProfileCache interface {
	GetProfile(ctx context.Context, uid string) (*postgres.UserProfile, error)
	SaveProfile(ctx context.Context, profile *postgres.UserProfile) error
	DeleteProfile(ctx context.Context, uid string) error
}

// CachedProfileStore reads profiles through a cache. Cache failures are
// logged and fall through to the backing store.
type CachedProfileStore struct {
	ProfileStore
	cache ProfileCache
}

func NewCachedProfileStore(inner ProfileStore, cache ProfileCache) *CachedProfileStore {
	return &CachedProfileStore{ProfileStore: inner, cache: cache}
}

func (s *CachedProfileStore) FindProfile(ctx context.Context, uid string) (*postgres.UserProfile, error) {
	cached, err := s.cache.GetProfile(ctx, uid)
	if err != nil {
		log.Printf("[CACHE] profile %s: %v", uid, err)
	} else if cached != nil {
		return cached, nil
	}

	profile, err := s.ProfileStore.FindProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SaveProfile(ctx, profile); err != nil {
		log.Printf("[CACHE] saving profile %s: %v", uid, err)
	}
	return profile, nil
}

func (s *CachedProfileStore) UpsertProfile(ctx context.Context, profile *postgres.UserProfile) error {
	if err := s.ProfileStore.UpsertProfile(ctx, profile); err != nil {
		return err
	}
	if err := s.cache.DeleteProfile(ctx, profile.UID); err != nil {
		log.Printf("[CACHE] invalidating profile %s: %v", profile.UID, err)
	}
	return nil
}
