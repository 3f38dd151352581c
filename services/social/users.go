// Package social covers user profiles, user discovery and friend requests.
package social

import (
	game_constants "Trivium/constants/game"
	"Trivium/models/postgres"
	"Trivium/services/identity"
	"Trivium/services/store"
	"Trivium/utils"
	"context"
	"errors"
	"log"
	"strings"
)

const (
	searchLimit       = 20
	maxSearchQueryLen = 100
)

type Service struct {
	profiles store.ProfileStore
	friends  store.FriendStore
}

func NewService(profiles store.ProfileStore, friends store.FriendStore) *Service {
	return &Service{profiles: profiles, friends: friends}
}

func profileFrom(id identity.Identity) *postgres.UserProfile {
	return &postgres.UserProfile{
		UID:     utils.CanonicalUID(id.UID),
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.Picture,
	}
}

// SyncProfile upserts the caller's profile from their verified identity.
// It runs on every authenticated request.
func (s *Service) SyncProfile(ctx context.Context, id identity.Identity) (*postgres.UserProfile, error) {
	profile := profileFrom(id)
	if profile.UID == "" {
		return nil, utils.NewError(utils.KindUnauthorized, "identity has no uid")
	}
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, utils.Internal("saving profile", err)
	}
	return profile, nil
}

func (s *Service) CurrentUser(ctx context.Context, uid string) (*postgres.UserProfile, error) {
	profile, err := s.profiles.FindProfile(ctx, utils.CanonicalUID(uid))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NotFound("User not found")
		}
		return nil, utils.Internal("loading profile", err)
	}
	return profile, nil
}

// RegisterIfNeeded returns the stored profile, creating it on first call.
func (s *Service) RegisterIfNeeded(ctx context.Context, id identity.Identity) (*postgres.UserProfile, bool, error) {
	existing, err := s.CurrentUser(ctx, id.UID)
	if err == nil {
		return existing, false, nil
	}
	if !utils.IsKind(err, utils.KindNotFound) {
		return nil, false, err
	}

	profile, err := s.SyncProfile(ctx, id)
	if err != nil {
		return nil, false, err
	}
	log.Printf("[USER] registered %s", profile.UID)
	return profile, true, nil
}

// SearchUsers matches name or email, case-insensitively, excluding the caller.
func (s *Service) SearchUsers(ctx context.Context, query string, uid string) ([]postgres.UserProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, utils.BadRequest("Search query is required")
	}
	if len(query) > maxSearchQueryLen {
		return nil, utils.BadRequest("Search query is too long")
	}

	users, err := s.profiles.SearchProfiles(ctx, query, utils.CanonicalUID(uid), searchLimit)
	if err != nil {
		return nil, utils.Internal("searching users", err)
	}
	return users, nil
}

// SuggestedUsers is a random sample of other users.
func (s *Service) SuggestedUsers(ctx context.Context, uid string) ([]postgres.UserProfile, error) {
	users, err := s.profiles.SampleProfiles(ctx, utils.CanonicalUID(uid), game_constants.SuggestedUsersLimit)
	if err != nil {
		return nil, utils.Internal("sampling users", err)
	}
	return users, nil
}
