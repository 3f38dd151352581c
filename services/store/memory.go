package store

import (
	"Trivium/models/postgres"
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps rooms, profiles and friend links in process memory. It
// honours the same version check as the Postgres store and hands out deep
// copies, so it behaves like a database for callers. Used with --store memory
// and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	rooms    map[string]*postgres.MatchRoom
	codes    map[string]string
	profiles map[string]postgres.UserProfile
	links    map[string]postgres.FriendLink
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]*postgres.MatchRoom),
		codes:    make(map[string]string),
		profiles: make(map[string]postgres.UserProfile),
		links:    make(map[string]postgres.FriendLink),
		now:      time.Now,
	}
}

// Rooms

func (m *MemoryStore) CreateRoom(ctx context.Context, room *postgres.MatchRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if code := room.Code(); code != "" {
		if _, taken := m.codes[code]; taken {
			return ErrDuplicateCode
		}
	}
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if _, exists := m.rooms[room.ID]; exists {
		return ErrDuplicate
	}
	now := m.now()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	if room.Version == 0 {
		room.Version = 1
	}

	m.rooms[room.ID] = room.Clone()
	if code := room.Code(); code != "" {
		m.codes[code] = room.ID
	}
	return nil
}

func (m *MemoryStore) FindRoom(ctx context.Context, identifier string) (*postgres.MatchRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if room, ok := m.rooms[identifier]; ok {
		return room.Clone(), nil
	}
	if id, ok := m.codes[identifier]; ok {
		if room, ok := m.rooms[id]; ok {
			return room.Clone(), nil
		}
	}
	return nil, ErrRoomNotFound
}

func (m *MemoryStore) CodeExists(ctx context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.codes[code]
	return ok, nil
}

func (m *MemoryStore) UpdateRoom(ctx context.Context, room *postgres.MatchRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.rooms[room.ID]
	if !ok || current.Version != room.Version {
		return ErrVersionConflict
	}

	room.Version++
	room.UpdatedAt = m.now()
	// identity columns are never rewritten
	room.CustomRoomID = current.CustomRoomID
	room.CreatedAt = current.CreatedAt
	room.HostUID = current.HostUID
	m.rooms[room.ID] = room.Clone()
	return nil
}

func (m *MemoryStore) FindWaitingRooms(ctx context.Context, criteria MatchCriteria, excludeUID string, limit int) ([]*postgres.MatchRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*postgres.MatchRoom
	for _, room := range m.rooms {
		if room.Status != postgres.RoomWaiting ||
			room.Category != criteria.Category ||
			room.Difficulty != criteria.Difficulty ||
			room.Amount != criteria.Amount ||
			room.Capacity != criteria.Capacity ||
			room.IsFull() ||
			room.HasPlayer(excludeUID) {
			continue
		}
		out = append(out, room.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) ListRoomsBefore(ctx context.Context, status postgres.RoomStatus, before time.Time) ([]*postgres.MatchRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*postgres.MatchRoom
	for _, room := range m.rooms {
		if room.Status == status && statusSince(room).Before(before) {
			out = append(out, room.Clone())
		}
	}
	return out, nil
}

func (m *MemoryStore) DeleteRoom(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	if code := room.Code(); code != "" {
		delete(m.codes, code)
	}
	delete(m.rooms, id)
	return nil
}

// Profiles

func (m *MemoryStore) UpsertProfile(ctx context.Context, profile *postgres.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if existing, ok := m.profiles[profile.UID]; ok {
		profile.CreatedAt = existing.CreatedAt
	} else if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	m.profiles[profile.UID] = *profile
	return nil
}

func (m *MemoryStore) FindProfile(ctx context.Context, uid string) (*postgres.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, ok := m.profiles[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return &profile, nil
}

func (m *MemoryStore) FindProfiles(ctx context.Context, uids []string) ([]postgres.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []postgres.UserProfile{}
	for _, uid := range uids {
		if profile, ok := m.profiles[uid]; ok {
			out = append(out, profile)
		}
	}
	return out, nil
}

func (m *MemoryStore) SearchProfiles(ctx context.Context, query string, excludeUID string, limit int) ([]postgres.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(query)
	out := []postgres.UserProfile{}
	for _, profile := range m.profiles {
		if profile.UID == excludeUID {
			continue
		}
		if strings.Contains(strings.ToLower(profile.Name), q) || strings.Contains(strings.ToLower(profile.Email), q) {
			out = append(out, profile)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) SampleProfiles(ctx context.Context, excludeUID string, n int) ([]postgres.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []postgres.UserProfile{}
	for _, profile := range m.profiles {
		if profile.UID != excludeUID {
			out = append(out, profile)
		}
	}
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Friend links

func (m *MemoryStore) CreateLink(ctx context.Context, link *postgres.FriendLink) error {
	if err := link.BeforeSave(nil); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.links {
		if existing.PairKey == link.PairKey {
			return ErrDuplicate
		}
	}
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	now := m.now()
	link.CreatedAt = now
	link.UpdatedAt = now
	if link.Status == "" {
		link.Status = postgres.FriendPending
	}
	m.links[link.ID] = *link
	return nil
}

func (m *MemoryStore) FindLink(ctx context.Context, id string) (*postgres.FriendLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &link, nil
}

func (m *MemoryStore) FindLinkBetween(ctx context.Context, a, b string) (*postgres.FriendLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, link := range m.links {
		if (link.RequesterUID == a && link.RecipientUID == b) || (link.RequesterUID == b && link.RecipientUID == a) {
			return &link, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateLinkStatus(ctx context.Context, id string, status postgres.FriendStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok {
		return ErrNotFound
	}
	link.Status = status
	link.UpdatedAt = m.now()
	m.links[id] = link
	return nil
}

func (m *MemoryStore) ListLinks(ctx context.Context, uid string, status postgres.FriendStatus) ([]postgres.FriendLink, error) {
	return m.filterLinks(func(l postgres.FriendLink) bool {
		return l.Status == status && (l.RequesterUID == uid || l.RecipientUID == uid)
	}), nil
}

func (m *MemoryStore) ListIncoming(ctx context.Context, uid string, status postgres.FriendStatus) ([]postgres.FriendLink, error) {
	return m.filterLinks(func(l postgres.FriendLink) bool {
		return l.Status == status && l.RecipientUID == uid
	}), nil
}

func (m *MemoryStore) filterLinks(keep func(postgres.FriendLink) bool) []postgres.FriendLink {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []postgres.FriendLink{}
	for _, link := range m.links {
		if keep(link) {
			out = append(out, link)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
