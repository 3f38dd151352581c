package redis

import (
	"Trivium/models/postgres"
	redis_utils "Trivium/services/redis/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient handles the room snapshot and profile caches
type RedisClient struct {
	client     *redis.Client
	roomTTL    time.Duration
	profileTTL time.Duration
}

// NewRedisClient creates a new Redis client instance. Addr is either a
// host:port pair or a redis:// URL.
func NewRedisClient(addr string, db int, roomTTL, profileTTL time.Duration) (*RedisClient, error) {
	var client *redis.Client
	if isURL(addr) {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("error parsing Redis URL: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		})
	}
	return &RedisClient{client: client, roomTTL: roomTTL, profileTTL: profileTTL}, nil
}

func isURL(addr string) bool {
	for _, prefix := range []string{"redis://", "rediss://", "unix://"} {
		if strings.HasPrefix(addr, prefix) {
			return true
		}
	}
	return false
}

// saveRoomScript sets every key to the snapshot unless the key already holds
// the same room at an equal or newer version.
// KEYS: room keys. ARGV: snapshot json, room id, version, ttl in ms.
var saveRoomScript = redis.NewScript(`
local stored = 0
for _, key in ipairs(KEYS) do
	local newer = false
	local current = redis.call('GET', key)
	if current then
		local ok, cached = pcall(cjson.decode, current)
		if ok and type(cached) == 'table' and cached['id'] == ARGV[2] then
			local version = tonumber(cached['version'])
			newer = version ~= nil and version >= tonumber(ARGV[3])
		end
	end
	if not newer then
		if tonumber(ARGV[4]) > 0 then
			redis.call('SET', key, ARGV[1], 'PX', ARGV[4])
		else
			redis.call('SET', key, ARGV[1])
		end
		stored = stored + 1
	end
end
return stored
`)

// SaveRoomSnapshot stores room under its id and, if it has one, its code.
// A key already holding a newer version of the same room is left alone, so
// a slow reader cannot overwrite what a later write put there.
// Key format: "room:{id}", "room:{code}"
func (rc *RedisClient) SaveRoomSnapshot(ctx context.Context, room *postgres.MatchRoom) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("error marshaling room snapshot: %w", err)
	}

	keys := []string{redis_utils.FormatRoomKey(room.ID)}
	if code := room.Code(); code != "" {
		keys = append(keys, redis_utils.FormatRoomKey(code))
	}
	err = saveRoomScript.Run(ctx, rc.client, keys, data, room.ID, room.Version, rc.roomTTL.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("error saving room snapshot: %w", err)
	}
	return nil
}

// GetRoomSnapshot returns (nil, nil) on a cache miss
func (rc *RedisClient) GetRoomSnapshot(ctx context.Context, identifier string) (*postgres.MatchRoom, error) {
	data, err := rc.client.Get(ctx, redis_utils.FormatRoomKey(identifier)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting room snapshot: %w", err)
	}

	var room postgres.MatchRoom
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("error unmarshaling room snapshot: %w", err)
	}
	return &room, nil
}

// DeleteRoomSnapshot drops every key the room may be cached under
func (rc *RedisClient) DeleteRoomSnapshot(ctx context.Context, identifiers ...string) error {
	keys := make([]string, 0, len(identifiers))
	for _, id := range identifiers {
		if id != "" {
			keys = append(keys, redis_utils.FormatRoomKey(id))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("error deleting room snapshot: %w", err)
	}
	return nil
}

// SaveProfile caches a user profile
// Key format: "profile:{uid}"
func (rc *RedisClient) SaveProfile(ctx context.Context, profile *postgres.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("error marshaling profile: %w", err)
	}
	return rc.client.Set(ctx, redis_utils.FormatProfileKey(profile.UID), data, rc.profileTTL).Err()
}

// GetProfile returns (nil, nil) on a cache miss
func (rc *RedisClient) GetProfile(ctx context.Context, uid string) (*postgres.UserProfile, error) {
	data, err := rc.client.Get(ctx, redis_utils.FormatProfileKey(uid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting profile: %w", err)
	}

	var profile postgres.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("error unmarshaling profile: %w", err)
	}
	return &profile, nil
}

func (rc *RedisClient) DeleteProfile(ctx context.Context, uid string) error {
	return rc.client.Del(ctx, redis_utils.FormatProfileKey(uid)).Err()
}
