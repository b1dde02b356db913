package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Relative cursor move with optimistic index check. The store is the single
// serializing point for concurrent next/previous requests, so the check and
// the write must be one atomic step.
// Returns the new index, -1 when rejected or out of bounds, -2 when the room
// key is missing.
var moveCursorScript = redis.NewScript(`
	local idx = tonumber(redis.call('HGET', KEYS[1], 'current_video_index') or '-1')
	if idx < 0 then
		return -2
	end
	local expected = tonumber(ARGV[1])
	if expected >= 0 and idx ~= expected then
		return -1
	end
	local target = idx + tonumber(ARGV[2])
	local count = redis.call('ZCARD', KEYS[2])
	if target < 0 or target >= count then
		return -1
	end
	redis.call('HSET', KEYS[1], 'current_video_index', target, 'current_time', '0', 'is_playing', '1', 'last_activity_at', ARGV[3])
	return target
`)

// users_count adjustment clamped at zero. Returns the new count, -1 when the
// room key is missing.
var usersCountScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -1
	end
	local count = tonumber(redis.call('HGET', KEYS[1], 'users_count') or '0') + tonumber(ARGV[1])
	if count < 0 then
		count = 0
	end
	redis.call('HSET', KEYS[1], 'users_count', count)
	return count
`)

type repo struct {
	rc            *redis.Client
	logger        *slog.Logger
	messagesLimit int64
}

func NewRepo(rc *redis.Client, messagesLimit int, logger *slog.Logger) *repo {
	return &repo{
		rc:            rc,
		logger:        logger,
		messagesLimit: int64(messagesLimit),
	}
}

func (r repo) getRoomKey(roomHash string) string {
	return "room:" + roomHash
}

func (r repo) getActiveRoomsKey() string {
	return "rooms:active"
}

func (r repo) getPlaylistKey(roomHash string) string {
	return "room:" + roomHash + ":playlist"
}

func (r repo) getVideoKey(roomHash, itemId string) string {
	return "room:" + roomHash + ":video:" + itemId
}

func (r repo) getMessagesKey(roomHash string) string {
	return "room:" + roomHash + ":messages"
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	_, err := pipe.Exec(ctx)
	return err
}
