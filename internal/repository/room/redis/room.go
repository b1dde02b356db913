package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/repository/room"
)

func roomToMap(r *domain.Room) map[string]any {
	return map[string]any{
		"id":                  r.Id,
		"name":                r.Name,
		"password_hash":       r.PasswordHash,
		"owner_id":            r.OwnerId,
		"owner_name":          r.OwnerName,
		"is_active":           boolField(r.IsActive),
		"current_video_index": r.CurrentVideoIndex,
		"current_time":        r.CurrentTime,
		"is_playing":          boolField(r.IsPlaying),
		"users_count":         r.UsersCount,
		"created_at":          r.CreatedAt.Unix(),
		"last_activity_at":    r.LastActivityAt.Unix(),
	}
}

func videoToMap(item *domain.PlaylistItem) map[string]any {
	return map[string]any{
		"video_ref":     item.VideoRef,
		"title":         item.Title,
		"thumbnail_url": item.ThumbnailUrl,
		"added_by":      item.AddedBy,
		"added_at":      item.AddedAt.Unix(),
	}
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (r repo) setPlaylist(ctx context.Context, pipe redis.Pipeliner, roomHash string, playlist []domain.PlaylistItem) {
	playlistKey := r.getPlaylistKey(roomHash)
	for i := range playlist {
		item := &playlist[i]
		pipe.HSet(ctx, r.getVideoKey(roomHash, item.Id), videoToMap(item))
		pipe.ZAdd(ctx, playlistKey, redis.Z{Score: float64(item.Order), Member: item.Id})
	}
}

func (r repo) Add(ctx context.Context, dr *domain.Room) error {
	r.logger.DebugContext(ctx, "redis repo: add room", "room_hash", dr.Hash)
	roomKey := r.getRoomKey(dr.Hash)

	// hash uniqueness gate: the first writer claims the key
	ok, err := r.rc.HSetNX(ctx, roomKey, "id", dr.Id).Result()
	if err != nil {
		return err
	}
	if !ok {
		return room.ErrRoomAlreadyExists
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, roomKey, roomToMap(dr))
	if dr.IsActive {
		pipe.ZAdd(ctx, r.getActiveRoomsKey(), redis.Z{Score: float64(dr.CreatedAt.Unix()), Member: dr.Hash})
	}
	r.setPlaylist(ctx, pipe, dr.Hash, dr.Playlist)

	return r.executePipe(ctx, pipe)
}

func (r repo) GetByHash(ctx context.Context, roomHash string) (*domain.Room, error) {
	var model room.Room
	if err := r.rc.HGetAll(ctx, r.getRoomKey(roomHash)).Scan(&model); err != nil {
		return nil, err
	}

	if model.Id == "" {
		return nil, room.ErrRoomNotFound
	}

	playlist, err := r.getPlaylist(ctx, roomHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	return &domain.Room{
		Id:                model.Id,
		Hash:              roomHash,
		Name:              model.Name,
		PasswordHash:      model.PasswordHash,
		OwnerId:           model.OwnerId,
		OwnerName:         model.OwnerName,
		IsActive:          model.IsActive,
		CurrentVideoIndex: model.CurrentVideoIndex,
		CurrentTime:       model.CurrentTime,
		IsPlaying:         model.IsPlaying,
		UsersCount:        model.UsersCount,
		CreatedAt:         time.Unix(model.CreatedAt, 0).UTC(),
		LastActivityAt:    time.Unix(model.LastActivityAt, 0).UTC(),
		Playlist:          playlist,
	}, nil
}

func (r repo) getPlaylist(ctx context.Context, roomHash string) ([]domain.PlaylistItem, error) {
	itemIds, err := r.rc.ZRange(ctx, r.getPlaylistKey(roomHash), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	playlist := make([]domain.PlaylistItem, 0, len(itemIds))
	for i, itemId := range itemIds {
		var video room.Video
		if err := r.rc.HGetAll(ctx, r.getVideoKey(roomHash, itemId)).Scan(&video); err != nil {
			return nil, err
		}

		playlist = append(playlist, domain.PlaylistItem{
			Id:           itemId,
			VideoRef:     video.VideoRef,
			Title:        video.Title,
			ThumbnailUrl: video.ThumbnailUrl,
			Order:        i,
			AddedBy:      video.AddedBy,
			AddedAt:      time.Unix(video.AddedAt, 0).UTC(),
		})
	}

	return playlist, nil
}

// GetActive returns active rooms newest first. Stale index entries for rooms
// that no longer exist are dropped from the index on the way.
func (r repo) GetActive(ctx context.Context) ([]*domain.Room, error) {
	hashes, err := r.rc.ZRevRange(ctx, r.getActiveRoomsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*domain.Room, 0, len(hashes))
	for _, roomHash := range hashes {
		dr, err := r.GetByHash(ctx, roomHash)
		if err != nil {
			if err == room.ErrRoomNotFound {
				r.rc.ZRem(ctx, r.getActiveRoomsKey(), roomHash)
				continue
			}
			return nil, err
		}

		if dr.IsActive {
			rooms = append(rooms, dr)
		}
	}

	return rooms, nil
}

// Update persists the aggregate's scalar fields and rewrites the playlist
// wholesale in one transaction.
func (r repo) Update(ctx context.Context, dr *domain.Room) error {
	r.logger.DebugContext(ctx, "redis repo: update room", "room_hash", dr.Hash)
	exists, err := r.rc.Exists(ctx, r.getRoomKey(dr.Hash)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return room.ErrRoomNotFound
	}

	oldItemIds, err := r.rc.ZRange(ctx, r.getPlaylistKey(dr.Hash), 0, -1).Result()
	if err != nil {
		return err
	}

	pipe := r.rc.TxPipeline()
	for _, itemId := range oldItemIds {
		pipe.Del(ctx, r.getVideoKey(dr.Hash, itemId))
	}
	pipe.Del(ctx, r.getPlaylistKey(dr.Hash))

	pipe.HSet(ctx, r.getRoomKey(dr.Hash), roomToMap(dr))
	r.setPlaylist(ctx, pipe, dr.Hash, dr.Playlist)

	if dr.IsActive {
		pipe.ZAdd(ctx, r.getActiveRoomsKey(), redis.Z{Score: float64(dr.CreatedAt.Unix()), Member: dr.Hash})
	} else {
		pipe.ZRem(ctx, r.getActiveRoomsKey(), dr.Hash)
	}

	return r.executePipe(ctx, pipe)
}

func (r repo) Delete(ctx context.Context, roomHash string) error {
	r.logger.DebugContext(ctx, "redis repo: delete room", "room_hash", roomHash)
	itemIds, err := r.rc.ZRange(ctx, r.getPlaylistKey(roomHash), 0, -1).Result()
	if err != nil {
		return err
	}

	pipe := r.rc.TxPipeline()
	for _, itemId := range itemIds {
		pipe.Del(ctx, r.getVideoKey(roomHash, itemId))
	}
	pipe.Del(ctx, r.getPlaylistKey(roomHash))
	pipe.Del(ctx, r.getMessagesKey(roomHash))
	pipe.Del(ctx, r.getRoomKey(roomHash))
	pipe.ZRem(ctx, r.getActiveRoomsKey(), roomHash)

	return r.executePipe(ctx, pipe)
}

// MoveCursor applies a relative cursor move atomically. The bool result is
// false when the optimistic check failed or the move was out of bounds.
func (r repo) MoveCursor(ctx context.Context, params *room.MoveCursorParams) (int, bool, error) {
	r.logger.DebugContext(ctx, "redis repo: move cursor", "params", params)
	result, err := moveCursorScript.Run(ctx, r.rc,
		[]string{r.getRoomKey(params.RoomHash), r.getPlaylistKey(params.RoomHash)},
		params.ExpectedIndex, params.Delta, time.Now().Unix(),
	).Int()
	if err != nil {
		return 0, false, err
	}

	switch result {
	case -2:
		return 0, false, room.ErrRoomNotFound
	case -1:
		return 0, false, nil
	default:
		return result, true, nil
	}
}

// UpdateUsersCount adjusts the cached occupant counter, clamped at zero.
func (r repo) UpdateUsersCount(ctx context.Context, roomHash string, delta int) (int, error) {
	r.logger.DebugContext(ctx, "redis repo: update users count", "room_hash", roomHash, "delta", delta)
	count, err := usersCountScript.Run(ctx, r.rc,
		[]string{r.getRoomKey(roomHash)},
		delta,
	).Int()
	if err != nil {
		return 0, err
	}

	if count < 0 {
		return 0, room.ErrRoomNotFound
	}

	return count, nil
}

func (r repo) Touch(ctx context.Context, roomHash string, at time.Time) error {
	exists, err := r.rc.Exists(ctx, r.getRoomKey(roomHash)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return room.ErrRoomNotFound
	}

	return r.rc.HSet(ctx, r.getRoomKey(roomHash), "last_activity_at", at.Unix()).Err()
}
