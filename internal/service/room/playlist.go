package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/presence"
)

type AddVideoParams struct {
	RoomHash     string
	VideoRef     string
	Title        string
	ThumbnailUrl string
	Sender       domain.User
}

type AddVideoResponse struct {
	AddedItem PlaylistItem
	Playlist  []PlaylistItem
	Conns     []*presence.Conn
}

func (s service) AddVideo(ctx context.Context, params *AddVideoParams) (AddVideoResponse, error) {
	room, err := s.getRoom(ctx, params.RoomHash)
	if err != nil {
		return AddVideoResponse{}, err
	}

	// dedup wins over the limit gate: re-adding a present ref is a duplicate
	// even when the playlist is full
	if room.HasVideo(params.VideoRef) {
		return AddVideoResponse{}, domain.ErrDuplicateVideo
	}

	if len(room.Playlist) >= s.playlistLimit {
		return AddVideoResponse{}, ErrPlaylistLimitReached
	}

	item, err := room.AddToPlaylist(params.VideoRef, params.Title, params.ThumbnailUrl, params.Sender.DisplayName)
	if err != nil {
		return AddVideoResponse{}, err
	}

	room.Touch()
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return AddVideoResponse{}, fmt.Errorf("failed to update room: %w", err)
	}

	return AddVideoResponse{
		AddedItem: PlaylistItem(*item),
		Playlist:  toPlaylist(room.Playlist),
		Conns:     s.registry.Conns(params.RoomHash),
	}, nil
}

type AddPlaylistByUrlParams struct {
	RoomHash string
	Url      string
	Sender   domain.User
}

type AddPlaylistByUrlResponse struct {
	AddedItems []PlaylistItem
	Conns      []*presence.Conn
}

// AddPlaylistByUrl resolves the url to one or more videos and appends them,
// silently skipping refs already present and stopping at the playlist limit.
func (s service) AddPlaylistByUrl(ctx context.Context, params *AddPlaylistByUrlParams) (AddPlaylistByUrlResponse, error) {
	videos, err := s.resolver.Resolve(ctx, params.Url)
	if err != nil {
		return AddPlaylistByUrlResponse{}, err
	}

	room, err := s.getRoom(ctx, params.RoomHash)
	if err != nil {
		return AddPlaylistByUrlResponse{}, err
	}

	added := make([]PlaylistItem, 0, len(videos))
	for _, video := range videos {
		if len(room.Playlist) >= s.playlistLimit {
			s.logger.InfoContext(ctx, "playlist limit reached, dropping remaining videos",
				"room_hash", params.RoomHash,
				"dropped", len(videos)-len(added),
			)
			break
		}

		item, err := room.AddToPlaylist(video.Ref, video.Title, video.ThumbnailUrl, params.Sender.DisplayName)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateVideo) {
				continue
			}
			return AddPlaylistByUrlResponse{}, err
		}

		added = append(added, PlaylistItem(*item))
	}

	if len(added) > 0 {
		room.Touch()
		if err := s.roomRepo.Update(ctx, room); err != nil {
			return AddPlaylistByUrlResponse{}, fmt.Errorf("failed to update room: %w", err)
		}
	}

	return AddPlaylistByUrlResponse{
		AddedItems: added,
		Conns:      s.registry.Conns(params.RoomHash),
	}, nil
}

type RemoveVideoParams struct {
	RoomHash string
	ItemId   string
}

type RemoveVideoResponse struct {
	RemovedItemId string
	Playlist      []PlaylistItem
	Conns         []*presence.Conn
}

func (s service) RemoveVideo(ctx context.Context, params *RemoveVideoParams) (RemoveVideoResponse, error) {
	room, err := s.getRoom(ctx, params.RoomHash)
	if err != nil {
		return RemoveVideoResponse{}, err
	}

	if err := room.RemoveFromPlaylist(params.ItemId); err != nil {
		return RemoveVideoResponse{}, err
	}

	room.Touch()
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return RemoveVideoResponse{}, fmt.Errorf("failed to update room: %w", err)
	}

	return RemoveVideoResponse{
		RemovedItemId: params.ItemId,
		Playlist:      toPlaylist(room.Playlist),
		Conns:         s.registry.Conns(params.RoomHash),
	}, nil
}

type ClearPlaylistParams struct {
	RoomHash string
}

type ClearPlaylistResponse struct {
	Conns []*presence.Conn
}

func (s service) ClearPlaylist(ctx context.Context, params *ClearPlaylistParams) (ClearPlaylistResponse, error) {
	room, err := s.getRoom(ctx, params.RoomHash)
	if err != nil {
		return ClearPlaylistResponse{}, err
	}

	room.ClearPlaylist()
	room.Touch()
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return ClearPlaylistResponse{}, fmt.Errorf("failed to update room: %w", err)
	}

	return ClearPlaylistResponse{
		Conns: s.registry.Conns(params.RoomHash),
	}, nil
}

func (s service) GetPlaylist(ctx context.Context, roomHash string) ([]PlaylistItem, error) {
	room, err := s.getRoom(ctx, roomHash)
	if err != nil {
		return nil, err
	}

	return toPlaylist(room.Playlist), nil
}
