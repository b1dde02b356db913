package room

import (
	"time"

	"github.com/watchroom/server/internal/domain"
)

type PlaylistItem struct {
	Id           string    `json:"id"`
	VideoRef     string    `json:"video_ref"`
	Title        string    `json:"title"`
	ThumbnailUrl string    `json:"thumbnail_url"`
	Order        int       `json:"order"`
	AddedBy      string    `json:"added_by"`
	AddedAt      time.Time `json:"added_at"`
}

type Room struct {
	Id                string         `json:"id"`
	Hash              string         `json:"hash"`
	Name              string         `json:"name"`
	HasPassword       bool           `json:"has_password"`
	OwnerName         string         `json:"owner_name"`
	IsActive          bool           `json:"is_active"`
	UsersCount        int            `json:"users_count"`
	CurrentVideoIndex int            `json:"current_video_index"`
	CurrentTime       float64        `json:"current_time"`
	IsPlaying         bool           `json:"is_playing"`
	Playlist          []PlaylistItem `json:"playlist"`
	CreatedAt         time.Time      `json:"created_at"`
}

// RoomState is the playback snapshot delivered on join, jump and sync.
type RoomState struct {
	CurrentVideoRef   string         `json:"current_video_ref"`
	CurrentVideoIndex int            `json:"current_video_index"`
	CurrentTime       float64        `json:"current_time"`
	IsPlaying         bool           `json:"is_playing"`
	UsersCount        int            `json:"users_count"`
	Playlist          []PlaylistItem `json:"playlist"`
}

type ChatMessage struct {
	Id        string    `json:"id"`
	Author    string    `json:"author"`
	AvatarUrl string    `json:"avatar_url"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
}

func toPlaylist(items []domain.PlaylistItem) []PlaylistItem {
	playlist := make([]PlaylistItem, 0, len(items))
	for _, item := range items {
		playlist = append(playlist, PlaylistItem(item))
	}

	return playlist
}

func toRoom(room *domain.Room) Room {
	return Room{
		Id:                room.Id,
		Hash:              room.Hash,
		Name:              room.Name,
		HasPassword:       room.HasPassword(),
		OwnerName:         room.OwnerName,
		IsActive:          room.IsActive,
		UsersCount:        room.UsersCount,
		CurrentVideoIndex: room.CurrentVideoIndex,
		CurrentTime:       room.CurrentTime,
		IsPlaying:         room.IsPlaying,
		Playlist:          toPlaylist(room.Playlist),
		CreatedAt:         room.CreatedAt,
	}
}

func toRoomState(room *domain.Room) RoomState {
	state := RoomState{
		CurrentVideoIndex: room.CurrentVideoIndex,
		CurrentTime:       room.CurrentTime,
		IsPlaying:         room.IsPlaying,
		UsersCount:        room.UsersCount,
		Playlist:          toPlaylist(room.Playlist),
	}

	if video := room.CurrentVideo(); video != nil {
		state.CurrentVideoRef = video.VideoRef
	}

	return state
}

func toChatMessage(msg *domain.ChatMessage) ChatMessage {
	return ChatMessage{
		Id:        msg.Id,
		Author:    msg.Author,
		AvatarUrl: msg.AvatarUrl,
		Content:   msg.Content,
		SentAt:    msg.SentAt,
	}
}
