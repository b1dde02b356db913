package domain

import "errors"

var (
	ErrRoomNameRequired     = errors.New("room name is required")
	ErrVideoRefRequired     = errors.New("video ref is required")
	ErrDuplicateVideo       = errors.New("video is already in the playlist")
	ErrPlaylistItemNotFound = errors.New("playlist item not found")
	ErrEmptyMessage         = errors.New("message content is required")
)
