package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatMessage is immutable once created.
type ChatMessage struct {
	Id        string    `json:"id"`
	RoomId    string    `json:"room_id"`
	Author    string    `json:"author"`
	AvatarUrl string    `json:"avatar_url"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
}

func NewChatMessage(roomId string, author User, content string) (*ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	return &ChatMessage{
		Id:        uuid.NewString(),
		RoomId:    roomId,
		Author:    author.DisplayName,
		AvatarUrl: author.AvatarUrl,
		Content:   content,
		SentAt:    time.Now().UTC(),
	}, nil
}
